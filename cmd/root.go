package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cpu-sched/cpu-sched/internal/store"
	"github.com/cpu-sched/cpu-sched/sim"
	"github.com/cpu-sched/cpu-sched/sim/trace"
	"github.com/cpu-sched/cpu-sched/sim/workload"
)

var (
	// CLI flags shared by run and compare
	workloadPath   string // YAML or CSV workload file
	policyName     string // Scheduling policy
	quantum        int    // RR time quantum
	agingEnabled   bool   // Enable priority aging
	agingThreshold int    // Ready ticks per aging boost
	maxTicks       int64  // Safety ceiling on simulated time
	logLevel       string // Log verbosity level

	// run-only flags
	printTrace    bool   // Print every tick line
	printSnapshot bool   // Print the final JSON snapshot
	dbPath        string // SQLite database recording the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cpu-sched",
	Short: "Discrete-time CPU scheduling simulator",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// runCmd executes one simulation from a workload file and prints per-process results
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload to completion under one policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadWorkload()
		if err != nil {
			return err
		}
		s, ceiling, err := newSimulator(cmd, spec, nil)
		if err != nil {
			return err
		}

		cfg := s.Config()
		logrus.Infof("Starting simulation: policy=%s quantum=%d aging=%v threshold=%d processes=%d",
			cfg.Policy, cfg.Quantum, cfg.AgingEnabled, cfg.AgingThreshold, len(spec.Processes))

		runErr := s.Run(ceiling)
		out := cmd.OutOrStdout()
		if printTrace {
			for _, rec := range s.Trace.Records {
				fmt.Fprintln(out, rec.String())
			}
			fmt.Fprintln(out)
		}
		if runErr != nil {
			return runErr
		}

		printProcessTable(out, s)
		s.Summarize().Print(out)
		fmt.Fprintf(out, "Gantt: %s\n", trace.RenderGantt(trace.Gantt(s.Trace.Records)))

		if printSnapshot {
			data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		}
		if dbPath != "" {
			if err := recordRun(cmd, s); err != nil {
				return err
			}
		}
		logrus.Infof("Simulation complete after %s ticks.", humanize.Comma(s.Clock()))
		return nil
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadWorkload() (*workload.WorkloadSpec, error) {
	if workloadPath == "" {
		return nil, fmt.Errorf("--workload is required")
	}
	spec, err := workload.Load(workloadPath)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload %s: %w", workloadPath, err)
	}
	return spec, nil
}

// newSimulator configures a simulator from the workload, then applies the flags
// the user set explicitly. A non-nil policy overrides both. Returns the tick ceiling
// to run with.
func newSimulator(cmd *cobra.Command, spec *workload.WorkloadSpec, policy *sim.Policy) (*sim.Simulator, int64, error) {
	cfg, err := spec.Config(sim.DefaultSimConfig())
	if err != nil {
		return nil, 0, err
	}
	flags := cmd.Flags()
	if flags.Changed("policy") {
		p, err := sim.ParsePolicy(policyName)
		if err != nil {
			logrus.Warnf("%v", err)
		}
		cfg.Policy = p
	}
	if policy != nil {
		cfg.Policy = *policy
	}
	if flags.Changed("quantum") {
		cfg.Quantum = quantum
	}
	if flags.Changed("aging") {
		cfg.AgingEnabled = agingEnabled
	}
	if flags.Changed("aging-threshold") {
		cfg.AgingThreshold = agingThreshold
	}
	cfg.TraceLevel = trace.TraceLevelTicks

	s, err := sim.NewSimulator(cfg)
	if err != nil {
		return nil, 0, err
	}
	if err := spec.Submit(s); err != nil {
		return nil, 0, err
	}

	ceiling := maxTicks
	if !flags.Changed("max-ticks") && spec.MaxTicks > 0 {
		ceiling = spec.MaxTicks
	}
	return s, ceiling, nil
}

func printProcessTable(w io.Writer, s *sim.Simulator) {
	summary := s.Summarize()
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Arrival", "Burst", "Priority", "Start", "Completion", "Waiting", "Turnaround", "Response"})
	for _, p := range s.Snapshot().Finished {
		table.Append([]string{
			strconv.Itoa(p.ID),
			p.Name,
			strconv.FormatInt(p.ArrivalTime, 10),
			strconv.FormatInt(p.BurstTime, 10),
			strconv.Itoa(p.Priority),
			strconv.FormatInt(p.StartTime, 10),
			strconv.FormatInt(p.CompletionTime, 10),
			strconv.FormatInt(p.WaitingTime, 10),
			strconv.FormatInt(p.TurnaroundTime, 10),
			strconv.FormatInt(p.ResponseTime, 10),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "", "Average",
		fmt.Sprintf("%.2f", summary.AvgWaitingTime),
		fmt.Sprintf("%.2f", summary.AvgTurnaroundTime),
		fmt.Sprintf("%.2f", summary.AvgResponseTime)})
	table.Render()
}

func recordRun(cmd *cobra.Command, s *sim.Simulator) error {
	st, err := openStore(cmd, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	run := store.NewRun(filepath.Base(workloadPath), s)
	if err := st.SaveRun(cmd.Context(), run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s in %s\n", run.ID, dbPath)
	return nil
}

func openStore(cmd *cobra.Command, path string) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(cmd.Context()); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return st, nil
}

func addSchedulingFlags(c *cobra.Command) {
	c.Flags().StringVar(&workloadPath, "workload", "", "Workload file (.yaml or .csv)")
	c.Flags().IntVar(&quantum, "quantum", sim.DefaultQuantum, "Round Robin time quantum (ticks)")
	c.Flags().BoolVar(&agingEnabled, "aging", false, "Enable priority aging")
	c.Flags().IntVar(&agingThreshold, "aging-threshold", sim.DefaultAgingThreshold, "Ready ticks before a priority boost")
	c.Flags().Int64Var(&maxTicks, "max-ticks", 10000, "Safety ceiling on simulated time; 0 disables")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addSchedulingFlags(runCmd)
	runCmd.Flags().StringVar(&policyName, "policy", "FCFS", "Scheduling policy (FCFS, SJF, SRTF, RR, Priority, PriorityNP)")
	runCmd.Flags().BoolVar(&printTrace, "trace", false, "Print the trace line of every tick")
	runCmd.Flags().BoolVar(&printSnapshot, "snapshot", false, "Print the final state snapshot as JSON")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record the run in")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
