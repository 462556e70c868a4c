package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cpu-sched/cpu-sched/internal/store"
)

var (
	runsDBPath string
	runsPolicy string
	runsLimit  int
)

// runsCmd lists the runs recorded with `run --db` or by the server
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded simulation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd, runsDBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), store.ListOptions{Limit: runsLimit, Policy: runsPolicy})
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

// runsRmCmd deletes one recorded run
var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd, runsDBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err := st.DeleteRun(cmd.Context(), run.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
		return nil
	},
}

func printRuns(w io.Writer, runs []*store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Label", "Policy", "Processes", "Avg Waiting", "Avg Turnaround", "Ticks", "Recorded"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.Label,
			r.Policy,
			humanize.Comma(int64(r.Summary.Completed)),
			fmt.Sprintf("%.2f", r.Summary.AvgWaitingTime),
			fmt.Sprintf("%.2f", r.Summary.AvgTurnaroundTime),
			humanize.Comma(r.Summary.TotalTime),
			humanize.Time(r.CreatedAt),
		})
	}
	table.Render()
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "cpu-sched.db", "SQLite database of recorded runs")
	runsCmd.Flags().StringVar(&runsPolicy, "policy", "", "Only list runs of this policy")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.AddCommand(runsRmCmd)
	rootCmd.AddCommand(runsCmd)
}
