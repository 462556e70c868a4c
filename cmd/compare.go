package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cpu-sched/cpu-sched/sim"
)

// compareCmd runs one workload under every policy and tabulates the averages
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run a workload under every policy and compare the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadWorkload()
		if err != nil {
			return err
		}
		summaries := make([]sim.Summary, 0, len(sim.AllPolicies()))
		for _, policy := range sim.AllPolicies() {
			s, ceiling, err := newSimulator(cmd, spec, &policy)
			if err != nil {
				return err
			}
			if err := s.Run(ceiling); err != nil {
				return fmt.Errorf("%s: %w", policy, err)
			}
			summaries = append(summaries, s.Summarize())
		}
		printComparison(cmd.OutOrStdout(), summaries)
		return nil
	},
}

func printComparison(w io.Writer, summaries []sim.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Policy", "Avg Waiting", "Avg Turnaround", "Avg Response", "Max Waiting", "Switches", "Preemptions", "Total Time"})
	for _, s := range summaries {
		table.Append([]string{
			s.Policy,
			fmt.Sprintf("%.2f", s.AvgWaitingTime),
			fmt.Sprintf("%.2f", s.AvgTurnaroundTime),
			fmt.Sprintf("%.2f", s.AvgResponseTime),
			strconv.FormatInt(s.MaxWaitingTime, 10),
			strconv.Itoa(s.ContextSwitches),
			strconv.Itoa(s.Preemptions),
			strconv.FormatInt(s.TotalTime, 10),
		})
	}
	table.Render()
}

func init() {
	addSchedulingFlags(compareCmd)
	rootCmd.AddCommand(compareCmd)
}
