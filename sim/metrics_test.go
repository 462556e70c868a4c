package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpu-sched/cpu-sched/sim/trace"
)

func TestMetrics_RoundRobin_CountsSwitchesAndExpiries(t *testing.T) {
	// GIVEN {P1: arr 0 burst 5, P2: arr 1 burst 3} with quantum 2
	s := newTestSimulator(t, PolicyRR, 2)
	mustAdd(t, s, 1, 0, 5, 0)
	mustAdd(t, s, 2, 1, 3, 0)

	// WHEN run
	require.NoError(t, s.Run(100))

	// THEN every dispatch is a context switch and three quanta expired
	assert.Equal(t, 5, s.Metrics.Dispatches)
	assert.Equal(t, 5, s.Metrics.ContextSwitches)
	assert.Equal(t, 3, s.Metrics.QuantumExpiries)
	assert.Equal(t, 0, s.Metrics.Preemptions)
	assert.Equal(t, int64(8), s.Metrics.BusyTicks)

	summary := s.Summarize()
	assert.Equal(t, "RR", summary.Policy)
	assert.Equal(t, 3, summary.Preemptions)
	assert.Equal(t, int64(3), summary.MaxWaitingTime)
	assert.InDelta(t, 0.5, summary.AvgResponseTime, 1e-9)
	assert.InDelta(t, 0.25, summary.Throughput, 1e-9)
}

func TestMetrics_AgreesWithTraceSummary(t *testing.T) {
	s := newTestSimulator(t, PolicySRTF, DefaultQuantum)
	mustAdd(t, s, 1, 0, 8, 0)
	mustAdd(t, s, 2, 1, 2, 0)
	mustAdd(t, s, 3, 12, 1, 0)
	require.NoError(t, s.Run(100))

	ts := trace.Summarize(s.Trace)

	assert.Equal(t, int(s.Clock()), ts.Ticks)
	assert.Equal(t, int(s.Metrics.IdleTicks), ts.IdleTicks)
	assert.Equal(t, s.Metrics.Dispatches, ts.Dispatches)
	assert.Equal(t, s.Metrics.ContextSwitches, ts.ContextSwitches)
	assert.Equal(t, s.Metrics.Preemptions, ts.Preemptions)
	assert.Equal(t, 1, ts.PreemptionCauses["SRTF"])
	assert.Equal(t, 3, ts.Completions)
}

func TestSummarize_NoFinishedProcesses_ZeroAverages(t *testing.T) {
	s := newTestSimulator(t, PolicyFCFS, DefaultQuantum)
	mustAdd(t, s, 1, 3, 2, 0)
	s.Tick()

	summary := s.Summarize()

	assert.Equal(t, 0, summary.Completed)
	assert.Zero(t, summary.AvgWaitingTime)
	assert.Zero(t, summary.CPUUtilization)
	assert.Equal(t, int64(1), summary.TotalTime)
}

func TestSummary_Print(t *testing.T) {
	s := newTestSimulator(t, PolicyFCFS, DefaultQuantum)
	mustAdd(t, s, 1, 0, 5, 0)
	mustAdd(t, s, 2, 1, 3, 0)
	mustAdd(t, s, 3, 2, 1, 0)
	require.NoError(t, s.Run(100))

	var buf bytes.Buffer
	s.Summarize().Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Simulation Metrics ===")
	assert.Contains(t, out, "Average Waiting Time : 3.33 ticks")
	assert.Contains(t, out, "Average Turnaround   : 6.33 ticks")
	assert.Contains(t, out, "CPU Utilization      : 100.00%")
}
