// Tracks simulation-wide counters and per-process timing statistics such as
// waiting, turnaround and response time.

package sim

import (
	"fmt"
	"io"

	"github.com/cpu-sched/cpu-sched/sim/trace"
)

// Metrics accumulates per-tick counters while the simulation runs.
type Metrics struct {
	BusyTicks       int64 // ticks in which a process executed
	IdleTicks       int64 // ticks in which the CPU slot stayed empty
	Dispatches      int   // every ready → CPU transition, including RR re-dispatch of the same process
	ContextSwitches int   // dispatches of a process other than the one that ran last
	QuantumExpiries int
	Preemptions     int // SRTF / Priority preemptions
	AgingBoosts     int

	lastRan int
}

func NewMetrics() *Metrics {
	return &Metrics{lastRan: trace.NoProcess}
}

// Observe folds one tick record into the counters.
func (m *Metrics) Observe(rec trace.TickRecord) {
	if rec.AlreadyFinished {
		return
	}
	for _, ev := range rec.Events {
		switch ev.Kind {
		case trace.EventDispatch:
			m.Dispatches++
			if ev.ProcessID != m.lastRan {
				m.ContextSwitches++
			}
		case trace.EventRun:
			m.BusyTicks++
			m.lastRan = ev.ProcessID
		case trace.EventIdle:
			m.IdleTicks++
		case trace.EventQuantumExpired:
			m.QuantumExpiries++
		case trace.EventPreempted:
			m.Preemptions++
		case trace.EventAgingBoost:
			m.AgingBoosts++
		case trace.EventArrival, trace.EventCompletion:
		}
	}
}

// Summary is the end-of-run report: averages over finished processes plus CPU counters.
type Summary struct {
	Policy            string  `json:"policy"`
	TotalTime         int64   `json:"total_time"`
	Completed         int     `json:"completed"`
	AvgWaitingTime    float64 `json:"average_waiting_time"`
	AvgTurnaroundTime float64 `json:"average_turnaround_time"`
	AvgResponseTime   float64 `json:"average_response_time"`
	MaxWaitingTime    int64   `json:"max_waiting_time"`
	CPUUtilization    float64 `json:"cpu_utilization"` // busy ticks / total ticks
	Throughput        float64 `json:"throughput"`      // completed processes per tick
	ContextSwitches   int     `json:"context_switches"`
	Preemptions       int     `json:"preemptions"` // comparison-based plus quantum expiries
	AgingBoosts       int     `json:"aging_boosts"`
}

// Summarize computes the Summary for the current state. Only finished processes
// contribute to the averages.
func (sim *Simulator) Summarize() Summary {
	s := Summary{
		Policy:          sim.config.Policy.String(),
		TotalTime:       sim.clock,
		Completed:       len(sim.finished),
		ContextSwitches: sim.Metrics.ContextSwitches,
		Preemptions:     sim.Metrics.Preemptions + sim.Metrics.QuantumExpiries,
		AgingBoosts:     sim.Metrics.AgingBoosts,
	}
	if sim.clock > 0 {
		s.CPUUtilization = float64(sim.Metrics.BusyTicks) / float64(sim.clock)
		s.Throughput = float64(len(sim.finished)) / float64(sim.clock)
	}
	if len(sim.finished) == 0 {
		return s
	}
	var waiting, turnaround, response int64
	for _, p := range sim.finished {
		waiting += p.WaitingTime
		turnaround += p.TurnaroundTime
		response += p.ResponseTime
		s.MaxWaitingTime = max(s.MaxWaitingTime, p.WaitingTime)
	}
	n := float64(len(sim.finished))
	s.AvgWaitingTime = float64(waiting) / n
	s.AvgTurnaroundTime = float64(turnaround) / n
	s.AvgResponseTime = float64(response) / n
	return s
}

// Print displays the summary at the end of the simulation.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Policy               : %s\n", s.Policy)
	fmt.Fprintf(w, "Total Time           : %d ticks\n", s.TotalTime)
	fmt.Fprintf(w, "Completed Processes  : %d\n", s.Completed)
	if s.Completed > 0 {
		fmt.Fprintf(w, "Average Waiting Time : %.2f ticks\n", s.AvgWaitingTime)
		fmt.Fprintf(w, "Average Turnaround   : %.2f ticks\n", s.AvgTurnaroundTime)
		fmt.Fprintf(w, "Average Response     : %.2f ticks\n", s.AvgResponseTime)
		fmt.Fprintf(w, "CPU Utilization      : %.2f%%\n", s.CPUUtilization*100)
		fmt.Fprintf(w, "Throughput           : %.4f processes/tick\n", s.Throughput)
		fmt.Fprintf(w, "Context Switches     : %d\n", s.ContextSwitches)
	}
}
