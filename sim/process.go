// Defines the Process struct that models a single CPU-bound workload item in the simulation.
// Tracks arrival, burst and priority, plus the runtime counters used for waiting,
// turnaround and response time statistics.

package sim

import (
	"fmt"
)

// Unset marks a time field that has not been recorded yet (StartTime before the
// first dispatch, CompletionTime before the last unit executes).
const Unset int64 = -1

// ProcessState represents the pool a process currently belongs to.
type ProcessState string

const (
	StateNew      ProcessState = "new"      // in the job pool, not yet arrived
	StateReady    ProcessState = "ready"    // in the ready queue
	StateRunning  ProcessState = "running"  // occupying the CPU slot
	StateFinished ProcessState = "finished" // terminal
)

// Process models one submitted process.
// A process moves strictly new → ready → running → finished, cycling between
// ready and running under preemptive policies. All runtime fields are owned by
// the Simulator and must not be modified by callers.
type Process struct {
	ID               int    // Unique identifier, final tie-break in every ordering
	Name             string // Display label
	ArrivalTime      int64  // Tick at which the process becomes eligible to run
	BurstTime        int64  // Total CPU time required
	Priority         int    // Lower value = higher precedence; lowered by aging
	OriginalPriority int    // Priority at submission, never mutated

	State          ProcessState
	RemainingTime  int64 // Starts at BurstTime, reaches 0 exactly once
	StartTime      int64 // First dispatch tick, Unset until dispatched
	CompletionTime int64 // Tick boundary at which the last unit finished, Unset until then
	WaitingTime    int64 // Ticks spent in the ready queue
	TurnaroundTime int64 // CompletionTime - ArrivalTime
	ResponseTime   int64 // StartTime - ArrivalTime, Unset until dispatched
	AgeCounter     int   // Ready ticks since the last aging boost

	// admittedLate is set when the process was submitted after its arrival tick
	// had already passed; its accumulated WaitingTime then undercounts the derived value.
	admittedLate bool
}

// NewProcess creates a process in the job pool with its runtime fields initialized.
func NewProcess(id int, name string, arrivalTime, burstTime int64, priority int) *Process {
	return &Process{
		ID:               id,
		Name:             name,
		ArrivalTime:      arrivalTime,
		BurstTime:        burstTime,
		Priority:         priority,
		OriginalPriority: priority,
		State:            StateNew,
		RemainingTime:    burstTime,
		StartTime:        Unset,
		CompletionTime:   Unset,
		ResponseTime:     Unset,
	}
}

// Started reports whether the process has been dispatched at least once.
func (p *Process) Started() bool {
	return p.StartTime != Unset
}

// This method returns a human-readable string representation of a Process.
func (p Process) String() string {
	return fmt.Sprintf("Process: (ID: %d, Name: %s, State: %s, Remaining: %d, Priority: %d)",
		p.ID, p.Name, p.State, p.RemainingTime, p.Priority)
}
