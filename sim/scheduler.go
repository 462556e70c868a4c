package sim

import (
	"fmt"
	"sort"
)

// Scheduler decides dispatch order and preemption for one policy.
// OrderQueue sorts the ready queue in-place so that the next process to dispatch is
// first; implementations use sort.SliceStable with a full (key, arrival, ID) order
// for determinism. Preemptor returns the ready process that justifies removing the
// running process from the CPU, or nil.
//
// Round Robin quantum expiry is time-based rather than comparison-based and is
// handled by the Simulator directly.
type Scheduler interface {
	OrderQueue(procs []*Process)
	Preemptor(running *Process, ready []*Process) *Process
}

// FCFSScheduler preserves insertion order (no-op) and never preempts.
// Used for both FCFS and RR.
type FCFSScheduler struct{}

func (f *FCFSScheduler) OrderQueue(_ []*Process) {
	// No-op: FIFO order preserved from enqueue order
}

func (f *FCFSScheduler) Preemptor(_ *Process, _ []*Process) *Process {
	return nil
}

// SJFScheduler sorts by burst time (ascending), then arrival time, then ID.
// Non-preemptive. Warning: SJF can starve long processes under sustained load.
type SJFScheduler struct{}

func (s *SJFScheduler) OrderQueue(procs []*Process) {
	sort.SliceStable(procs, func(i, j int) bool {
		if procs[i].BurstTime != procs[j].BurstTime {
			return procs[i].BurstTime < procs[j].BurstTime
		}
		return arrivalThenID(procs[i], procs[j])
	})
}

func (s *SJFScheduler) Preemptor(_ *Process, _ []*Process) *Process {
	return nil
}

// SRTFScheduler sorts by remaining time (ascending), then arrival time, then ID.
// A ready process with strictly less remaining time than the running one preempts it.
type SRTFScheduler struct{}

func (s *SRTFScheduler) OrderQueue(procs []*Process) {
	sort.SliceStable(procs, func(i, j int) bool {
		if procs[i].RemainingTime != procs[j].RemainingTime {
			return procs[i].RemainingTime < procs[j].RemainingTime
		}
		return arrivalThenID(procs[i], procs[j])
	})
}

func (s *SRTFScheduler) Preemptor(running *Process, ready []*Process) *Process {
	if running == nil {
		return nil
	}
	best := minBy(ready, func(p *Process) int64 { return p.RemainingTime })
	if best != nil && best.RemainingTime < running.RemainingTime {
		return best
	}
	return nil
}

// PriorityScheduler sorts by priority value (ascending, lower is more urgent),
// then arrival time, then ID. With Preemptive set, a ready process with a strictly
// smaller priority value preempts the running one.
type PriorityScheduler struct {
	Preemptive bool
}

func (p *PriorityScheduler) OrderQueue(procs []*Process) {
	sort.SliceStable(procs, func(i, j int) bool {
		if procs[i].Priority != procs[j].Priority {
			return procs[i].Priority < procs[j].Priority
		}
		return arrivalThenID(procs[i], procs[j])
	})
}

func (p *PriorityScheduler) Preemptor(running *Process, ready []*Process) *Process {
	if !p.Preemptive || running == nil {
		return nil
	}
	best := minBy(ready, func(q *Process) int64 { return int64(q.Priority) })
	if best != nil && best.Priority < running.Priority {
		return best
	}
	return nil
}

func arrivalThenID(a, b *Process) bool {
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.ID < b.ID
}

// minBy returns the process with the smallest key, ties broken by ID.
// Returns nil for an empty slice.
func minBy(procs []*Process, key func(*Process) int64) *Process {
	var best *Process
	for _, p := range procs {
		if best == nil {
			best = p
			continue
		}
		kp, kb := key(p), key(best)
		if kp < kb || (kp == kb && p.ID < best.ID) {
			best = p
		}
	}
	return best
}

// NewScheduler creates the Scheduler for a policy.
// Panics on values outside the Policy enumeration.
func NewScheduler(policy Policy) Scheduler {
	switch policy {
	case PolicyFCFS, PolicyRR:
		return &FCFSScheduler{}
	case PolicySJF:
		return &SJFScheduler{}
	case PolicySRTF:
		return &SRTFScheduler{}
	case PolicyPriority:
		return &PriorityScheduler{Preemptive: true}
	case PolicyPriorityNP:
		return &PriorityScheduler{Preemptive: false}
	default:
		panic(fmt.Sprintf("unhandled policy %d", int(policy)))
	}
}
