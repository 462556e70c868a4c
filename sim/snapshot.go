package sim

import (
	"encoding/json"
)

// Snapshot is a read-only export of the full engine state.
// JSON field names are the front end's contract; empty slots serialize as null
// and empty pools as [].
type Snapshot struct {
	Time         int64           `json:"time"`
	Algorithm    string          `json:"algorithm"`
	CPUProcess   *CPUEntry       `json:"cpu_process"`
	LastExecuted *ExecutedEntry  `json:"last_executed"`
	ReadyQueue   []ReadyEntry    `json:"ready_queue"`
	JobPool      []JobEntry      `json:"job_pool"`
	Finished     []FinishedEntry `json:"finished"`
}

// CPUEntry describes the process occupying the CPU slot after the last tick.
type CPUEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Remaining   int64  `json:"remaining"`
	QuantumUsed int    `json:"quantum_used"`
}

// ExecutedEntry names the process that executed during the tick just completed.
// It differs from CPUEntry when that process finished and left the slot empty.
type ExecutedEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ReadyEntry describes a process in the ready queue, in queue order.
type ReadyEntry struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Remaining  int64  `json:"remaining"`
	Priority   int    `json:"priority"`
	AgeCounter int    `json:"age_counter"`
}

// JobEntry describes a process that has not arrived yet.
type JobEntry struct {
	ID      int   `json:"id"`
	Arrival int64 `json:"arrival"`
}

// FinishedEntry carries the timing statistics of a finished process.
type FinishedEntry struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	ArrivalTime    int64  `json:"arrival_time"`
	BurstTime      int64  `json:"burst_time"`
	Priority       int    `json:"original_priority"`
	StartTime      int64  `json:"start_time"`
	CompletionTime int64  `json:"completion_time"`
	WaitingTime    int64  `json:"waiting_time"`
	TurnaroundTime int64  `json:"turnaround_time"`
	ResponseTime   int64  `json:"response_time"`
}

// Snapshot exports the current state. It has no side effects: two calls with
// no intervening Step return equal values.
func (sim *Simulator) Snapshot() Snapshot {
	s := Snapshot{
		Time:       sim.clock,
		Algorithm:  sim.config.Policy.String(),
		ReadyQueue: make([]ReadyEntry, 0, sim.ReadyQ.Len()),
		JobPool:    make([]JobEntry, 0, len(sim.jobPool)),
		Finished:   make([]FinishedEntry, 0, len(sim.finished)),
	}
	if p := sim.cpu; p != nil {
		s.CPUProcess = &CPUEntry{ID: p.ID, Name: p.Name, Remaining: p.RemainingTime, QuantumUsed: sim.quantumUsed}
	}
	if p := sim.lastExecuted; p != nil {
		s.LastExecuted = &ExecutedEntry{ID: p.ID, Name: p.Name}
	}
	for _, p := range sim.ReadyQ.Items() {
		s.ReadyQueue = append(s.ReadyQueue, ReadyEntry{
			ID:         p.ID,
			Name:       p.Name,
			Remaining:  p.RemainingTime,
			Priority:   p.Priority,
			AgeCounter: p.AgeCounter,
		})
	}
	for _, p := range sim.jobPool {
		s.JobPool = append(s.JobPool, JobEntry{ID: p.ID, Arrival: p.ArrivalTime})
	}
	for _, p := range sim.finished {
		s.Finished = append(s.Finished, FinishedEntry{
			ID:             p.ID,
			Name:           p.Name,
			ArrivalTime:    p.ArrivalTime,
			BurstTime:      p.BurstTime,
			Priority:       p.OriginalPriority,
			StartTime:      p.StartTime,
			CompletionTime: p.CompletionTime,
			WaitingTime:    p.WaitingTime,
			TurnaroundTime: p.TurnaroundTime,
			ResponseTime:   p.ResponseTime,
		})
	}
	return s
}

// SnapshotJSON returns the snapshot encoded as JSON.
func (sim *Simulator) SnapshotJSON() ([]byte, error) {
	return json.Marshal(sim.Snapshot())
}
