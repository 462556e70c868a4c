// Package trace provides per-tick event recording for scheduling simulations.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import (
	"fmt"
	"strings"
)

// EventKind identifies what happened to a process during a tick.
type EventKind string

const (
	EventArrival        EventKind = "arrival"         // job pool → ready queue
	EventQuantumExpired EventKind = "quantum-expired" // RR preemption
	EventPreempted      EventKind = "preempted"       // SRTF / Priority preemption
	EventDispatch       EventKind = "dispatch"        // ready queue → CPU
	EventRun            EventKind = "run"             // executed one unit
	EventCompletion     EventKind = "completion"      // remaining time reached 0
	EventAgingBoost     EventKind = "aging-boost"     // priority lowered by aging
	EventIdle           EventKind = "idle"            // nothing to run
)

// NoProcess is the ProcessID used by events that do not concern a process.
const NoProcess = -1

// TickEvent captures a single scheduling event.
// Which optional fields are meaningful depends on Kind:
//   - Preempted: By/ByName name the preemptor, Cause the policy, Value/ByValue the compared keys
//   - Run: Remaining is the remaining time before the unit executed
//   - AgingBoost: Value is the new priority
type TickEvent struct {
	Kind      EventKind `json:"kind"`
	ProcessID int       `json:"process_id"`
	Name      string    `json:"name,omitempty"`
	By        int       `json:"by,omitempty"`
	Cause     string    `json:"cause,omitempty"`
	Value     int64     `json:"value,omitempty"`
	ByValue   int64     `json:"by_value,omitempty"`
	Remaining int64     `json:"remaining,omitempty"`
}

// TickRecord groups every event that happened during one tick.
type TickRecord struct {
	Clock           int64       `json:"clock"`
	Events          []TickEvent `json:"events"`
	AlreadyFinished bool        `json:"already_finished,omitempty"`
}

// Add appends an event to the record.
func (r *TickRecord) Add(ev TickEvent) {
	r.Events = append(r.Events, ev)
}

// Executed returns the Run event of this tick, if a process executed.
func (r TickRecord) Executed() (TickEvent, bool) {
	for _, ev := range r.Events {
		if ev.Kind == EventRun {
			return ev, true
		}
	}
	return TickEvent{}, false
}

// Count returns the number of events of the given kind.
func (r TickRecord) Count(kind EventKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// String renders the human-readable trace line for this tick.
func (r TickRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Time %d:", r.Clock)
	if r.AlreadyFinished {
		sb.WriteString(" Simulation already finished.")
		return sb.String()
	}
	for _, ev := range r.Events {
		sb.WriteString(" ")
		sb.WriteString(ev.String())
	}
	return sb.String()
}

func (ev TickEvent) String() string {
	switch ev.Kind {
	case EventArrival:
		return fmt.Sprintf("Process %d arrived.", ev.ProcessID)
	case EventQuantumExpired:
		return fmt.Sprintf("Process %d quantum expired.", ev.ProcessID)
	case EventPreempted:
		if ev.Cause == "Priority" {
			return fmt.Sprintf("Process %d preempted by Process %d (Priority %d < %d).",
				ev.ProcessID, ev.By, ev.ByValue, ev.Value)
		}
		return fmt.Sprintf("Process %d preempted by Process %d (%s).", ev.ProcessID, ev.By, ev.Cause)
	case EventDispatch:
		return fmt.Sprintf("Dispatched Process %d.", ev.ProcessID)
	case EventRun:
		return fmt.Sprintf("Running Process %d (%d remaining).", ev.ProcessID, ev.Remaining)
	case EventCompletion:
		return fmt.Sprintf("Process %d finished.", ev.ProcessID)
	case EventAgingBoost:
		return fmt.Sprintf("[Aged: P%d priority=%d]", ev.ProcessID, ev.Value)
	case EventIdle:
		return "CPU Idle."
	default:
		return fmt.Sprintf("<%s P%d>", ev.Kind, ev.ProcessID)
	}
}
