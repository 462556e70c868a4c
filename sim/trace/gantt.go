package trace

import (
	"fmt"
	"strings"
)

// Segment is a maximal run of consecutive ticks during which the same process
// (or nothing, ProcessID == NoProcess) occupied the CPU. End is exclusive.
type Segment struct {
	ProcessID int    `json:"process_id"`
	Name      string `json:"name"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
}

// Idle reports whether the segment has no process.
func (s Segment) Idle() bool {
	return s.ProcessID == NoProcess
}

// Gantt folds tick records into contiguous execution segments.
// Records must be in clock order, as SimulationTrace stores them.
// A process that is preempted and immediately re-dispatched (RR with a single
// ready process) stays in one segment.
func Gantt(records []TickRecord) []Segment {
	var segments []Segment
	for _, rec := range records {
		if rec.AlreadyFinished {
			continue
		}
		id, name := NoProcess, ""
		if ev, ok := rec.Executed(); ok {
			id, name = ev.ProcessID, ev.Name
		}
		if n := len(segments); n > 0 && segments[n-1].ProcessID == id && segments[n-1].End == rec.Clock {
			segments[n-1].End = rec.Clock + 1
			continue
		}
		segments = append(segments, Segment{ProcessID: id, Name: name, Start: rec.Clock, End: rec.Clock + 1})
	}
	return segments
}

// RenderGantt renders segments as a single text line, e.g. "| P1 0-5 | P2 5-8 | idle 8-9 |".
func RenderGantt(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("|")
	for _, s := range segments {
		label := s.Name
		if s.Idle() {
			label = "idle"
		} else if label == "" {
			label = fmt.Sprintf("P%d", s.ProcessID)
		}
		fmt.Fprintf(&sb, " %s %d-%d |", label, s.Start, s.End)
	}
	return sb.String()
}
