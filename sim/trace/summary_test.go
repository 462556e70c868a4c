package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceLevelTicks)

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.Ticks != 0 || summary.Dispatches != 0 || summary.Completions != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if len(summary.PreemptionCauses) != 0 {
		t.Error("expected empty preemption causes")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.Ticks != 0 || summary.PreemptionCauses == nil {
		t.Errorf("expected zero summary with initialized map, got %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace of five ticks: P1 runs, P2 preempts it, P1 resumes, then idle
	st := NewSimulationTrace(TraceLevelTicks)
	st.Record(TickRecord{Clock: 0, Events: []TickEvent{
		{Kind: EventArrival, ProcessID: 1},
		{Kind: EventDispatch, ProcessID: 1},
		{Kind: EventRun, ProcessID: 1, Remaining: 3},
	}})
	st.Record(TickRecord{Clock: 1, Events: []TickEvent{
		{Kind: EventArrival, ProcessID: 2},
		{Kind: EventPreempted, ProcessID: 1, By: 2, Cause: "SRTF"},
		{Kind: EventDispatch, ProcessID: 2},
		{Kind: EventRun, ProcessID: 2, Remaining: 1},
		{Kind: EventCompletion, ProcessID: 2},
	}})
	st.Record(TickRecord{Clock: 2, Events: []TickEvent{
		{Kind: EventDispatch, ProcessID: 1},
		{Kind: EventRun, ProcessID: 1, Remaining: 2},
		{Kind: EventAgingBoost, ProcessID: 3, Value: 1},
	}})
	st.Record(TickRecord{Clock: 3, Events: []TickEvent{
		{Kind: EventRun, ProcessID: 1, Remaining: 1},
		{Kind: EventCompletion, ProcessID: 1},
	}})
	st.Record(TickRecord{Clock: 4, Events: []TickEvent{{Kind: EventIdle, ProcessID: NoProcess}}})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	checks := []struct {
		name      string
		got, want int
	}{
		{"ticks", summary.Ticks, 5},
		{"idle", summary.IdleTicks, 1},
		{"arrivals", summary.Arrivals, 2},
		{"dispatches", summary.Dispatches, 3},
		{"context switches", summary.ContextSwitches, 3},
		{"completions", summary.Completions, 2},
		{"preemptions", summary.Preemptions, 1},
		{"SRTF preemptions", summary.PreemptionCauses["SRTF"], 1},
		{"aging boosts", summary.AgingBoosts, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestSummarize_RedispatchOfLastRunProcess_NotAContextSwitch(t *testing.T) {
	// GIVEN P1 expiring its quantum and being dispatched again immediately
	st := NewSimulationTrace(TraceLevelTicks)
	st.Record(TickRecord{Clock: 0, Events: []TickEvent{
		{Kind: EventDispatch, ProcessID: 1},
		{Kind: EventRun, ProcessID: 1},
	}})
	st.Record(TickRecord{Clock: 1, Events: []TickEvent{
		{Kind: EventQuantumExpired, ProcessID: 1},
		{Kind: EventDispatch, ProcessID: 1},
		{Kind: EventRun, ProcessID: 1},
	}})

	summary := Summarize(st)

	if summary.Dispatches != 2 || summary.ContextSwitches != 1 || summary.QuantumExpiries != 1 {
		t.Errorf("got dispatches=%d switches=%d expiries=%d, want 2/1/1",
			summary.Dispatches, summary.ContextSwitches, summary.QuantumExpiries)
	}
}
