package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Ticks            int
	IdleTicks        int
	Arrivals         int
	Dispatches       int
	ContextSwitches  int // dispatches of a process other than the one that ran last
	Completions      int
	QuantumExpiries  int
	Preemptions      int            // comparison-based preemptions (SRTF, Priority)
	PreemptionCauses map[string]int // cause → count
	AgingBoosts      int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PreemptionCauses: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	lastRan := NoProcess
	for _, rec := range st.Records {
		summary.Ticks++
		for _, ev := range rec.Events {
			switch ev.Kind {
			case EventArrival:
				summary.Arrivals++
			case EventDispatch:
				summary.Dispatches++
				if ev.ProcessID != lastRan {
					summary.ContextSwitches++
				}
			case EventRun:
				lastRan = ev.ProcessID
			case EventCompletion:
				summary.Completions++
			case EventQuantumExpired:
				summary.QuantumExpiries++
			case EventPreempted:
				summary.Preemptions++
				summary.PreemptionCauses[ev.Cause]++
			case EventAgingBoost:
				summary.AgingBoosts++
			case EventIdle:
				summary.IdleTicks++
			}
		}
	}
	return summary
}
