package trace

// TraceLevel controls the verbosity of tick tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTicks captures every tick record.
	TraceLevelTicks TraceLevel = "ticks"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelTicks: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects tick records during a simulation.
type SimulationTrace struct {
	Level   TraceLevel
	Records []TickRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:   level,
		Records: make([]TickRecord, 0),
	}
}

// Enabled reports whether records are retained.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelTicks
}

// Record appends a tick record. No-op when tracing is disabled.
// Records flagged AlreadyFinished are not retained: they describe no simulated time.
func (st *SimulationTrace) Record(record TickRecord) {
	if !st.Enabled() || record.AlreadyFinished {
		return
	}
	events := make([]TickEvent, len(record.Events))
	copy(events, record.Events)
	record.Events = events
	st.Records = append(st.Records, record)
}
