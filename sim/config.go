package sim

import (
	"errors"
	"fmt"

	"github.com/cpu-sched/cpu-sched/sim/trace"
)

const (
	DefaultQuantum        = 2 // RR time quantum in ticks
	DefaultAgingThreshold = 5 // ready ticks before a priority boost
)

var (
	ErrInvalidQuantum        = errors.New("time quantum must be positive")
	ErrInvalidAgingThreshold = errors.New("aging threshold must be positive")
)

// SimConfig groups the scheduling parameters of a Simulator.
// Every field may also be changed between ticks through the Simulator setters;
// changes take effect from the next tick.
type SimConfig struct {
	Policy         Policy           // scheduling policy (default FCFS)
	Quantum        int              // RR time quantum, > 0
	AgingEnabled   bool             // enable priority aging
	AgingThreshold int              // ready ticks before a priority boost, > 0
	TraceLevel     trace.TraceLevel // "" or "none" disables tick recording
}

// DefaultSimConfig returns FCFS with quantum 2, aging disabled, threshold 5.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Policy:         PolicyFCFS,
		Quantum:        DefaultQuantum,
		AgingThreshold: DefaultAgingThreshold,
		TraceLevel:     trace.TraceLevelNone,
	}
}

// NewPolicyConfig returns the default config with the given policy and quantum.
func NewPolicyConfig(policy Policy, quantum int) SimConfig {
	cfg := DefaultSimConfig()
	cfg.Policy = policy
	cfg.Quantum = quantum
	return cfg
}

// Validate checks parameter ranges.
func (c SimConfig) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidQuantum, c.Quantum)
	}
	if c.AgingThreshold <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidAgingThreshold, c.AgingThreshold)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	// Exhaustiveness check: String() falls through to Policy(n) for out-of-range values.
	for _, p := range AllPolicies() {
		if p == c.Policy {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownPolicy, c.Policy)
}
