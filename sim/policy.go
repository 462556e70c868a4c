package sim

import (
	"errors"
	"fmt"
)

// Policy identifies a scheduling algorithm. The set is closed: every switch over
// Policy in this package handles all six values.
type Policy int

const (
	PolicyFCFS       Policy = iota // First-Come-First-Served, non-preemptive
	PolicySJF                      // Shortest Job First by burst time, non-preemptive
	PolicySRTF                     // Shortest Remaining Time First, preemptive
	PolicyRR                       // Round Robin with a fixed time quantum
	PolicyPriority                 // Priority, preemptive
	PolicyPriorityNP               // Priority, non-preemptive
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognized names.
// The accompanying Policy value is always PolicyFCFS.
var ErrUnknownPolicy = errors.New("unknown scheduling policy")

// policyNames maps every accepted spelling to its Policy. The canonical names
// match Policy.String(); the lower-case forms are accepted for CLI convenience.
var policyNames = map[string]Policy{
	"FCFS":        PolicyFCFS,
	"fcfs":        PolicyFCFS,
	"SJF":         PolicySJF,
	"sjf":         PolicySJF,
	"SRTF":        PolicySRTF,
	"srtf":        PolicySRTF,
	"RR":          PolicyRR,
	"rr":          PolicyRR,
	"round-robin": PolicyRR,
	"Priority":    PolicyPriority,
	"priority":    PolicyPriority,
	"PriorityNP":  PolicyPriorityNP,
	"priority-np": PolicyPriorityNP,
}

// AllPolicies lists every policy in declaration order.
func AllPolicies() []Policy {
	return []Policy{PolicyFCFS, PolicySJF, PolicySRTF, PolicyRR, PolicyPriority, PolicyPriorityNP}
}

// IsValidPolicy returns true if name resolves to a policy without falling back.
func IsValidPolicy(name string) bool {
	_, ok := policyNames[name]
	return ok
}

// ParsePolicy resolves a policy name.
// Empty string means FCFS. Unrecognized names fall back to FCFS and return
// ErrUnknownPolicy so the caller can decide whether the fallback is acceptable.
func ParsePolicy(name string) (Policy, error) {
	if name == "" {
		return PolicyFCFS, nil
	}
	if p, ok := policyNames[name]; ok {
		return p, nil
	}
	return PolicyFCFS, fmt.Errorf("%w %q, using FCFS", ErrUnknownPolicy, name)
}

func (p Policy) String() string {
	switch p {
	case PolicyFCFS:
		return "FCFS"
	case PolicySJF:
		return "SJF"
	case PolicySRTF:
		return "SRTF"
	case PolicyRR:
		return "RR"
	case PolicyPriority:
		return "Priority"
	case PolicyPriorityNP:
		return "PriorityNP"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Preemptive reports whether the policy may remove a running process before it finishes.
func (p Policy) Preemptive() bool {
	switch p {
	case PolicySRTF, PolicyRR, PolicyPriority:
		return true
	case PolicyFCFS, PolicySJF, PolicyPriorityNP:
		return false
	default:
		panic(fmt.Sprintf("unhandled policy %d", int(p)))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike ParsePolicy it
// rejects unknown names, since a config file typo should not silently become FCFS.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
