package workload

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cpu-sched/cpu-sched/sim"
)

// WorkloadSpec is the top-level workload configuration.
// Loaded from YAML via LoadWorkloadSpec(path) or from a CSV process table via LoadCSV.
// Zero-valued scheduling fields keep the engine defaults.
type WorkloadSpec struct {
	Version   string         `yaml:"version"`
	Policy    string         `yaml:"policy,omitempty"`
	Quantum   int            `yaml:"quantum,omitempty"`
	Aging     *AgingSpec     `yaml:"aging,omitempty"`
	MaxTicks  int64          `yaml:"max_ticks,omitempty"` // safety ceiling; 0 = driver default
	Processes []ProcessSpec  `yaml:"processes"`
	Generator *GeneratorSpec `yaml:"generator,omitempty"` // synthesize processes instead of listing them
}

// AgingSpec configures priority aging.
type AgingSpec struct {
	Enabled   bool `yaml:"enabled"`
	Threshold int  `yaml:"threshold,omitempty"`
}

// ProcessSpec describes one submitted process.
type ProcessSpec struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name,omitempty"` // defaults to "P<id>"
	Arrival  int64  `yaml:"arrival"`
	Burst    int64  `yaml:"burst"`
	Priority int    `yaml:"priority"`
}

// DisplayName returns Name, or "P<id>" when unset.
func (p ProcessSpec) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("P%d", p.ID)
}

// Load reads a workload from path, choosing the CSV reader for .csv files and
// the YAML reader otherwise.
func Load(path string) (*WorkloadSpec, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading workload csv: %w", err)
		}
		defer f.Close()
		procs, err := ReadCSV(f)
		if err != nil {
			return nil, err
		}
		return &WorkloadSpec{Version: "1", Processes: procs}, nil
	}
	return LoadWorkloadSpec(path)
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	return ParseWorkloadSpec(data)
}

// ParseWorkloadSpec parses YAML workload bytes with strict field checking.
// A generator section, if present, is expanded into Processes.
func ParseWorkloadSpec(data []byte) (*WorkloadSpec, error) {
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	if spec.Generator != nil {
		if len(spec.Processes) > 0 {
			return nil, errors.New("workload spec: processes and generator are mutually exclusive")
		}
		procs, err := Generate(*spec.Generator)
		if err != nil {
			return nil, fmt.Errorf("workload spec: %w", err)
		}
		spec.Processes = procs
	}
	return &spec, nil
}

// Validate checks every field and reports all malformed processes at once.
func (s *WorkloadSpec) Validate() error {
	var errs []error
	if s.Policy != "" && !sim.IsValidPolicy(s.Policy) {
		errs = append(errs, fmt.Errorf("unknown policy %q; valid: FCFS, SJF, SRTF, RR, Priority, PriorityNP", s.Policy))
	}
	if s.Quantum < 0 {
		errs = append(errs, fmt.Errorf("quantum must be positive, got %d", s.Quantum))
	}
	if s.Aging != nil && s.Aging.Threshold < 0 {
		errs = append(errs, fmt.Errorf("aging.threshold must be positive, got %d", s.Aging.Threshold))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("max_ticks must be non-negative, got %d", s.MaxTicks))
	}
	if len(s.Processes) == 0 {
		errs = append(errs, errors.New("at least one process required"))
	}
	seen := make(map[int]bool, len(s.Processes))
	for i, p := range s.Processes {
		prefix := fmt.Sprintf("processes[%d]", i)
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %d", prefix, p.ID))
		}
		seen[p.ID] = true
		if p.Arrival < 0 {
			errs = append(errs, fmt.Errorf("%s: arrival must be non-negative, got %d", prefix, p.Arrival))
		}
		if p.Burst <= 0 {
			errs = append(errs, fmt.Errorf("%s: burst must be positive, got %d", prefix, p.Burst))
		}
		if p.Priority < 0 {
			errs = append(errs, fmt.Errorf("%s: priority must be non-negative, got %d", prefix, p.Priority))
		}
	}
	return errors.Join(errs...)
}

// Config derives the engine configuration from the spec, starting from base.
// Fields left unset in the spec keep base's values.
func (s *WorkloadSpec) Config(base sim.SimConfig) (sim.SimConfig, error) {
	cfg := base
	if s.Policy != "" {
		policy, err := sim.ParsePolicy(s.Policy)
		if err != nil {
			return cfg, err
		}
		cfg.Policy = policy
	}
	if s.Quantum > 0 {
		cfg.Quantum = s.Quantum
	}
	if s.Aging != nil {
		cfg.AgingEnabled = s.Aging.Enabled
		if s.Aging.Threshold > 0 {
			cfg.AgingThreshold = s.Aging.Threshold
		}
	}
	return cfg, cfg.Validate()
}

// Submit adds every process of the spec to the simulator in spec order.
func (s *WorkloadSpec) Submit(simulator *sim.Simulator) error {
	for _, p := range s.Processes {
		if err := simulator.AddProcess(p.ID, p.DisplayName(), p.Arrival, p.Burst, p.Priority); err != nil {
			return err
		}
	}
	logrus.Debugf("submitted %d processes", len(s.Processes))
	return nil
}

// NewSimulator validates the spec and returns a simulator configured from base
// overridden by the spec, with every process submitted.
func (s *WorkloadSpec) NewSimulator(base sim.SimConfig) (*sim.Simulator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.Config(base)
	if err != nil {
		return nil, err
	}
	simulator, err := sim.NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Submit(simulator); err != nil {
		return nil, err
	}
	return simulator, nil
}
