package workload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpu-sched/cpu-sched/sim"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWorkloadSpec_ValidYAML_LoadsCorrectly(t *testing.T) {
	path := writeTemp(t, "workload.yaml", `
version: "1"
policy: RR
quantum: 3
aging:
  enabled: true
  threshold: 4
max_ticks: 500
processes:
  - id: 1
    name: editor
    arrival: 0
    burst: 5
    priority: 2
  - id: 2
    arrival: 1
    burst: 3
`)

	spec, err := LoadWorkloadSpec(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Policy != "RR" || spec.Quantum != 3 || spec.MaxTicks != 500 {
		t.Errorf("scheduling fields = %q/%d/%d, want RR/3/500", spec.Policy, spec.Quantum, spec.MaxTicks)
	}
	if spec.Aging == nil || !spec.Aging.Enabled || spec.Aging.Threshold != 4 {
		t.Errorf("aging = %+v, want enabled with threshold 4", spec.Aging)
	}
	if len(spec.Processes) != 2 {
		t.Fatalf("got %d processes, want 2", len(spec.Processes))
	}
	if got := spec.Processes[0].DisplayName(); got != "editor" {
		t.Errorf("processes[0] name = %q, want editor", got)
	}
	if got := spec.Processes[1].DisplayName(); got != "P2" {
		t.Errorf("processes[1] default name = %q, want P2", got)
	}
}

func TestParseWorkloadSpec_UnknownKey_Rejected(t *testing.T) {
	// GIVEN a typo in a field name
	data := []byte(`
polcy: SJF
processes:
  - {id: 1, arrival: 0, burst: 2}
`)
	// WHEN parsed
	_, err := ParseWorkloadSpec(data)

	// THEN strict parsing rejects it
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "polcy") {
		t.Errorf("error should name the bad key: %v", err)
	}
}

func TestParseWorkloadSpec_DefaultsVersion(t *testing.T) {
	spec, err := ParseWorkloadSpec([]byte("processes:\n  - {id: 1, arrival: 0, burst: 2}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Version != "1" {
		t.Errorf("version = %q, want 1", spec.Version)
	}
}

func TestParseWorkloadSpec_Generator_ExpandsProcesses(t *testing.T) {
	spec, err := ParseWorkloadSpec([]byte(`
generator:
  seed: 7
  count: 10
  rate: 0.5
  burst_min: 1
  burst_max: 6
  priority_max: 3
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Processes) != 10 {
		t.Fatalf("got %d processes, want 10", len(spec.Processes))
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("generated workload should validate: %v", err)
	}
}

func TestParseWorkloadSpec_GeneratorAndProcesses_MutuallyExclusive(t *testing.T) {
	_, err := ParseWorkloadSpec([]byte(`
processes:
  - {id: 1, arrival: 0, burst: 2}
generator: {seed: 1, count: 2, rate: 1, burst_min: 1, burst_max: 2}
`))
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("expected mutually exclusive error, got %v", err)
	}
}

func TestWorkloadSpec_Validate_ReportsAllErrors(t *testing.T) {
	// GIVEN a spec with several independent problems
	spec := &WorkloadSpec{
		Policy:  "lottery",
		Quantum: -1,
		Processes: []ProcessSpec{
			{ID: 1, Arrival: -2, Burst: 3},
			{ID: 1, Arrival: 0, Burst: 0},
			{ID: 2, Arrival: 0, Burst: 1, Priority: -1},
		},
	}

	// WHEN validated
	err := spec.Validate()

	// THEN every problem is reported
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		`unknown policy "lottery"`,
		"quantum must be positive",
		"processes[0]: arrival must be non-negative",
		"processes[1]: duplicate id 1",
		"processes[1]: burst must be positive",
		"processes[2]: priority must be non-negative",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestWorkloadSpec_Validate_EmptyWorkload(t *testing.T) {
	err := (&WorkloadSpec{}).Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one process") {
		t.Errorf("expected empty-workload error, got %v", err)
	}
}

func TestWorkloadSpec_Config_OverridesOnlySetFields(t *testing.T) {
	base := sim.DefaultSimConfig()
	base.AgingThreshold = 9

	tests := []struct {
		name string
		spec WorkloadSpec
		want func(sim.SimConfig) bool
	}{
		{
			name: "empty spec keeps base",
			spec: WorkloadSpec{},
			want: func(c sim.SimConfig) bool { return c == base },
		},
		{
			name: "policy and quantum",
			spec: WorkloadSpec{Policy: "rr", Quantum: 4},
			want: func(c sim.SimConfig) bool { return c.Policy == sim.PolicyRR && c.Quantum == 4 },
		},
		{
			name: "aging without threshold keeps base threshold",
			spec: WorkloadSpec{Aging: &AgingSpec{Enabled: true}},
			want: func(c sim.SimConfig) bool { return c.AgingEnabled && c.AgingThreshold == 9 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.spec.Config(base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.want(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestWorkloadSpec_Config_UnknownPolicy(t *testing.T) {
	_, err := (&WorkloadSpec{Policy: "lottery"}).Config(sim.DefaultSimConfig())
	if !errors.Is(err, sim.ErrUnknownPolicy) {
		t.Errorf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestWorkloadSpec_NewSimulator_RunsToCompletion(t *testing.T) {
	// GIVEN an SJF workload
	spec := &WorkloadSpec{
		Policy: "SJF",
		Processes: []ProcessSpec{
			{ID: 1, Arrival: 0, Burst: 4},
			{ID: 2, Arrival: 1, Burst: 3},
			{ID: 3, Arrival: 2, Burst: 1},
		},
	}

	// WHEN a simulator is built and run
	simulator, err := spec.NewSimulator(sim.DefaultSimConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := simulator.Run(100); err != nil {
		t.Fatalf("run: %v", err)
	}

	// THEN the short job runs before P2 once P1 finishes
	var order []int
	for _, p := range simulator.Finished() {
		order = append(order, p.ID)
	}
	want := []int{1, 3, 2}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("completion order = %v, want %v", order, want)
		}
	}
	if simulator.Clock() != 8 {
		t.Errorf("clock = %d, want 8", simulator.Clock())
	}
}

func TestWorkloadSpec_NewSimulator_InvalidSpec(t *testing.T) {
	spec := &WorkloadSpec{Processes: []ProcessSpec{{ID: 1, Arrival: 0, Burst: 0}}}
	if _, err := spec.NewSimulator(sim.DefaultSimConfig()); err == nil {
		t.Error("expected error for zero burst")
	}
}

func TestLoad_CSVExtension_UsesCSVReader(t *testing.T) {
	path := writeTemp(t, "procs.CSV", "id,arrival,burst,priority\n1,0,5,2\n2,3,1,0\n")

	spec, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Processes) != 2 || spec.Processes[0].Priority != 2 || spec.Processes[1].Arrival != 3 {
		t.Errorf("unexpected processes %+v", spec.Processes)
	}
	if spec.Version != "1" {
		t.Errorf("version = %q, want 1", spec.Version)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	for _, name := range []string{"missing.yaml", "missing.csv"} {
		if _, err := Load(filepath.Join(t.TempDir(), name)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
