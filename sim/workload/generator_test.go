package workload

import (
	"reflect"
	"testing"
)

func validGenerator() GeneratorSpec {
	return GeneratorSpec{Seed: 42, Count: 50, Rate: 0.3, BurstMin: 2, BurstMax: 9, PriorityMax: 4}
}

func TestGenerate_SameSeed_Deterministic(t *testing.T) {
	a, err := Generate(validGenerator())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate(validGenerator())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different workloads")
	}

	g := validGenerator()
	g.Seed = 43
	c, _ := Generate(g)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical workloads")
	}
}

func TestGenerate_FieldsWithinRanges(t *testing.T) {
	g := validGenerator()
	procs, err := Generate(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(procs) != g.Count {
		t.Fatalf("got %d processes, want %d", len(procs), g.Count)
	}
	var prevArrival int64
	for i, p := range procs {
		if p.ID != i+1 {
			t.Errorf("procs[%d].ID = %d, want %d", i, p.ID, i+1)
		}
		if p.Arrival < prevArrival {
			t.Errorf("procs[%d] arrival %d before previous %d", i, p.Arrival, prevArrival)
		}
		prevArrival = p.Arrival
		if p.Burst < g.BurstMin || p.Burst > g.BurstMax {
			t.Errorf("procs[%d] burst %d outside [%d, %d]", i, p.Burst, g.BurstMin, g.BurstMax)
		}
		if p.Priority < 0 || p.Priority > g.PriorityMax {
			t.Errorf("procs[%d] priority %d outside [0, %d]", i, p.Priority, g.PriorityMax)
		}
	}
	if procs[0].Arrival != 0 {
		t.Errorf("first arrival = %d, want 0", procs[0].Arrival)
	}
}

func TestGenerate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorSpec)
	}{
		{"zero count", func(g *GeneratorSpec) { g.Count = 0 }},
		{"zero rate", func(g *GeneratorSpec) { g.Rate = 0 }},
		{"zero burst min", func(g *GeneratorSpec) { g.BurstMin = 0 }},
		{"inverted burst range", func(g *GeneratorSpec) { g.BurstMin, g.BurstMax = 5, 4 }},
		{"negative priority max", func(g *GeneratorSpec) { g.PriorityMax = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGenerator()
			tt.mutate(&g)
			if _, err := Generate(g); err == nil {
				t.Error("expected error")
			}
		})
	}
}
