package workload

import (
	"fmt"
	"math/rand"
)

// GeneratorSpec synthesizes a random workload. Arrivals follow a Poisson process
// with the given rate (processes per tick); burst and priority are drawn
// uniformly from their inclusive ranges. The same seed always yields the same
// processes.
type GeneratorSpec struct {
	Seed        int64   `yaml:"seed"`
	Count       int     `yaml:"count"`
	Rate        float64 `yaml:"rate"`
	BurstMin    int64   `yaml:"burst_min"`
	BurstMax    int64   `yaml:"burst_max"`
	PriorityMax int     `yaml:"priority_max"`
}

// Generate returns Count processes with IDs 1..Count in arrival order.
func Generate(g GeneratorSpec) ([]ProcessSpec, error) {
	if g.Count <= 0 {
		return nil, fmt.Errorf("generator: count must be positive, got %d", g.Count)
	}
	if g.Rate <= 0 {
		return nil, fmt.Errorf("generator: rate must be positive, got %f", g.Rate)
	}
	if g.BurstMin <= 0 || g.BurstMax < g.BurstMin {
		return nil, fmt.Errorf("generator: burst range [%d, %d] invalid", g.BurstMin, g.BurstMax)
	}
	if g.PriorityMax < 0 {
		return nil, fmt.Errorf("generator: priority_max must be non-negative, got %d", g.PriorityMax)
	}

	rng := rand.New(rand.NewSource(g.Seed))
	procs := make([]ProcessSpec, 0, g.Count)
	arrival := 0.0
	for i := 1; i <= g.Count; i++ {
		procs = append(procs, ProcessSpec{
			ID:       i,
			Arrival:  int64(arrival),
			Burst:    g.BurstMin + rng.Int63n(g.BurstMax-g.BurstMin+1),
			Priority: rng.Intn(g.PriorityMax + 1),
		})
		arrival += rng.ExpFloat64() / g.Rate
	}
	return procs, nil
}
