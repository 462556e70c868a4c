// Package testutil provides shared test infrastructure for the scheduler.
// It holds the golden dataset types and assertion helpers used across sim/
// test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one hand-verified schedule: a workload, a configuration and
// the exact per-process results it must produce.
type GoldenTestCase struct {
	Name           string           `json:"name"`
	Policy         string           `json:"policy"`
	Quantum        int              `json:"quantum"`
	AgingEnabled   bool             `json:"aging_enabled"`
	AgingThreshold int              `json:"aging_threshold"`
	Processes      []GoldenProcess  `json:"processes"`
	Gantt          string           `json:"gantt"`
	Metrics        GoldenMetrics    `json:"metrics"`
	Results        []GoldenFinished `json:"results"` // completion order
}

// GoldenProcess is a submitted process.
type GoldenProcess struct {
	ID       int   `json:"id"`
	Arrival  int64 `json:"arrival"`
	Burst    int64 `json:"burst"`
	Priority int   `json:"priority"`
}

// GoldenFinished is the expected timing of one finished process.
type GoldenFinished struct {
	ID         int   `json:"id"`
	Start      int64 `json:"start"`
	Completion int64 `json:"completion"`
	Waiting    int64 `json:"waiting"`
	Turnaround int64 `json:"turnaround"`
	Response   int64 `json:"response"`
}

// GoldenMetrics represents the expected aggregate metrics of a golden case.
type GoldenMetrics struct {
	TotalTime         int64   `json:"total_time"`
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	CPUUtilization    float64 `json:"cpu_utilization"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset has no test cases")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
