package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Initial_EmptySlotsNullAndPoolsEmpty(t *testing.T) {
	s := newTestSimulator(t, PolicyRR, 2)

	data, err := s.SnapshotJSON()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"time": 0,
		"algorithm": "RR",
		"cpu_process": null,
		"last_executed": null,
		"ready_queue": [],
		"job_pool": [],
		"finished": []
	}`, string(data))
}

func TestSnapshot_MidRun_ReportsEveryPool(t *testing.T) {
	// GIVEN RR with P1 running, P2 ready and P3 pending
	s := newTestSimulator(t, PolicyRR, 2)
	mustAdd(t, s, 1, 0, 3, 1)
	mustAdd(t, s, 2, 0, 2, 4)
	mustAdd(t, s, 3, 9, 1, 0)

	// WHEN one tick runs
	s.Tick()
	snap := s.Snapshot()

	// THEN each pool is described
	assert.Equal(t, int64(1), snap.Time)
	assert.Equal(t, &CPUEntry{ID: 1, Name: "P1", Remaining: 2, QuantumUsed: 1}, snap.CPUProcess)
	assert.Equal(t, &ExecutedEntry{ID: 1, Name: "P1"}, snap.LastExecuted)
	assert.Equal(t, []ReadyEntry{{ID: 2, Name: "P2", Remaining: 2, Priority: 4}}, snap.ReadyQueue)
	assert.Equal(t, []JobEntry{{ID: 3, Arrival: 9}}, snap.JobPool)
	assert.Empty(t, snap.Finished)
}

func TestSnapshot_ProcessFinishedThisTick_LastExecutedSetCPUEmpty(t *testing.T) {
	// GIVEN a one-unit process
	s := newTestSimulator(t, PolicyFCFS, DefaultQuantum)
	mustAdd(t, s, 1, 0, 1, 2)

	// WHEN it runs and finishes in the same tick
	s.Tick()
	snap := s.Snapshot()

	// THEN the slot is empty but the renderer still learns who ran
	assert.Nil(t, snap.CPUProcess)
	assert.Equal(t, &ExecutedEntry{ID: 1, Name: "P1"}, snap.LastExecuted)
	require.Len(t, snap.Finished, 1)
	assert.Equal(t, FinishedEntry{
		ID: 1, Name: "P1", ArrivalTime: 0, BurstTime: 1, Priority: 2,
		StartTime: 0, CompletionTime: 1, WaitingTime: 0, TurnaroundTime: 1, ResponseTime: 0,
	}, snap.Finished[0])
}

func TestSnapshot_IdleTick_LastExecutedNull(t *testing.T) {
	s := newTestSimulator(t, PolicyFCFS, DefaultQuantum)
	mustAdd(t, s, 1, 0, 1, 0)
	mustAdd(t, s, 2, 5, 1, 0)
	s.Tick()
	s.Tick()

	assert.Nil(t, s.Snapshot().LastExecuted)
}

func TestSnapshot_Idempotent(t *testing.T) {
	// GIVEN a simulation mid-run
	s := newTestSimulator(t, PolicySRTF, DefaultQuantum)
	mustAdd(t, s, 1, 0, 8, 0)
	mustAdd(t, s, 2, 1, 2, 0)
	mustAdd(t, s, 3, 6, 4, 0)
	for _i := 0; _i < 4; _i++ {
		s.Tick()
	}

	// WHEN exported twice with no tick in between
	first, err := s.SnapshotJSON()
	require.NoError(t, err)
	second, err := s.SnapshotJSON()
	require.NoError(t, err)

	// THEN the exports are identical and the clock did not move
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, int64(4), s.Clock())
}

func TestSnapshot_FinishedUsesOriginalPriority(t *testing.T) {
	cfg := NewPolicyConfig(PolicyFCFS, DefaultQuantum)
	cfg.AgingEnabled = true
	cfg.AgingThreshold = 1
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	mustAdd(t, s, 1, 0, 3, 0)
	mustAdd(t, s, 2, 0, 1, 5)
	require.NoError(t, s.Run(100))

	var decoded struct {
		Finished []map[string]any `json:"finished"`
	}
	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Finished, 2)
	assert.EqualValues(t, 5, decoded.Finished[1]["original_priority"])
	assert.Equal(t, 2, s.Finished()[1].Priority, "aged three times while P1 ran")
}
