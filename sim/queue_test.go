package sim

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadyQueue_EnqueueDequeue_FIFO(t *testing.T) {
	// GIVEN a queue with processes [1, 2, 3]
	rq := &ReadyQueue{}
	for id := 1; id <= 3; id++ {
		rq.Enqueue(NewProcess(id, "", 0, 1, 0))
	}

	// WHEN dequeued
	// THEN processes come out in insertion order, marked ready
	assert.Equal(t, "[P1 P2 P3]", rq.String())
	assert.Equal(t, StateReady, rq.Peek().State)
	assert.Equal(t, 1, rq.Dequeue().ID)
	assert.Equal(t, 2, rq.Dequeue().ID)
	assert.Equal(t, 1, rq.Len())
	assert.Equal(t, 3, rq.Dequeue().ID)
	assert.Nil(t, rq.Dequeue())
	assert.Nil(t, rq.Peek())
	assert.Equal(t, "[]", rq.String())
}

func TestReadyQueue_Reorder_SortsInPlace(t *testing.T) {
	rq := &ReadyQueue{}
	rq.Enqueue(NewProcess(1, "", 0, 9, 0))
	rq.Enqueue(NewProcess(2, "", 0, 3, 0))
	rq.Enqueue(NewProcess(3, "", 0, 5, 0))

	rq.Reorder(func(procs []*Process) {
		sort.Slice(procs, func(i, j int) bool { return procs[i].BurstTime < procs[j].BurstTime })
	})

	assert.Equal(t, "[P2 P3 P1]", rq.String())
}

func TestReadyQueue_Reorder_NilFnPanics(t *testing.T) {
	rq := &ReadyQueue{}
	assert.Panics(t, func() { rq.Reorder(nil) })
}

func TestReadyQueue_Enqueue_NilPanics(t *testing.T) {
	rq := &ReadyQueue{}
	assert.Panics(t, func() { rq.Enqueue(nil) })
}
