// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cpu-sched/cpu-sched/sim/trace"
)

var (
	ErrDuplicateProcess = errors.New("duplicate process id")
	ErrInvalidBurst     = errors.New("burst time must be positive")
	ErrInvalidArrival   = errors.New("arrival time must be non-negative")
	ErrTickCeiling      = errors.New("tick ceiling reached before all processes finished")
)

// Simulator is the scheduling engine: it owns every process pool, the active policy
// and its parameters, and advances simulated time one unit per Step.
//
// A Simulator is not safe for concurrent use. Hosts that drive it from several
// goroutines must serialize access externally (one Simulator per session).
type Simulator struct {
	clock  int64
	config SimConfig
	sched  Scheduler

	jobPool  []*Process  // not yet arrived, submission order
	ReadyQ   *ReadyQueue // eligible, waiting for the CPU
	cpu      *Process    // nil when the CPU slot is empty
	finished []*Process  // completion order

	quantumUsed  int      // units executed by cpu since its last dispatch
	lastExecuted *Process // process that ran during the tick just completed, nil if idle
	ids          map[int]bool

	Metrics *Metrics
	Trace   *trace.SimulationTrace
}

// NewSimulator creates an empty Simulator at time 0.
func NewSimulator(cfg SimConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		config:  cfg,
		sched:   NewScheduler(cfg.Policy),
		ReadyQ:  &ReadyQueue{},
		ids:     make(map[int]bool),
		Metrics: NewMetrics(),
		Trace:   trace.NewSimulationTrace(cfg.TraceLevel),
	}, nil
}

// Clock returns the current simulated time: the index of the next tick to execute.
func (sim *Simulator) Clock() int64 {
	return sim.clock
}

// Config returns the active configuration.
func (sim *Simulator) Config() SimConfig {
	return sim.config
}

// AddProcess submits a process to the job pool. Submission is valid at any time;
// a process whose arrival time has already passed becomes ready on the next tick.
func (sim *Simulator) AddProcess(id int, name string, arrivalTime, burstTime int64, priority int) error {
	if sim.ids[id] {
		return fmt.Errorf("%w: %d", ErrDuplicateProcess, id)
	}
	if arrivalTime < 0 {
		return fmt.Errorf("process %d: %w, got %d", id, ErrInvalidArrival, arrivalTime)
	}
	if burstTime <= 0 {
		return fmt.Errorf("process %d: %w, got %d", id, ErrInvalidBurst, burstTime)
	}
	p := NewProcess(id, name, arrivalTime, burstTime, priority)
	p.admittedLate = arrivalTime < sim.clock
	sim.ids[id] = true
	sim.jobPool = append(sim.jobPool, p)
	return nil
}

// SetPolicy switches the scheduling policy from the next tick on.
func (sim *Simulator) SetPolicy(policy Policy) {
	sim.config.Policy = policy
	sim.sched = NewScheduler(policy)
}

// SetPolicyName resolves name with ParsePolicy and applies the result.
// Unknown names select FCFS; the returned error reports the fallback.
func (sim *Simulator) SetPolicyName(name string) error {
	policy, err := ParsePolicy(name)
	if err != nil {
		logrus.Warnf("%v", err)
	}
	sim.SetPolicy(policy)
	return err
}

// SetQuantum sets the RR time quantum. Non-positive values are rejected and the
// previous quantum is kept.
func (sim *Simulator) SetQuantum(q int) error {
	if q <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidQuantum, q)
	}
	sim.config.Quantum = q
	return nil
}

// SetAging enables or disables priority aging.
func (sim *Simulator) SetAging(enabled bool) {
	sim.config.AgingEnabled = enabled
}

// SetAgingThreshold sets the number of ready ticks per priority boost.
// Non-positive values are rejected and the previous threshold is kept.
func (sim *Simulator) SetAgingThreshold(threshold int) error {
	if threshold <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidAgingThreshold, threshold)
	}
	sim.config.AgingThreshold = threshold
	return nil
}

// IsFinished reports whether every submitted process has finished: the job pool,
// the ready queue and the CPU slot are all empty.
func (sim *Simulator) IsFinished() bool {
	return len(sim.jobPool) == 0 && sim.ReadyQ.Len() == 0 && sim.cpu == nil
}

// Running returns the process in the CPU slot, or nil.
func (sim *Simulator) Running() *Process {
	return sim.cpu
}

// Finished returns the finished processes in completion order.
// The slice must not be modified.
func (sim *Simulator) Finished() []*Process {
	return sim.finished
}

// Pending returns the processes still in the job pool. The slice must not be modified.
func (sim *Simulator) Pending() []*Process {
	return sim.jobPool
}

// Tick advances the simulation by one time unit and returns the trace line.
func (sim *Simulator) Tick() string {
	return sim.Step().String()
}

// Step advances the simulation by one time unit and returns what happened.
// The phases run in a fixed order that each policy depends on:
//
//  1. RR quantum expiry: the expired process re-enters the ready queue ahead of
//     this tick's arrivals.
//  2. Arrivals move from the job pool to the back of the ready queue.
//  3. SRTF / Priority preemption against the now-complete ready queue.
//  4. Dispatch if the CPU slot is empty.
//  5. Execution of one unit, waiting time for every ready process, completion.
//  6. Aging of the ready queue.
//
// Once IsFinished is true, Step is a no-op returning a record flagged
// AlreadyFinished; the clock does not advance.
func (sim *Simulator) Step() trace.TickRecord {
	now := sim.clock
	rec := trace.TickRecord{Clock: now}
	if sim.IsFinished() {
		rec.AlreadyFinished = true
		logrus.Debugf("[tick %07d] simulation already finished", now)
		return rec
	}

	sim.expireQuantum(&rec)
	sim.admitArrivals(now, &rec)
	sim.preemptByComparison(&rec)
	sim.dispatch(now, &rec)
	sim.execute(now, &rec)
	sim.age(&rec)

	sim.clock++
	sim.Metrics.Observe(rec)
	sim.Trace.Record(rec)
	logrus.Debugf("[tick %07d] %s", now, rec.String())
	return rec
}

// Run steps until every process has finished. maxTicks > 0 is a safety ceiling on
// the clock for malformed workloads; the engine itself has no notion of being stuck.
func (sim *Simulator) Run(maxTicks int64) error {
	for !sim.IsFinished() {
		if maxTicks > 0 && sim.clock >= maxTicks {
			return fmt.Errorf("%w: %d ticks, %d of %d processes finished",
				ErrTickCeiling, maxTicks, len(sim.finished), len(sim.ids))
		}
		sim.Step()
	}
	logrus.Infof("[tick %07d] Simulation ended", sim.clock)
	return nil
}

// expireQuantum preempts the running RR process once it has used its quantum.
// The check runs before this tick's unit is executed, so a process with quantum q
// runs exactly q consecutive units per dispatch.
func (sim *Simulator) expireQuantum(rec *trace.TickRecord) {
	if sim.config.Policy != PolicyRR || sim.cpu == nil || sim.cpu.RemainingTime <= 0 {
		return
	}
	if sim.quantumUsed < sim.config.Quantum {
		return
	}
	rec.Add(trace.TickEvent{Kind: trace.EventQuantumExpired, ProcessID: sim.cpu.ID, Name: sim.cpu.Name})
	sim.preemptCPU()
}

// admitArrivals moves every arrived process to the ready queue, preserving
// submission order among simultaneous arrivals.
func (sim *Simulator) admitArrivals(now int64, rec *trace.TickRecord) {
	pending := sim.jobPool[:0]
	for _, p := range sim.jobPool {
		if p.ArrivalTime > now {
			pending = append(pending, p)
			continue
		}
		sim.ReadyQ.Enqueue(p)
		rec.Add(trace.TickEvent{Kind: trace.EventArrival, ProcessID: p.ID, Name: p.Name})
	}
	for i := len(pending); i < len(sim.jobPool); i++ {
		sim.jobPool[i] = nil
	}
	sim.jobPool = pending
}

// preemptByComparison asks the policy's Scheduler whether a ready process should
// displace the running one.
func (sim *Simulator) preemptByComparison(rec *trace.TickRecord) {
	if sim.cpu == nil {
		return
	}
	by := sim.sched.Preemptor(sim.cpu, sim.ReadyQ.Items())
	if by == nil {
		return
	}
	ev := trace.TickEvent{
		Kind:      trace.EventPreempted,
		ProcessID: sim.cpu.ID,
		Name:      sim.cpu.Name,
		By:        by.ID,
		Cause:     sim.config.Policy.String(),
	}
	switch sim.config.Policy {
	case PolicySRTF:
		ev.Value, ev.ByValue = sim.cpu.RemainingTime, by.RemainingTime
	case PolicyPriority:
		ev.Value, ev.ByValue = int64(sim.cpu.Priority), int64(by.Priority)
	case PolicyFCFS, PolicySJF, PolicyRR, PolicyPriorityNP:
		// never returned by these schedulers
	}
	rec.Add(ev)
	sim.preemptCPU()
}

// preemptCPU moves the running process to the back of the ready queue.
func (sim *Simulator) preemptCPU() {
	if sim.cpu == nil {
		return
	}
	p := sim.cpu
	sim.cpu = nil
	sim.quantumUsed = 0
	sim.ReadyQ.Enqueue(p)
}

// dispatch fills an empty CPU slot with the policy's next process.
func (sim *Simulator) dispatch(now int64, rec *trace.TickRecord) {
	if sim.cpu != nil || sim.ReadyQ.Len() == 0 {
		return
	}
	sim.ReadyQ.Reorder(sim.sched.OrderQueue)
	p := sim.ReadyQ.Dequeue()
	p.State = StateRunning
	sim.cpu = p
	sim.quantumUsed = 0
	if !p.Started() {
		p.StartTime = now
		p.ResponseTime = now - p.ArrivalTime
	}
	rec.Add(trace.TickEvent{Kind: trace.EventDispatch, ProcessID: p.ID, Name: p.Name})
}

// execute runs the CPU process for one unit and accrues waiting time.
func (sim *Simulator) execute(now int64, rec *trace.TickRecord) {
	p := sim.cpu
	if p == nil {
		sim.lastExecuted = nil
		rec.Add(trace.TickEvent{Kind: trace.EventIdle, ProcessID: trace.NoProcess})
		return
	}
	sim.lastExecuted = p
	rec.Add(trace.TickEvent{Kind: trace.EventRun, ProcessID: p.ID, Name: p.Name, Remaining: p.RemainingTime})

	p.RemainingTime--
	sim.quantumUsed++
	for _, q := range sim.ReadyQ.Items() {
		q.WaitingTime++
	}

	if p.RemainingTime > 0 {
		return
	}
	accumulated := p.WaitingTime
	p.CompletionTime = now + 1
	p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.BurstTime
	if accumulated != p.WaitingTime && !p.admittedLate {
		logrus.Warnf("process %d: accumulated waiting time %d disagrees with derived %d",
			p.ID, accumulated, p.WaitingTime)
	}
	p.State = StateFinished
	sim.finished = append(sim.finished, p)
	sim.cpu = nil
	sim.quantumUsed = 0
	rec.Add(trace.TickEvent{Kind: trace.EventCompletion, ProcessID: p.ID, Name: p.Name})
}

func (sim *Simulator) age(rec *trace.TickRecord) {
	if !sim.config.AgingEnabled || sim.ReadyQ.Len() == 0 {
		return
	}
	for _, p := range applyAging(sim.ReadyQ.Items(), sim.config.AgingThreshold) {
		rec.Add(trace.TickEvent{Kind: trace.EventAgingBoost, ProcessID: p.ID, Name: p.Name, Value: int64(p.Priority)})
	}
}
