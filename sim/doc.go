// Package sim provides the discrete-time CPU scheduling engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (new → ready → running → finished) and its timing fields
//   - scheduler.go: dispatch order and preemption for each Policy
//   - simulator.go: the tick loop and its fixed phase order
//
// # Architecture
//
// The sim package owns the engine; supporting code lives in sub-packages:
//   - sim/trace/: per-tick event records, trace summaries and Gantt segments
//   - sim/workload/: YAML and CSV workload files, seeded workload generation
//
// # Key Interfaces
//
// Scheduler is the single extension point: OrderQueue sorts the ready queue so
// the next process to dispatch is first, Preemptor decides comparison-based
// preemption. Round Robin quantum expiry is time-based and lives in the Simulator.
//
// A Simulator is not safe for concurrent use; internal/server wraps each one in a
// per-session lock.
package sim
