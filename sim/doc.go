// Package sim provides the core discrete-event simulation engine for the
// production-line digital twin.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - env.go: Clock, event queue and the cooperative Process scheduler
//   - buffer.go: Blocking FIFO stores connecting stations
//   - item.go: The Item/Product flowing through the line
//
// # Architecture
//
// The sim package defines the kernel and shared types; the domain lives in
// sub-packages:
//   - sim/behavior/: the six-phase equipment cycle (Collect, Breakdown,
//     Microstop, Execute, Transform, Inspect) and the Equipment process
//   - sim/topology/: the DAG of stations and buffer edges, with validation,
//     cycle detection and conditional-routing predicates
//   - sim/layout/: turns a resolved topology plus machine configs into wired
//     buffers and running Equipment processes
//   - sim/aggregate/: converts the state-change firehose into bucketed
//     summaries and a context-windowed detail log
//
// # Key Interfaces
//
// The extension points are single-method or small interfaces:
//   - StateObserver: consumes every equipment state transition
//   - TelemetryGenerator: produces per-material telemetry maps at Transform
//
// # Determinism
//
// All processes interleave on one logical thread; events scheduled for the
// same instant resume in submission order via a sequence counter, and all
// randomness comes from one seeded PartitionedRNG. Identical seed, topology
// and configs reproduce identical traces.
package sim
