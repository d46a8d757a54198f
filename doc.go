// Package reactor is the execution core of a reactor runtime: it runs many
// lightweight message-driven reactors on a small pool of worker goroutines,
// dispatching events through typed Connectors with adaptive batching and
// cooperative preemption.
//
// The central type is [Frame], the per-reactor scheduling and execution
// record. A Frame owns a three-state lifecycle (Fresh, Running, Terminated),
// the set of pending Connectors with buffered events, the isolation
// guarantee that at most one goroutine ever runs a given reactor's code at
// once, the dynamic Connector-creation protocol against the process-wide
// [Registry], and a self-tuning spindown controller that amortizes
// preemption cost by spinning briefly for follow-up events after a batch
// empties.
//
// Concurrency model (high level):
//   - Each Frame is executed in bounded batches by a [Scheduler]; only one
//     goroutine executes a given Frame's batch at a time.
//   - External code calls Channel.EnqueueEvent to deposit an event into a
//     Connector's queue; if the Connector was empty, the Frame is scheduled.
//   - A reactor's own code opens and seals Connectors via [OpenConnector]
//     and [SealConnector], called only from within its own batch.
//
// This package does not provide fair cross-reactor scheduling, does not
// bound event-queue memory, and does not persist events across process
// restarts. Remote channel resolution, serialization, and configuration
// parsing live outside this package; a [Frame] receives an already-resolved
// [Config].
package reactor
