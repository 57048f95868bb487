// Package sim provides the core fixed-step simulation engine for lifnet, a
// Brunel-style network of leaky integrate-and-fire neurons.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - neuron.go: membrane integration, the Integrating/Refractory state machine
//     and the per-neuron delay buffer
//   - connectivity.go: fixed-in-degree random graph generation
//   - network.go: the step loop that updates neurons and fans spikes out to
//     postsynaptic buffers D steps ahead
//
// # Time
//
// Everything is expressed in steps of h = 1 (0.1 ms of physical time, see
// StepDurationMs). A spike emitted at step t is integrated by its targets at
// step t+D.
//
// # Determinism
//
// All randomness flows from a SimulationKey through PartitionedRNG: one stream
// for connectivity and one per neuron for background noise. The same key and
// Params give identical spike trains whatever Params.Workers is set to.
//
// Sub-packages:
//   - sim/trace: per-step population activity recording
//   - sim/report: tab-separated spike export and console display
//   - sim/store: SQLite spike store
package sim
