// Package trace provides per-step population activity recording.
// It stores plain data types and does not import sim/.
package trace

// PopulationRecord captures the spikes emitted by the whole network in one step.
type PopulationRecord struct {
	Step       int64
	Spikes     int // total spikes this step
	Excitatory int // spikes from excitatory neurons
	Inhibitory int // spikes from inhibitory neurons
}
