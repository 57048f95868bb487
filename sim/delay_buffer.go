package sim

import "fmt"

// DelayBuffer is a fixed-capacity ring of scheduled synaptic input.
// Slot t mod len accumulates everything due at absolute step t; with a
// capacity of D+1 an input written at step t+D never aliases the slot read at t.
// Steps are absolute and start at 0: a negative step panics, like a negative
// slice index.
type DelayBuffer struct {
	slots []float64
}

// NewDelayBuffer creates a ring able to hold inputs up to delay steps ahead.
func NewDelayBuffer(delay int) *DelayBuffer {
	return &DelayBuffer{slots: make([]float64, delay+1)}
}

// Len returns the ring capacity.
func (b *DelayBuffer) Len() int { return len(b.slots) }

func (b *DelayBuffer) pos(t int64) int {
	if t < 0 {
		panic(fmt.Sprintf("delay buffer: negative step %d", t))
	}
	return int(t % int64(len(b.slots)))
}

// Add accumulates amplitude into the slot for absolute step t.
func (b *DelayBuffer) Add(t int64, amplitude float64) {
	b.slots[b.pos(t)] += amplitude
}

// At returns the input currently scheduled for step t.
func (b *DelayBuffer) At(t int64) float64 {
	return b.slots[b.pos(t)]
}

// Clear zeroes the slot for step t.
func (b *DelayBuffer) Clear(t int64) {
	b.slots[b.pos(t)] = 0
}
