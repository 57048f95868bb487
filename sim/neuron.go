package sim

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// dynamics holds the per-network constants every neuron integrates with.
// It is computed once and shared read-only.
type dynamics struct {
	threshold  float64
	reset      float64
	resistance float64
	decay      float64 // exp(-h/tau)
	refractory float64
	je         float64
	delay      int
	noiseRate  float64
}

func newDynamics(p Params) *dynamics {
	return &dynamics{
		threshold:  p.Threshold,
		reset:      p.Reset,
		resistance: p.Resistance,
		decay:      p.DecayFactor(),
		refractory: p.RefractoryPeriod,
		je:         p.Je,
		delay:      p.Delay,
		noiseRate:  p.NoiseRate(),
	}
}

// Neuron is a leaky integrate-and-fire unit with its own clock and delay buffer.
//
// State machine: Integrating -> Refractory on threshold crossing (potential is
// reset and the spike recorded in the same step); Refractory -> Integrating once
// clock >= last spike + refractory period. Both transitions consume a step
// without integrating.
type Neuron struct {
	typ        NeuronType
	v          float64
	refractory bool
	clock      int64
	spikes     []int64
	buffer     *DelayBuffer

	dyn   *dynamics
	noise *distuv.Poisson // nil when the background rate is zero
}

// NewNeuron creates a neuron at the reset potential. src feeds its Poisson
// background noise; it may be nil when noise is never injected.
// p is validated first; failures wrap ErrInvalidParams.
func NewNeuron(t NeuronType, p Params, src rand.Source) (*Neuron, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return newNeuron(t, newDynamics(p), src)
}

func newNeuron(t NeuronType, dyn *dynamics, src rand.Source) (*Neuron, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNeuronType, int(t))
	}
	n := &Neuron{
		typ:    t,
		v:      dyn.reset,
		buffer: NewDelayBuffer(dyn.delay),
		dyn:    dyn,
	}
	if dyn.noiseRate > 0 && src != nil {
		n.noise = &distuv.Poisson{Lambda: dyn.noiseRate, Src: src}
	}
	return n, nil
}

// Update advances the neuron by one step and reports whether it fired.
// iExt is a constant external current; injectNoise adds Poisson background
// input of rate V_ext*Ce, each event worth Je.
func (n *Neuron) Update(iExt float64, injectNoise bool) bool {
	spiked := false

	switch {
	case n.refractory:
		if float64(n.clock) >= float64(n.spikes[len(n.spikes)-1])+n.dyn.refractory {
			n.refractory = false
		}
	case n.v < n.dyn.threshold:
		j := n.buffer.At(n.clock)
		if injectNoise && n.noise != nil {
			j = n.noise.Rand()*n.dyn.je + j
		}
		n.integrate(iExt, j)
	default:
		n.spikes = append(n.spikes, n.clock)
		n.v = n.dyn.reset
		n.refractory = true
		spiked = true
	}

	// the slot for this step is consumed whatever the branch
	n.buffer.Clear(n.clock)
	n.clock++

	return spiked
}

// integrate applies the exact one-step solution of dV/dt = (-V + I*R)/tau and
// adds the synaptic jump j.
func (n *Neuron) integrate(iExt, j float64) {
	c := n.dyn.decay
	n.v = n.v*c + iExt*n.dyn.resistance*(1-c) + j
}

// SetBufferAt schedules amplitude for absolute step t. Writes to the same step
// accumulate. t must be non-negative; see DelayBuffer.
func (n *Neuron) SetBufferAt(t int64, amplitude float64) {
	n.buffer.Add(t, amplitude)
}

// BufferAt returns the input currently scheduled for absolute step t.
func (n *Neuron) BufferAt(t int64) float64 {
	return n.buffer.At(t)
}

func (n *Neuron) MembranePotential() float64 { return n.v }

// SetMembranePotential overrides the potential. Intended for test scaffolding.
func (n *Neuron) SetMembranePotential(v float64) { n.v = v }

// SpikeTimes returns a copy of the steps at which the neuron fired.
func (n *Neuron) SpikeTimes() []int64 { return slices.Clone(n.spikes) }

func (n *Neuron) SpikeCount() int { return len(n.spikes) }

func (n *Neuron) Type() NeuronType { return n.typ }

func (n *Neuron) IsExcitatory() bool { return n.typ == Excitatory }

// Clock returns the number of updates applied so far.
func (n *Neuron) Clock() int64 { return n.clock }

func (n *Neuron) State() NeuronState {
	if n.refractory {
		return Refractory
	}
	return Integrating
}
