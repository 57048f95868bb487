// sim/network.go
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lifnet-sim/lifnet/sim/trace"
)

// ErrIndexOutOfRange is returned when a neuron index falls outside [0, N).
var ErrIndexOutOfRange = errors.New("neuron index out of range")

// Network owns the neuron population, its connectivity and the global clock.
// Indices [0, Ne) are excitatory and [Ne, N) inhibitory.
type Network struct {
	params  Params
	rng     *PartitionedRNG
	neurons []*Neuron
	conn    ConnectionMap
	// global step shared by every neuron's delay scheduling
	clock int64

	trace  *trace.SimulationTrace
	spiked []bool // scratch for the parallel neuron phase
}

// NewNetwork builds N neurons and draws their fixed-in-degree connectivity.
// All randomness derives from key.
func NewNetwork(p Params, key SimulationKey) (*Network, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	net := &Network{
		params:  p,
		rng:     NewPartitionedRNG(key),
		neurons: make([]*Neuron, p.Neurons),
	}

	dyn := newDynamics(p)
	ne := p.NumExcitatory()
	for i := range net.neurons {
		t := Excitatory
		if i >= ne {
			t = Inhibitory
		}
		n, err := newNeuron(t, dyn, net.rng.Source(SubsystemNeuron(i)))
		if err != nil {
			return nil, fmt.Errorf("creating neuron %d: %w", i, err)
		}
		net.neurons[i] = n
	}

	net.conn = GenerateConnections(p, net.rng.ForSubsystem(SubsystemConnectivity))
	if p.Workers > 1 {
		net.spiked = make([]bool, p.Neurons)
	}

	logrus.Infof("Network built: N=%d (Ne=%d, Ni=%d), Ce=%d, Ci=%d, %d edges, seed=%d",
		p.Neurons, ne, p.NumInhibitory(), p.ExcitatoryInDegree(), p.InhibitoryInDegree(),
		net.conn.EdgeCount(), int64(key))
	return net, nil
}

// SetTrace attaches a trace that receives one record per step. nil detaches.
func (net *Network) SetTrace(st *trace.SimulationTrace) {
	net.trace = st
}

// Trace returns the attached trace, or nil.
func (net *Network) Trace() *trace.SimulationTrace {
	return net.trace
}

// SetManualConnection appends the edge pre -> post. Out-of-range indices are
// reported as ErrIndexOutOfRange and leave the map untouched.
func (net *Network) SetManualConnection(pre, post int) error {
	n := len(net.neurons)
	if pre < 0 || pre >= n || post < 0 || post >= n {
		return fmt.Errorf("%w: manual connection %d -> %d with N=%d", ErrIndexOutOfRange, pre, post, n)
	}
	net.conn[pre] = append(net.conn[pre], post)
	return nil
}

// Update advances every neuron by one step in index order and fans each spike
// out to the postsynaptic delay buffers at clock + D. It does not advance the
// network clock; Run does.
func (net *Network) Update() {
	var fired, exc int
	if net.params.Workers > 1 {
		fired, exc = net.updateParallel()
	} else {
		for i, n := range net.neurons {
			if n.Update(net.params.ExternalCurrent, true) {
				net.fanOut(i)
				fired++
				if n.IsExcitatory() {
					exc++
				}
			}
		}
	}

	if fired > 0 {
		logrus.Debugf("[step %07d] %d spikes (%d excitatory)", net.clock, fired, exc)
	}
	if net.trace != nil && net.trace.Config.Enabled() {
		net.trace.RecordStep(trace.PopulationRecord{
			Step:       net.clock,
			Spikes:     fired,
			Excitatory: exc,
			Inhibitory: fired - exc,
		})
	}
}

// updateParallel runs the neuron phase on Workers goroutines over contiguous
// index ranges, then fans out in index order once all of them are done.
// Neurons only touch their own state during the first phase, and fan-out
// writes land in slot clock+D which no neuron reads this step.
func (net *Network) updateParallel() (fired, exc int) {
	n := len(net.neurons)
	chunk := (n + net.params.Workers - 1) / net.params.Workers

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Go(func() {
			for i := lo; i < hi; i++ {
				net.spiked[i] = net.neurons[i].Update(net.params.ExternalCurrent, true)
			}
		})
	}
	wg.Wait()

	for i, s := range net.spiked {
		if !s {
			continue
		}
		net.fanOut(i)
		fired++
		if net.neurons[i].IsExcitatory() {
			exc++
		}
	}
	return fired, exc
}

func (net *Network) fanOut(pre int) {
	w := net.neurons[pre].Type().Weight(net.params)
	at := net.clock + int64(net.params.Delay)
	for _, post := range net.conn[pre] {
		net.neurons[post].SetBufferAt(at, w)
	}
}

// Run updates the network until its clock reaches steps.
func (net *Network) Run(steps int64) {
	logrus.Infof("[step %07d] Running until step %d", net.clock, steps)
	for net.clock < steps {
		net.Update()
		net.clock++
	}
	logrus.Infof("[step %07d] Simulation ended, %d spikes", net.clock, net.SpikeCount())
}

// Clock returns the global step counter.
func (net *Network) Clock() int64 { return net.clock }

// Params returns the parameters the network was built with.
func (net *Network) Params() Params { return net.params }

// Key returns the SimulationKey the network was built with.
func (net *Network) Key() SimulationKey { return net.rng.Key() }

// Size returns N.
func (net *Network) Size() int { return len(net.neurons) }

// Neuron returns neuron i. It panics when i is out of range, like a slice index.
func (net *Network) Neuron(i int) *Neuron { return net.neurons[i] }

// Neurons returns the population in index order. The slice is a copy; the
// neurons are shared.
func (net *Network) Neurons() []*Neuron {
	out := make([]*Neuron, len(net.neurons))
	copy(out, net.neurons)
	return out
}

// ConnectionMap returns a deep copy of the connectivity.
func (net *Network) ConnectionMap() ConnectionMap { return net.conn.Clone() }

// InDegrees tallies incoming edges per neuron.
func (net *Network) InDegrees() []InDegree {
	return net.conn.InDegrees(net.params.NumExcitatory())
}

// SpikeCount returns the number of spikes recorded across all neurons.
func (net *Network) SpikeCount() int {
	total := 0
	for _, n := range net.neurons {
		total += n.SpikeCount()
	}
	return total
}
