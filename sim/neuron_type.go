package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidNeuronType is returned when a neuron is created with a type outside
// the NeuronType enumeration.
var ErrInvalidNeuronType = errors.New("invalid neuron type")

// NeuronType tags a neuron as excitatory or inhibitory. It is fixed at creation.
type NeuronType int

const (
	Excitatory NeuronType = iota
	Inhibitory
)

// Valid reports whether t is one of the enumerated types.
func (t NeuronType) Valid() bool {
	return t == Excitatory || t == Inhibitory
}

// Weight returns the synaptic quantum a spike of this type delivers.
func (t NeuronType) Weight(p Params) float64 {
	if t == Inhibitory {
		return p.Ji
	}
	return p.Je
}

func (t NeuronType) String() string {
	switch t {
	case Excitatory:
		return "E"
	case Inhibitory:
		return "I"
	default:
		return fmt.Sprintf("NeuronType(%d)", int(t))
	}
}

// NeuronState is the integrate/refractory state of a neuron.
type NeuronState int

const (
	Integrating NeuronState = iota
	Refractory
)

func (s NeuronState) String() string {
	if s == Refractory {
		return "refractory"
	}
	return "integrating"
}
