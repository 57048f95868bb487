package sim

import (
	"errors"
	"fmt"
	"math"
)

// StepDurationMs is the physical duration of one simulation step.
// All model constants are expressed in step units; reports convert with this factor.
const StepDurationMs = 0.1

// ErrInvalidParams is returned (wrapped) by Params.Validate.
var ErrInvalidParams = errors.New("invalid network parameters")

// Params groups the model constants of a Brunel network.
// Time constants are in steps, potentials in mV.
type Params struct {
	Neurons            int     `yaml:"neurons"`             // total population size N
	ExcitatoryFraction float64 `yaml:"excitatory_fraction"` // share of N that is excitatory
	ConnectionFraction float64 `yaml:"connection_fraction"` // in-degree as a share of each population
	Ce                 int     `yaml:"ce"`                  // excitatory in-degree override (0 = derived)
	Ci                 int     `yaml:"ci"`                  // inhibitory in-degree override (0 = derived)

	Delay            int     `yaml:"delay"`             // transmission delay D
	Tau              float64 `yaml:"tau"`               // membrane time constant
	RefractoryPeriod float64 `yaml:"refractory_period"` // tau_rp
	Step             float64 `yaml:"step"`              // integration step h

	Threshold  float64 `yaml:"threshold"`
	Reset      float64 `yaml:"reset"`
	Resistance float64 `yaml:"resistance"`
	Je         float64 `yaml:"je"` // excitatory quantum
	Ji         float64 `yaml:"ji"` // inhibitory quantum, negative by convention

	ExternalRate    float64 `yaml:"external_rate"`    // V_ext, background events per external synapse per step
	ExternalCurrent float64 `yaml:"external_current"` // constant current fed to every neuron by Network.Update

	Workers int `yaml:"workers"` // goroutines used for the neuron phase of a step
}

// DefaultParams returns the standard Brunel configuration: 12500 neurons, 20 ms
// membrane time constant, 2 ms refractory period, 1.5 ms delay, g = 5.
func DefaultParams() Params {
	return Params{
		Neurons:            12500,
		ExcitatoryFraction: 0.8,
		ConnectionFraction: 0.1,
		Delay:              15,
		Tau:                200,
		RefractoryPeriod:   20,
		Step:               1,
		Threshold:          20,
		Reset:              0,
		Resistance:         20,
		Je:                 0.1,
		Ji:                 -0.5,
		ExternalRate:       0.2,
		Workers:            1,
	}
}

// NumExcitatory returns Ne.
func (p Params) NumExcitatory() int {
	return int(p.ExcitatoryFraction * float64(p.Neurons))
}

// NumInhibitory returns Ni = N - Ne.
func (p Params) NumInhibitory() int {
	return p.Neurons - p.NumExcitatory()
}

// ExcitatoryInDegree returns Ce, the override when set.
func (p Params) ExcitatoryInDegree() int {
	if p.Ce > 0 {
		return p.Ce
	}
	return int(p.ConnectionFraction * float64(p.NumExcitatory()))
}

// InhibitoryInDegree returns Ci, the override when set.
func (p Params) InhibitoryInDegree() int {
	if p.Ci > 0 {
		return p.Ci
	}
	return int(p.ConnectionFraction * float64(p.NumInhibitory()))
}

// InDegree returns Ctot = Ce + Ci.
func (p Params) InDegree() int {
	return p.ExcitatoryInDegree() + p.InhibitoryInDegree()
}

// NoiseRate returns the Poisson rate of background events per step, V_ext * Ce.
func (p Params) NoiseRate() float64 {
	return p.ExternalRate * float64(p.ExcitatoryInDegree())
}

// DecayFactor returns exp(-h/tau).
func (p Params) DecayFactor() float64 {
	return math.Exp(-p.Step / p.Tau)
}

// BufferSize returns the delay ring capacity D+1.
func (p Params) BufferSize() int {
	return p.Delay + 1
}

// TheoreticalISI returns the number of steps between two consecutive spikes of a
// noise-free neuron driven by constant current iExt, together with the step of
// its first spike. ok is false when the steady-state potential iExt*R never
// reaches threshold.
func (p Params) TheoreticalISI(iExt float64) (isi int64, first int64, ok bool) {
	vInf := iExt * p.Resistance
	if vInf <= p.Threshold {
		return 0, 0, false
	}
	k := math.Ceil(p.Tau / p.Step * math.Log((vInf-p.Reset)/(vInf-p.Threshold)))
	first = int64(k)
	// The spike step, then refractory steps up to and including the one that
	// releases the neuron without integrating, then k integration steps.
	release := max(int64(math.Ceil(p.RefractoryPeriod)), 1)
	isi = first + 1 + release
	return isi, first, true
}

// Validate checks that the parameters describe a constructible network.
func (p Params) Validate() error {
	if p.Neurons <= 0 {
		return fmt.Errorf("%w: neurons must be positive, got %d", ErrInvalidParams, p.Neurons)
	}
	if p.ExcitatoryFraction < 0 || p.ExcitatoryFraction > 1 {
		return fmt.Errorf("%w: excitatory_fraction must be in [0, 1], got %f", ErrInvalidParams, p.ExcitatoryFraction)
	}
	if p.ConnectionFraction < 0 || p.ConnectionFraction > 1 {
		return fmt.Errorf("%w: connection_fraction must be in [0, 1], got %f", ErrInvalidParams, p.ConnectionFraction)
	}
	if p.Ce < 0 || p.Ci < 0 {
		return fmt.Errorf("%w: ce and ci must be non-negative, got %d and %d", ErrInvalidParams, p.Ce, p.Ci)
	}
	if p.Delay < 1 {
		return fmt.Errorf("%w: delay must be at least 1 step, got %d", ErrInvalidParams, p.Delay)
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"tau", p.Tau}, {"step", p.Step}, {"refractory_period", p.RefractoryPeriod},
		{"threshold", p.Threshold}, {"reset", p.Reset}, {"resistance", p.Resistance},
		{"je", p.Je}, {"ji", p.Ji}, {"external_rate", p.ExternalRate},
		{"external_current", p.ExternalCurrent},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidParams, f.name, f.val)
		}
	}
	if p.Tau <= 0 {
		return fmt.Errorf("%w: tau must be positive, got %f", ErrInvalidParams, p.Tau)
	}
	if p.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %f", ErrInvalidParams, p.Step)
	}
	if p.RefractoryPeriod < 0 {
		return fmt.Errorf("%w: refractory_period must be non-negative, got %f", ErrInvalidParams, p.RefractoryPeriod)
	}
	if p.Threshold <= p.Reset {
		return fmt.Errorf("%w: threshold (%f) must exceed reset (%f)", ErrInvalidParams, p.Threshold, p.Reset)
	}
	if p.ExternalRate < 0 {
		return fmt.Errorf("%w: external_rate must be non-negative, got %f", ErrInvalidParams, p.ExternalRate)
	}
	if p.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidParams, p.Workers)
	}

	// Self-exclusion needs at least one other candidate in each sampled range.
	ne, ni := p.NumExcitatory(), p.NumInhibitory()
	if ce := p.ExcitatoryInDegree(); ce > 0 && ne < 2 {
		return fmt.Errorf("%w: ce=%d needs at least 2 excitatory neurons, have %d", ErrInvalidParams, ce, ne)
	}
	if ci := p.InhibitoryInDegree(); ci > 0 && ni < 2 {
		return fmt.Errorf("%w: ci=%d needs at least 2 inhibitory neurons, have %d", ErrInvalidParams, ci, ni)
	}
	return nil
}
