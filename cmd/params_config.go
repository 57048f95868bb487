package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lifnet-sim/lifnet/sim"
)

// LoadParams reads a YAML parameter file on top of sim.DefaultParams.
// Keys absent from the file keep their default. Uses strict parsing:
// unrecognized keys (typos) are rejected.
func LoadParams(path string) (sim.Params, error) {
	p := sim.DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading params file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file keeps every default.
	if err := decoder.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("parsing params file %s: %w", path, err)
	}
	return p, nil
}

// paramFlags lists the command-line overrides of Params. A flag only replaces
// the configured value when it was set explicitly (Flags().Changed), so a
// config file is never silently overwritten by flag defaults.
type paramFlags struct {
	neurons         int
	workers         int
	delay           int
	externalRate    float64
	externalCurrent float64
	je, ji          float64
}

func (f *paramFlags) register(cmd *cobra.Command) {
	d := sim.DefaultParams()
	cmd.Flags().IntVar(&f.neurons, "neurons", d.Neurons, "Total number of neurons N")
	cmd.Flags().IntVar(&f.workers, "workers", d.Workers, "Goroutines used for the neuron phase of each step")
	cmd.Flags().IntVar(&f.delay, "delay", d.Delay, "Transmission delay D (steps)")
	cmd.Flags().Float64Var(&f.externalRate, "external-rate", d.ExternalRate, "Background rate V_ext per external synapse per step")
	cmd.Flags().Float64Var(&f.externalCurrent, "external-current", d.ExternalCurrent, "Constant current applied to every neuron")
	cmd.Flags().Float64Var(&f.je, "je", d.Je, "Excitatory synaptic quantum (mV)")
	cmd.Flags().Float64Var(&f.ji, "ji", d.Ji, "Inhibitory synaptic quantum (mV)")
}

func (f *paramFlags) apply(cmd *cobra.Command, p *sim.Params) {
	if cmd.Flags().Changed("neurons") {
		p.Neurons = f.neurons
	}
	if cmd.Flags().Changed("workers") {
		p.Workers = f.workers
	}
	if cmd.Flags().Changed("delay") {
		p.Delay = f.delay
	}
	if cmd.Flags().Changed("external-rate") {
		p.ExternalRate = f.externalRate
	}
	if cmd.Flags().Changed("external-current") {
		p.ExternalCurrent = f.externalCurrent
	}
	if cmd.Flags().Changed("je") {
		p.Je = f.je
	}
	if cmd.Flags().Changed("ji") {
		p.Ji = f.ji
	}
}

// resolveParams loads configPath (when set), applies explicit flags and validates.
func resolveParams(cmd *cobra.Command, configPath string, flags *paramFlags) (sim.Params, error) {
	p := sim.DefaultParams()
	if configPath != "" {
		var err error
		if p, err = LoadParams(configPath); err != nil {
			return p, err
		}
	}
	flags.apply(cmd, &p)
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
