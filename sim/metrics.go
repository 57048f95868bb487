// Computes population-level spiking statistics once a run has finished.

package sim

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about a finished run for final reporting.
type Metrics struct {
	Steps         int64   // simulated steps
	DurationMs    float64 // Steps * StepDurationMs
	TotalSpikes   int
	ActiveNeurons int // neurons with at least one spike

	MeanRateHz       float64 // population mean firing rate
	ExcitatoryRateHz float64
	InhibitoryRateHz float64

	MeanISIMs float64 // mean inter-spike interval over all pooled intervals
	// MeanCV is the mean coefficient of variation of the ISIs of neurons with
	// at least three spikes; near 1 for irregular (Poisson-like) firing.
	MeanCV    float64
	CVSamples int
}

// ComputeMetrics summarises the spike trains recorded by net.
func ComputeMetrics(net *Network) *Metrics {
	m := &Metrics{
		Steps:      net.Clock(),
		DurationMs: float64(net.Clock()) * StepDurationMs,
	}

	var excSpikes, inhSpikes int
	var isis, cvs []float64
	for _, n := range net.neurons {
		count := n.SpikeCount()
		if count == 0 {
			continue
		}
		m.ActiveNeurons++
		if n.IsExcitatory() {
			excSpikes += count
		} else {
			inhSpikes += count
		}

		own := make([]float64, 0, count-1)
		for k := 1; k < count; k++ {
			own = append(own, float64(n.spikes[k]-n.spikes[k-1])*StepDurationMs)
		}
		isis = append(isis, own...)
		if len(own) >= 2 {
			mean, std := stat.MeanStdDev(own, nil)
			if mean > 0 {
				cvs = append(cvs, std/mean)
			}
		}
	}
	m.TotalSpikes = excSpikes + inhSpikes

	p := net.Params()
	m.MeanRateHz = rateHz(m.TotalSpikes, p.Neurons, m.DurationMs)
	m.ExcitatoryRateHz = rateHz(excSpikes, p.NumExcitatory(), m.DurationMs)
	m.InhibitoryRateHz = rateHz(inhSpikes, p.NumInhibitory(), m.DurationMs)

	if len(isis) > 0 {
		m.MeanISIMs = stat.Mean(isis, nil)
	}
	if len(cvs) > 0 {
		m.MeanCV = stat.Mean(cvs, nil)
		m.CVSamples = len(cvs)
	}
	return m
}

func rateHz(spikes, neurons int, durationMs float64) float64 {
	if neurons == 0 || durationMs <= 0 {
		return 0
	}
	return float64(spikes) / float64(neurons) / (durationMs / 1000)
}

// Print writes the aggregated metrics.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Simulated Time       : %.1f ms (%d steps)\n", m.DurationMs, m.Steps)
	fmt.Fprintf(w, "Total Spikes         : %d\n", m.TotalSpikes)
	fmt.Fprintf(w, "Active Neurons       : %d\n", m.ActiveNeurons)
	if m.TotalSpikes > 0 {
		fmt.Fprintf(w, "Mean Rate            : %.2f Hz\n", m.MeanRateHz)
		fmt.Fprintf(w, "Excitatory Rate      : %.2f Hz\n", m.ExcitatoryRateHz)
		fmt.Fprintf(w, "Inhibitory Rate      : %.2f Hz\n", m.InhibitoryRateHz)
		fmt.Fprintf(w, "Mean ISI             : %.2f ms\n", m.MeanISIMs)
		fmt.Fprintf(w, "Mean ISI CV          : %.3f (%d neurons)\n", m.MeanCV, m.CVSamples)
	}
}
