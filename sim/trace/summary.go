package trace

import "gonum.org/v1/gonum/stat"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps        int
	TotalSpikes       int
	PeakSpikes        int   // largest population count in a single step
	PeakStep          int64 // first step reaching PeakSpikes
	MeanSpikesPerStep float64
	// FanoFactor is variance/mean of the per-step population count.
	// Near 1 for asynchronous irregular activity, much larger when synchronous.
	FanoFactor float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil || len(st.Steps) == 0 {
		return summary
	}

	counts := make([]float64, len(st.Steps))
	for i, r := range st.Steps {
		counts[i] = float64(r.Spikes)
		summary.TotalSpikes += r.Spikes
		if r.Spikes > summary.PeakSpikes {
			summary.PeakSpikes = r.Spikes
			summary.PeakStep = r.Step
		}
	}
	summary.TotalSteps = len(st.Steps)

	mean, variance := stat.PopMeanVariance(counts, nil)
	summary.MeanSpikesPerStep = mean
	if mean > 0 {
		summary.FanoFactor = variance / mean
	}
	return summary
}
