package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifnet-sim/lifnet/sim/internal/testutil"
)

func TestComputeMetrics_RegularFiring(t *testing.T) {
	// GIVEN 10 unconnected neurons under I=1.01, each spiking 5 times in 500 ms
	p := quietParams(10)
	p.ExternalCurrent = 1.01
	net := newTestNetwork(t, p, 1)
	net.Run(5000)

	// WHEN metrics are computed
	m := ComputeMetrics(net)

	// THEN counts, rates and ISI statistics follow the closed form
	assert.Equal(t, int64(5000), m.Steps)
	testutil.AssertFloat64Equal(t, "duration", 500, m.DurationMs, 1e-12)
	assert.Equal(t, 50, m.TotalSpikes)
	assert.Equal(t, 10, m.ActiveNeurons)
	testutil.AssertFloat64Equal(t, "mean rate", 10, m.MeanRateHz, 1e-9)
	testutil.AssertFloat64Equal(t, "excitatory rate", 10, m.ExcitatoryRateHz, 1e-9)
	testutil.AssertFloat64Equal(t, "inhibitory rate", 10, m.InhibitoryRateHz, 1e-9)
	testutil.AssertFloat64Equal(t, "mean ISI", 94.5, m.MeanISIMs, 1e-9)
	assert.InDelta(t, 0, m.MeanCV, 1e-9, "perfectly regular firing has zero CV")
	assert.Equal(t, 10, m.CVSamples)
}

func TestComputeMetrics_SilentNetwork(t *testing.T) {
	net := newTestNetwork(t, quietParams(10), 1)
	net.Run(100)

	m := ComputeMetrics(net)

	assert.Zero(t, m.TotalSpikes)
	assert.Zero(t, m.ActiveNeurons)
	assert.Zero(t, m.MeanRateHz)
	assert.Zero(t, m.MeanISIMs)
	assert.Zero(t, m.CVSamples)
}

func TestComputeMetrics_NotRun_NoDivisionByZero(t *testing.T) {
	net := newTestNetwork(t, quietParams(10), 1)

	m := ComputeMetrics(net)

	assert.Zero(t, m.MeanRateHz)
}

func TestMetrics_Print(t *testing.T) {
	p := quietParams(10)
	p.ExternalCurrent = 1.01
	net := newTestNetwork(t, p, 1)
	net.Run(5000)

	var buf bytes.Buffer
	ComputeMetrics(net).Print(&buf)

	out := buf.String()
	require.Contains(t, out, "=== Simulation Metrics ===")
	assert.Contains(t, out, "Total Spikes         : 50")
	assert.Contains(t, out, "Mean Rate            : 10.00 Hz")
}
