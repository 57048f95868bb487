package report

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifnet-sim/lifnet/sim"
)

// regularNetwork returns 10 unconnected neurons driven by I=1.01 and run for
// the given steps; every neuron fires at 924, 1869, ...
func regularNetwork(t *testing.T, steps int64) *sim.Network {
	t.Helper()
	p := sim.DefaultParams()
	p.Neurons = 10
	p.ConnectionFraction = 0
	p.ExternalRate = 0
	p.ExternalCurrent = 1.01
	net, err := sim.NewNetwork(p, sim.NewSimulationKey(1))
	require.NoError(t, err)
	net.Run(steps)
	return net
}

func noisyNetwork(t *testing.T) *sim.Network {
	t.Helper()
	p := sim.DefaultParams()
	p.Neurons = 200
	net, err := sim.NewNetwork(p, sim.NewSimulationKey(42))
	require.NoError(t, err)
	net.Run(300)
	require.NotZero(t, net.SpikeCount())
	return net
}

func TestWriteSpikes_Format(t *testing.T) {
	// GIVEN neurons that each fired once at step 924
	net := regularNetwork(t, 1000)

	// WHEN exported
	var buf bytes.Buffer
	require.NoError(t, WriteSpikes(&buf, net.Neurons()))

	// THEN each line is "time_ms<TAB>neuron" with time in 0.1 ms units
	want := ""
	for i := 0; i < 10; i++ {
		want += fmt.Sprintf("92.4\t%d\n", i)
	}
	assert.Equal(t, want, buf.String())
}

func TestWriteSpikes_NoSpikes_EmptyOutput(t *testing.T) {
	net := regularNetwork(t, 100)

	var buf bytes.Buffer
	require.NoError(t, WriteSpikes(&buf, net.Neurons()))

	assert.Empty(t, buf.String())
}

func TestSpikes_RoundTrip(t *testing.T) {
	// GIVEN a noisy recurrent network with many spikes
	net := noisyNetwork(t)
	want := Records(net.Neurons())

	// WHEN written and read back
	var buf bytes.Buffer
	require.NoError(t, WriteSpikes(&buf, net.Neurons()))
	got, err := ReadSpikes(&buf)
	require.NoError(t, err)

	// THEN every spike appears exactly once and nothing else does
	assert.Equal(t, want, got)
	assert.Len(t, got, net.SpikeCount())

	fired := make(map[int]bool)
	for _, r := range got {
		fired[r.Neuron] = true
	}
	for i, n := range net.Neurons() {
		assert.Equal(t, n.SpikeCount() > 0, fired[i], "neuron %d", i)
	}
}

func TestSpikesFile_RoundTrip(t *testing.T) {
	net := regularNetwork(t, 5000)
	path := filepath.Join(t.TempDir(), "data_neuro.txt")

	require.NoError(t, WriteSpikesFile(path, net.Neurons()))
	got, err := ReadSpikesFile(path)
	require.NoError(t, err)

	assert.Len(t, got, 50)
	assert.Equal(t, SpikeRecord{Step: 924, Neuron: 0}, got[0])
	assert.Equal(t, SpikeRecord{Step: 4704, Neuron: 9}, got[len(got)-1])
}

func TestWriteSpikesFile_UnwritablePath_ReportsError(t *testing.T) {
	net := regularNetwork(t, 1000)
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.txt")

	err := WriteSpikesFile(path, net.Neurons())

	require.Error(t, err)
	// the in-memory results are still there
	assert.Equal(t, 10, net.SpikeCount())
}

func TestReadSpikes_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad time", "abc\t1\n"},
		{"bad neuron", "92.4\tx\n"},
		{"missing column", "92.4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSpikes(bytes.NewBufferString(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestReadSpikesFile_Missing(t *testing.T) {
	_, err := ReadSpikesFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSpikeRecord_TimeMs(t *testing.T) {
	assert.InDelta(t, 92.4, SpikeRecord{Step: 924}.TimeMs(), 1e-9)
}
