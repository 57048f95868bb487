package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifnet-sim/lifnet/sim"
	"github.com/lifnet-sim/lifnet/sim/report"
)

func openTestStore(t *testing.T) *SpikeStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs", "spikes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func runNetwork(t *testing.T, seed int64) *sim.Network {
	t.Helper()
	p := sim.DefaultParams()
	p.Neurons = 100
	net, err := sim.NewNetwork(p, sim.NewSimulationKey(seed))
	require.NoError(t, err)
	net.Run(400)
	require.NotZero(t, net.SpikeCount())
	return net
}

func TestSaveRun_SpikesMatchExport(t *testing.T) {
	// GIVEN a finished run
	s := openTestStore(t)
	net := runNetwork(t, 42)
	ctx := context.Background()

	// WHEN it is saved
	run, err := s.SaveRun(ctx, net)
	require.NoError(t, err)

	// THEN the stored spikes are exactly the exported ones
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, int64(400), run.Steps)
	assert.Equal(t, 100, run.Neurons)
	assert.Equal(t, net.SpikeCount(), run.Spikes)

	got, err := s.Spikes(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Records(net.Neurons()), got)
}

func TestRuns_RestoresParams(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	first, err := s.SaveRun(ctx, runNetwork(t, 1))
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, runNetwork(t, 2))
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)

	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	for _, r := range runs {
		assert.Equal(t, first.Params, r.Params)
		assert.False(t, r.CreatedAt.IsZero())
	}
}

func TestSpikes_UnknownRun_Empty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Spikes(context.Background(), "no-such-run")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_Reopen_KeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spikes.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	run, err := s.SaveRun(ctx, runNetwork(t, 7))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, run.CreatedAt, runs[0].CreatedAt)
}
