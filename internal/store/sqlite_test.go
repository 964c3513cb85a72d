package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradientworks/amesgeo/internal/dataset"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestCreateAndListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, 42, map[string]any{"rounds": 300})
	require.NoError(t, err)
	assert.NotEmpty(t, r1.ID)
	assert.Contains(t, r1.Params, "rounds")

	_, err = s.CreateRun(ctx, 7, nil)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSaveGeocodeResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 42, nil)
	require.NoError(t, err)

	located := &dataset.Neighborhood{
		Key: "collgcr", Name: "College Creek", Located: true,
		Lat: 42.02, Lng: -93.65, Easting: 445800, Northing: 4651200,
		Quality: "centroid",
	}
	require.NoError(t, s.SaveGeocodeResult(ctx, run.ID, located))

	unmatched := &dataset.Neighborhood{Key: "npkvill", Name: "Northpark Villa"}
	require.NoError(t, s.SaveGeocodeResult(ctx, run.ID, unmatched))

	// Upsert: saving the same key twice keeps one row.
	require.NoError(t, s.SaveGeocodeResult(ctx, run.ID, located))

	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM geocode_results WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestResolveRunID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 42, nil)
	require.NoError(t, err)

	// Full ID and the 8-char prefix the runs list prints both resolve.
	id, err := s.ResolveRunID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, id)

	id, err = s.ResolveRunID(ctx, run.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, run.ID, id)

	_, err = s.ResolveRunID(ctx, "zzzzzzzz")
	assert.Error(t, err)

	// Every run shares the empty prefix, so it is ambiguous once a second
	// run exists.
	_, err = s.CreateRun(ctx, 7, nil)
	require.NoError(t, err)
	_, err = s.ResolveRunID(ctx, "")
	assert.Error(t, err)
}

func TestSaveAndReadModelMetrics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 42, nil)
	require.NoError(t, err)

	cv := []float64{25100.5, 24800.25, 26010.0}
	require.NoError(t, s.SaveModelMetrics(ctx, run.ID, "coords", cv, 24500.75, 180))
	require.NoError(t, s.SaveModelMetrics(ctx, run.ID, "factor", cv, 26900.0, 300))

	metrics, err := s.MetricsForRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	assert.Equal(t, "coords", metrics[0].Variant)
	assert.Equal(t, cv, metrics[0].CVRMSE)
	assert.InDelta(t, 24500.75, metrics[0].HoldoutRMSE, 1e-9)
	assert.Equal(t, 180, metrics[0].Rounds)
}
