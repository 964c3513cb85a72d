package pipeline

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradientworks/amesgeo/internal/dataset"
	"github.com/gradientworks/amesgeo/internal/features"
	"github.com/gradientworks/amesgeo/internal/gbm"
	"github.com/gradientworks/amesgeo/internal/spatial"
	"github.com/gradientworks/amesgeo/pkg/geocode"
)

// scriptedClient returns canned results per query and counts calls.
type scriptedClient struct {
	results map[string]*geocode.Result
	errs    map[string]error
	calls   int
}

func (c *scriptedClient) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	c.calls++
	if err, ok := c.errs[address]; ok {
		return nil, err
	}
	if r, ok := c.results[address]; ok {
		return r, nil
	}
	return &geocode.Result{Matched: false}, nil
}

func TestGeocodeNeighborhoods(t *testing.T) {
	nbhds := []*dataset.Neighborhood{
		{Key: "collgcr", Name: "College Creek", SearchString: "College Creek, Ames, Iowa"},
		{Key: "npkvill", Name: "Northpark Villa", Excluded: true},
		{Key: "sawyer", Name: "Sawyer", SearchString: "Sawyer, Ames, Iowa"},
		{Key: "gilbert", Name: "Gilbert", SearchString: "Gilbert, Ames, Iowa"},
	}

	client := &scriptedClient{
		results: map[string]*geocode.Result{
			"College Creek, Ames, Iowa": {Latitude: 42.0219, Longitude: -93.6557, Matched: true, Quality: "centroid"},
		},
		errs: map[string]error{
			"Gilbert, Ames, Iowa": eris.New("network timeout"),
		},
	}

	proj := spatial.UTM{Zone: 15, North: true}
	located := GeocodeNeighborhoods(context.Background(), client, nbhds, proj)

	assert.Equal(t, 1, located)
	assert.Equal(t, 3, client.calls, "excluded neighborhoods are never sent to the API")

	cc := nbhds[0]
	assert.True(t, cc.Located)
	assert.InDelta(t, 42.0219, cc.Lat, 1e-9)
	// Planar coordinates are exactly the projection of the geocoded point.
	e, n := proj.Project(42.0219, -93.6557)
	assert.Equal(t, e, cc.Easting)
	assert.Equal(t, n, cc.Northing)

	// Error and no-match inputs are skipped, not fatal.
	assert.False(t, nbhds[2].Located)
	assert.False(t, nbhds[3].Located)
}

func TestApplyShapefileCentroids(t *testing.T) {
	nbhds := []*dataset.Neighborhood{
		{Key: "collgcr", Name: "College Creek"},
		{Key: "npkvill", Name: "Northpark Villa", Excluded: true},
		{Key: "sawyer", Name: "Sawyer"},
	}
	centroids := map[string]spatial.Centroid{
		"college creek": {Lat: 42.02, Lng: -93.65},
		"sawyer":        {Lat: 42.04, Lng: -93.66},
	}

	located := ApplyShapefileCentroids(nbhds, centroids, spatial.UTM{Zone: 15, North: true})
	assert.Equal(t, 2, located)
	assert.True(t, nbhds[0].Located, "matched on display name")
	assert.True(t, nbhds[2].Located, "matched on key fallback")
	assert.False(t, nbhds[1].Located)
}

// syntheticSales builds joined sales where price depends on location, so the
// coords variant has signal to find.
func syntheticSales(n int, seed int64) []dataset.Sale {
	rng := rand.New(rand.NewSource(seed))
	keys := []string{"collgcr", "veenker", "sawyer", "gilbert"}
	sales := make([]dataset.Sale, n)
	for i := range sales {
		k := keys[rng.Intn(len(keys))]
		easting := 444000 + rng.Float64()*4000
		northing := 4650000 + rng.Float64()*6000
		area := 800 + rng.Float64()*1500
		sales[i] = dataset.Sale{
			ID:           i + 1,
			Neighborhood: k,
			SalePrice:    50000 + 90*area + (northing-4650000)*8 + rng.NormFloat64()*4000,
			Features:     map[string]float64{"GrLivArea": area},
			Easting:      easting,
			Northing:     northing,
			HasCoords:    true,
		}
	}
	return sales
}

func TestEvaluateVariant(t *testing.T) {
	sales := syntheticSales(240, 9)
	split := dataset.TrainTestSplit(len(sales), 0.2, 42)

	p := gbm.DefaultParams()
	p.Rounds = 60
	p.Patience = 10

	result, err := EvaluateVariant(context.Background(), sales, []string{"GrLivArea"}, features.VariantCoords, split, p, 4)
	require.NoError(t, err)

	assert.Equal(t, "coords", result.Variant)
	assert.Len(t, result.FoldRMSE, 4, "one RMSE per fold")
	assert.Greater(t, result.CVMean, 0.0)
	assert.Greater(t, result.HoldoutRMSE, 0.0)
	assert.Len(t, result.Predicted, len(split.Holdout))
	assert.NotEmpty(t, result.Curve)
	assert.LessOrEqual(t, result.Rounds, p.Rounds)
}

func TestEvaluateVariant_Deterministic(t *testing.T) {
	sales := syntheticSales(160, 9)
	split := dataset.TrainTestSplit(len(sales), 0.2, 42)

	p := gbm.DefaultParams()
	p.Rounds = 30

	a, err := EvaluateVariant(context.Background(), sales, []string{"GrLivArea"}, features.VariantFactor, split, p, 3)
	require.NoError(t, err)
	b, err := EvaluateVariant(context.Background(), sales, []string{"GrLivArea"}, features.VariantFactor, split, p, 3)
	require.NoError(t, err)

	assert.Equal(t, a.HoldoutRMSE, b.HoldoutRMSE, "fixed seed makes the report reproducible")
	assert.Equal(t, a.FoldRMSE, b.FoldRMSE)
}
