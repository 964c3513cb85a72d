package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPlanar(t *testing.T) {
	nbhds := map[string]*Neighborhood{
		"collgcr": {Key: "collgcr", Located: true, Easting: 445800.5, Northing: 4651200.25},
		"npkvill": {Key: "npkvill", Excluded: true},
		"sawyer":  {Key: "sawyer", Located: false}, // geocode never matched
	}

	sales := []Sale{
		{ID: 1, Neighborhood: "collgcr", SalePrice: 208500},
		{ID: 2, Neighborhood: "npkvill", SalePrice: 140000},
		{ID: 3, Neighborhood: "sawyer", SalePrice: 130500},
		{ID: 4, Neighborhood: "unknown", SalePrice: 99000},
		{ID: 5, Neighborhood: "collgcr", SalePrice: 223500},
	}

	joined := JoinPlanar(sales, nbhds)
	require.Len(t, joined, 2)

	for _, s := range joined {
		assert.Equal(t, "collgcr", s.Neighborhood)
		assert.True(t, s.HasCoords)
		// Attached planar coordinates are exactly the neighborhood centroid.
		assert.Equal(t, 445800.5, s.Easting)
		assert.Equal(t, 4651200.25, s.Northing)
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	a := TrainTestSplit(100, 0.25, 42)
	b := TrainTestSplit(100, 0.25, 42)
	assert.Equal(t, a, b)

	c := TrainTestSplit(100, 0.25, 43)
	assert.NotEqual(t, a.Holdout, c.Holdout)
}

func TestTrainTestSplit_Partition(t *testing.T) {
	s := TrainTestSplit(10, 0.3, 1)
	assert.Len(t, s.Holdout, 3)
	assert.Len(t, s.Train, 7)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, s.Train...), s.Holdout...) {
		assert.False(t, seen[i], "index %d assigned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 10)
}

func TestTrainTestSplit_Clamped(t *testing.T) {
	s := TrainTestSplit(2, 0.0, 1)
	assert.Len(t, s.Holdout, 1)
	assert.Len(t, s.Train, 1)

	s = TrainTestSplit(2, 1.0, 1)
	assert.Len(t, s.Holdout, 1)
	assert.Len(t, s.Train, 1)

	s = TrainTestSplit(0, 0.5, 1)
	assert.Empty(t, s.Holdout)
	assert.Empty(t, s.Train)
}
