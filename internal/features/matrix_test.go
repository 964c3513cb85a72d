package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradientworks/amesgeo/internal/dataset"
)

func testSales() []dataset.Sale {
	return []dataset.Sale{
		{ID: 1, Neighborhood: "veenker", SalePrice: 181500,
			Features:  map[string]float64{"GrLivArea": 1262},
			Easting:   446000, Northing: 4653000, HasCoords: true},
		{ID: 2, Neighborhood: "collgcr", SalePrice: 208500,
			Features:  map[string]float64{"GrLivArea": 1710},
			Easting:   445800, Northing: 4651200, HasCoords: true},
		{ID: 3, Neighborhood: "collgcr", SalePrice: 223500,
			Features:  map[string]float64{"GrLivArea": math.NaN()},
			Easting:   445800, Northing: 4651200, HasCoords: true},
	}
}

func TestBuild_Coords(t *testing.T) {
	m, err := Build(testSales(), []string{"GrLivArea"}, VariantCoords)
	require.NoError(t, err)

	assert.Equal(t, []string{"GrLivArea", "Easting", "Northing"}, m.Cols)
	r, c := m.X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)

	assert.InDelta(t, 446000, m.X.At(0, 1), 1e-9)
	assert.InDelta(t, 4653000, m.X.At(0, 2), 1e-9)
	assert.InDelta(t, 181500, m.Y[0], 1e-9)

	// NaN cell is imputed with the column median of the non-NaN values.
	assert.InDelta(t, (1262.0+1710.0)/2, m.X.At(2, 0), 1e-9)
}

func TestBuild_Factor(t *testing.T) {
	m, err := Build(testSales(), []string{"GrLivArea"}, VariantFactor)
	require.NoError(t, err)

	// One-hot columns in sorted key order.
	assert.Equal(t, []string{"GrLivArea", "Nbhd_collgcr", "Nbhd_veenker"}, m.Cols)

	assert.Equal(t, 0.0, m.X.At(0, 1))
	assert.Equal(t, 1.0, m.X.At(0, 2))
	assert.Equal(t, 1.0, m.X.At(1, 1))
	assert.Equal(t, 0.0, m.X.At(1, 2))
}

func TestBuild_Factor_ManyNeighborhoods(t *testing.T) {
	keys := []string{"brkside", "collgcr", "gilbert", "sawyer", "veenker"}
	var sales []dataset.Sale
	for i, k := range keys {
		sales = append(sales, dataset.Sale{
			ID: i + 1, Neighborhood: k, SalePrice: 100000 + float64(i)*5000,
			Features: map[string]float64{"GrLivArea": 1200 + float64(i)*50},
		})
	}

	m, err := Build(sales, []string{"GrLivArea"}, VariantFactor)
	require.NoError(t, err)

	_, c := m.X.Dims()
	assert.Equal(t, 1+len(keys), c)

	// Each row is hot in exactly the column for its own key, in sorted order.
	for i, k := range keys {
		for j := range keys {
			want := 0.0
			if m.Cols[1+j] == "Nbhd_"+k {
				want = 1.0
			}
			assert.Equal(t, want, m.X.At(i, 1+j), "row %d col %s", i, m.Cols[1+j])
		}
	}
}

func TestBuild_CoordsRequiresJoin(t *testing.T) {
	sales := testSales()
	sales[1].HasCoords = false

	_, err := Build(sales, []string{"GrLivArea"}, VariantCoords)
	assert.Error(t, err)
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil, nil, VariantCoords)
	assert.Error(t, err)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("coords")
	require.NoError(t, err)
	assert.Equal(t, VariantCoords, v)

	v, err = ParseVariant("factor")
	require.NoError(t, err)
	assert.Equal(t, VariantFactor, v)

	_, err = ParseVariant("spline")
	assert.Error(t, err)
}

func TestSubset(t *testing.T) {
	m, err := Build(testSales(), []string{"GrLivArea"}, VariantCoords)
	require.NoError(t, err)

	sub := m.Subset([]int{2, 0})
	r, c := sub.X.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 223500, sub.Y[0], 1e-9)
	assert.InDelta(t, 181500, sub.Y[1], 1e-9)
	assert.Equal(t, m.Cols, sub.Cols)
}
