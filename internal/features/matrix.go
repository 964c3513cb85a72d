// Package features builds numeric design matrices from joined sale records.
package features

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/gradientworks/amesgeo/internal/dataset"
)

// Variant selects how neighborhood location enters the design matrix.
type Variant string

const (
	// VariantFactor one-hot encodes neighborhood identity.
	VariantFactor Variant = "factor"
	// VariantCoords uses planar easting/northing as continuous features.
	VariantCoords Variant = "coords"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantFactor, VariantCoords:
		return Variant(s), nil
	default:
		return "", eris.Errorf("features: unknown variant %q (want factor or coords)", s)
	}
}

// Matrix is a design matrix with its target vector and column names.
type Matrix struct {
	X    *mat.Dense
	Y    []float64
	Cols []string
}

// Build assembles the design matrix for one model variant. Continuous
// columns come from featureCols with NaN cells replaced by the column
// median. The coords variant requires every sale to carry joined planar
// coordinates; the factor variant appends a one-hot block over the distinct
// neighborhood keys present, in sorted order so column layout is stable.
func Build(sales []dataset.Sale, featureCols []string, variant Variant) (*Matrix, error) {
	if len(sales) == 0 {
		return nil, eris.New("features: no sales to encode")
	}

	cols := append([]string{}, featureCols...)

	var keys []string
	keyCol := map[string]int{}
	switch variant {
	case VariantCoords:
		for _, s := range sales {
			if !s.HasCoords {
				return nil, eris.Errorf("features: sale %d has no planar coordinates", s.ID)
			}
		}
		cols = append(cols, "Easting", "Northing")
	case VariantFactor:
		seen := map[string]bool{}
		for _, s := range sales {
			if !seen[s.Neighborhood] {
				seen[s.Neighborhood] = true
				keys = append(keys, s.Neighborhood)
			}
		}
		sort.Strings(keys)
		base := len(cols)
		for i, k := range keys {
			keyCol[k] = base + i
			cols = append(cols, "Nbhd_"+k)
		}
	default:
		return nil, eris.Errorf("features: unknown variant %q", variant)
	}

	n := len(sales)
	x := mat.NewDense(n, len(cols), nil)
	y := make([]float64, n)

	for i, s := range sales {
		for j, col := range featureCols {
			x.Set(i, j, s.Features[col])
		}
		switch variant {
		case VariantCoords:
			x.Set(i, len(featureCols), s.Easting)
			x.Set(i, len(featureCols)+1, s.Northing)
		case VariantFactor:
			x.Set(i, keyCol[s.Neighborhood], 1)
		}
		y[i] = s.SalePrice
	}

	imputeMedians(x, len(featureCols))

	return &Matrix{X: x, Y: y, Cols: cols}, nil
}

// Subset returns a new Matrix containing only the given rows.
func (m *Matrix) Subset(rows []int) *Matrix {
	_, c := m.X.Dims()
	x := mat.NewDense(len(rows), c, nil)
	y := make([]float64, len(rows))
	for i, r := range rows {
		for j := 0; j < c; j++ {
			x.Set(i, j, m.X.At(r, j))
		}
		y[i] = m.Y[r]
	}
	return &Matrix{X: x, Y: y, Cols: m.Cols}
}

// imputeMedians replaces NaN cells in the first nCols columns with the
// column median over the non-NaN values. An all-NaN column becomes zero.
func imputeMedians(x *mat.Dense, nCols int) {
	r, _ := x.Dims()
	for j := 0; j < nCols; j++ {
		var vals []float64
		for i := 0; i < r; i++ {
			if v := x.At(i, j); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		med := 0.0
		if len(vals) > 0 {
			sort.Float64s(vals)
			mid := len(vals) / 2
			if len(vals)%2 == 1 {
				med = vals[mid]
			} else {
				med = (vals[mid-1] + vals[mid]) / 2
			}
		}
		for i := 0; i < r; i++ {
			if math.IsNaN(x.At(i, j)) {
				x.Set(i, j, med)
			}
		}
	}
}
