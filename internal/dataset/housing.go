package dataset

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Column names expected in the housing CSV.
const (
	colID           = "Id"
	colNeighborhood = "Neighborhood"
	colSalePrice    = "SalePrice"
	colTrainTest    = "train_test"
)

// LoadHousing reads the housing CSV and returns the modeling rows: records
// flagged "train" whose sale price parses. Feature cells that are missing or
// non-numeric become NaN. Neighborhood keys are lower-cased on load so
// matching is case-insensitive end to end.
func LoadHousing(path string, featureCols []string) ([]Sale, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open housing csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read housing header")
	}
	colIdx := mapColumns(header)

	nbhdIdx, ok := colIdx[strings.ToLower(colNeighborhood)]
	if !ok {
		return nil, eris.Errorf("dataset: housing csv missing %s column", colNeighborhood)
	}
	priceIdx, ok := colIdx[strings.ToLower(colSalePrice)]
	if !ok {
		return nil, eris.Errorf("dataset: housing csv missing %s column", colSalePrice)
	}
	flagIdx, hasFlag := colIdx[strings.ToLower(colTrainTest)]
	idIdx, hasID := colIdx[strings.ToLower(colID)]

	log := zap.L().With(zap.String("component", "dataset.housing"))

	var sales []Sale
	var skipped int
	row := 0
	for {
		rec, err := reader.Read()
		if err != nil {
			break // io.EOF or a malformed trailing line ends the scan
		}
		row++

		if hasFlag && !strings.EqualFold(field(rec, flagIdx), "train") {
			continue
		}

		price, err := strconv.ParseFloat(field(rec, priceIdx), 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}

		id := row
		if hasID {
			if v, err := strconv.Atoi(field(rec, idIdx)); err == nil {
				id = v
			}
		}

		features := make(map[string]float64, len(featureCols))
		for _, col := range featureCols {
			idx, ok := colIdx[strings.ToLower(col)]
			if !ok {
				features[col] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(field(rec, idx), 64)
			if err != nil {
				v = math.NaN()
			}
			features[col] = v
		}

		sales = append(sales, Sale{
			ID:           id,
			Neighborhood: strings.ToLower(strings.TrimSpace(field(rec, nbhdIdx))),
			SalePrice:    price,
			Features:     features,
		})
	}

	if len(sales) == 0 {
		return nil, eris.Errorf("dataset: no usable training rows in %s", path)
	}

	log.Info("housing data loaded",
		zap.Int("rows", len(sales)),
		zap.Int("skipped", skipped),
	)
	return sales, nil
}

// mapColumns builds a lower-cased header name → index lookup.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return m
}

// field returns rec[i] or "" when the row is short.
func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
