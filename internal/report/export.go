package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/gradientworks/amesgeo/internal/dataset"
)

// ExportXLSX writes the comparison workbook: one sheet of per-variant
// metrics, one sheet of geocoded neighborhood coordinates.
func ExportXLSX(path string, cmp *Comparison, nbhds []*dataset.Neighborhood) error {
	f := xlsx.NewFile()

	metrics, err := f.AddSheet("metrics")
	if err != nil {
		return eris.Wrap(err, "report: add metrics sheet")
	}
	header := metrics.AddRow()
	for _, h := range []string{"variant", "cv_mean_rmse", "cv_sd_rmse", "holdout_rmse", "rounds", "fold_rmse"} {
		header.AddCell().Value = h
	}
	for _, r := range cmp.Results {
		row := metrics.AddRow()
		row.AddCell().Value = r.Variant
		row.AddCell().SetFloat(r.CVMean)
		row.AddCell().SetFloat(r.CVStd)
		row.AddCell().SetFloat(r.HoldoutRMSE)
		row.AddCell().SetInt(r.Rounds)
		folds := ""
		for i, v := range r.FoldRMSE {
			if i > 0 {
				folds += " "
			}
			folds += fmt.Sprintf("%.2f", v)
		}
		row.AddCell().Value = folds
	}

	coords, err := f.AddSheet("neighborhoods")
	if err != nil {
		return eris.Wrap(err, "report: add neighborhoods sheet")
	}
	header = coords.AddRow()
	for _, h := range []string{"key", "name", "matched", "lat", "lng", "easting", "northing", "quality"} {
		header.AddCell().Value = h
	}
	for _, n := range nbhds {
		row := coords.AddRow()
		row.AddCell().Value = n.Key
		row.AddCell().Value = n.Name
		row.AddCell().SetBool(n.Located)
		if n.Located {
			row.AddCell().SetFloat(n.Lat)
			row.AddCell().SetFloat(n.Lng)
			row.AddCell().SetFloat(n.Easting)
			row.AddCell().SetFloat(n.Northing)
			row.AddCell().Value = n.Quality
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}
