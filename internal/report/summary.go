// Package report renders model-comparison summaries, residual plots, and the
// optional XLSX export.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
)

// VariantResult is the evaluation of one model variant.
type VariantResult struct {
	Variant     string
	FoldRMSE    []float64
	CVMean      float64
	CVStd       float64
	HoldoutRMSE float64
	Rounds      int
	Curve       []float64 // validation RMSE per boosting round
	Predicted   []float64 // held-out predictions
	Actual      []float64 // held-out targets
}

// Comparison is the full report: both variants on the same joined dataset.
type Comparison struct {
	Seed    int64
	Rows    int
	Results []VariantResult
}

// Winner returns the variant with the lowest held-out RMSE.
func (c *Comparison) Winner() string {
	best := ""
	bestRMSE := 0.0
	for _, r := range c.Results {
		if best == "" || r.HoldoutRMSE < bestRMSE {
			best = r.Variant
			bestRMSE = r.HoldoutRMSE
		}
	}
	return best
}

// Render writes the comparison as an aligned text table.
func (c *Comparison) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "variant\tcv rmse (mean ± sd)\tfold rmse\tholdout rmse\trounds\n")
	for _, r := range c.Results {
		folds := make([]string, len(r.FoldRMSE))
		for i, v := range r.FoldRMSE {
			folds[i] = fmt.Sprintf("%.0f", v)
		}
		fmt.Fprintf(tw, "%s\t%.0f ± %.0f\t%s\t%.0f\t%d\n",
			r.Variant, r.CVMean, r.CVStd, strings.Join(folds, " "), r.HoldoutRMSE, r.Rounds)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "report: render table")
	}

	fmt.Fprintf(w, "\nrows: %d  seed: %d  best holdout: %s\n", c.Rows, c.Seed, c.Winner())
	return nil
}
