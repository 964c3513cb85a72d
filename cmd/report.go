package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradientworks/amesgeo/internal/dataset"
	"github.com/gradientworks/amesgeo/internal/features"
	"github.com/gradientworks/amesgeo/internal/pipeline"
	"github.com/gradientworks/amesgeo/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full analysis and print the model comparison",
	Long:  "Loads the housing and neighborhood data, geocodes and projects neighborhoods, joins coordinates onto sales, evaluates the factor and coords model variants, and renders the comparison with residual plots.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sales, nbhds, err := pipeline.LoadInputs(cfg)
		if err != nil {
			return err
		}

		boundaries, _ := cmd.Flags().GetString("boundaries")
		nameField, _ := cmd.Flags().GetString("name-field")
		if _, err := locateNeighborhoods(ctx, nbhds, boundaries, nameField); err != nil {
			return err
		}

		joined := dataset.JoinPlanar(sales, dataset.NeighborhoodIndex(nbhds))
		if len(joined) == 0 {
			return eris.New("report: no sales with located neighborhoods")
		}

		cmp, err := evaluateBoth(ctx, joined)
		if err != nil {
			return err
		}

		if err := cmp.Render(os.Stdout); err != nil {
			return err
		}

		if err := writePlots(cfg.Plots.Dir, cmp, joined); err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := persistComparison(ctx, nbhds, cmp); err != nil {
				return err
			}
		}

		if xlsxPath, _ := cmd.Flags().GetString("xlsx"); xlsxPath != "" {
			if err := report.ExportXLSX(xlsxPath, cmp, nbhds); err != nil {
				return err
			}
			zap.L().Info("wrote workbook", zap.String("path", xlsxPath))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("boundaries", "", "boundary shapefile path; centroids replace the maps API when set")
	reportCmd.Flags().String("name-field", "Name", "shapefile attribute holding the neighborhood name")
	reportCmd.Flags().Bool("save", false, "persist the run to the SQLite store")
	reportCmd.Flags().String("xlsx", "", "write the comparison and neighborhood table to an XLSX workbook")
	rootCmd.AddCommand(reportCmd)
}

// evaluateBoth trains both variants on the identical joined dataset and split.
func evaluateBoth(ctx context.Context, joined []dataset.Sale) (*report.Comparison, error) {
	p := pipeline.ModelParams(cfg.Model)
	split := dataset.TrainTestSplit(len(joined), cfg.Model.HoldoutFrac, cfg.Model.Seed)

	cmp := &report.Comparison{Seed: cfg.Model.Seed, Rows: len(joined)}
	for _, v := range []features.Variant{features.VariantFactor, features.VariantCoords} {
		r, err := pipeline.EvaluateVariant(ctx, joined, cfg.Data.FeatureColumns, v, split, p, cfg.Model.Folds)
		if err != nil {
			return nil, err
		}
		cmp.Results = append(cmp.Results, *r)
	}
	return cmp, nil
}

// writePlots renders residual scatters, the per-neighborhood price boxplot,
// and validation curves into dir.
func writePlots(dir string, cmp *report.Comparison, joined []dataset.Sale) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "report: create plot dir")
	}

	curves := make(map[string][]float64, len(cmp.Results))
	for _, r := range cmp.Results {
		path := filepath.Join(dir, "residuals_"+r.Variant+".png")
		if err := report.ResidualScatter(path, r.Variant+" residuals", r.Predicted, r.Actual); err != nil {
			return err
		}
		curves[r.Variant] = r.Curve
	}

	if err := report.ValidationCurves(filepath.Join(dir, "validation.png"), curves); err != nil {
		return err
	}

	prices := make(map[string][]float64)
	for _, s := range joined {
		prices[s.Neighborhood] = append(prices[s.Neighborhood], s.SalePrice)
	}
	if err := report.PriceBoxplot(filepath.Join(dir, "prices_by_neighborhood.png"), prices); err != nil {
		return err
	}

	zap.L().Info("wrote plots", zap.String("dir", dir))
	return nil
}

// persistComparison saves geocode results and model metrics under one run.
func persistComparison(ctx context.Context, nbhds []*dataset.Neighborhood, cmp *report.Comparison) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(ctx, cfg.Model.Seed, cfg.Model)
	if err != nil {
		return err
	}
	for _, n := range nbhds {
		if n.Excluded {
			continue
		}
		if err := st.SaveGeocodeResult(ctx, run.ID, n); err != nil {
			return err
		}
	}
	for _, r := range cmp.Results {
		if err := st.SaveModelMetrics(ctx, run.ID, r.Variant, r.FoldRMSE, r.HoldoutRMSE, r.Rounds); err != nil {
			return err
		}
	}
	zap.L().Info("saved run", zap.String("id", run.ID))
	return nil
}
