// Package pipeline wires the stages of the analysis: load, geocode,
// reproject, join, train, evaluate.
package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gradientworks/amesgeo/internal/config"
	"github.com/gradientworks/amesgeo/internal/dataset"
	"github.com/gradientworks/amesgeo/internal/features"
	"github.com/gradientworks/amesgeo/internal/gbm"
	"github.com/gradientworks/amesgeo/internal/report"
	"github.com/gradientworks/amesgeo/internal/spatial"
	"github.com/gradientworks/amesgeo/pkg/geocode"
)

// LoadInputs reads the housing CSV and the neighborhood lookup table,
// applying overrides from the configured YAML file when present.
func LoadInputs(cfg *config.Config) ([]dataset.Sale, []*dataset.Neighborhood, error) {
	ov := dataset.DefaultOverrides()
	if cfg.Data.OverridesYAML != "" {
		loaded, err := dataset.LoadOverrides(cfg.Data.OverridesYAML)
		if err != nil {
			return nil, nil, err
		}
		ov = loaded
	}

	nbhds, err := dataset.LoadNeighborhoods(cfg.Data.NeighborhoodTSV, cfg.Geocode.Locality, ov)
	if err != nil {
		return nil, nil, err
	}

	sales, err := dataset.LoadHousing(cfg.Data.HousingCSV, cfg.Data.FeatureColumns)
	if err != nil {
		return nil, nil, err
	}

	return sales, nbhds, nil
}

// GeocodeNeighborhoods resolves every non-excluded neighborhood through the
// client, one call at a time, and attaches both geographic and projected
// planar coordinates. A failed or unmatched lookup logs a warning and moves
// on; it never aborts the batch. Returns the number located.
func GeocodeNeighborhoods(ctx context.Context, client geocode.Client, nbhds []*dataset.Neighborhood, proj spatial.UTM) int {
	log := zap.L().With(zap.String("component", "pipeline.geocode"))
	located := 0

	for _, n := range nbhds {
		if n.Excluded {
			log.Debug("skipping excluded neighborhood", zap.String("key", n.Key))
			continue
		}

		result, err := client.Geocode(ctx, n.SearchString)
		if err != nil {
			log.Warn("geocode failed, dropping neighborhood",
				zap.String("key", n.Key),
				zap.String("query", n.SearchString),
				zap.Error(err),
			)
			continue
		}
		if !result.Matched {
			log.Warn("no geocode match, dropping neighborhood",
				zap.String("key", n.Key),
				zap.String("query", n.SearchString),
			)
			continue
		}

		n.Lat = result.Latitude
		n.Lng = result.Longitude
		n.Quality = result.Quality
		n.Easting, n.Northing = proj.Project(result.Latitude, result.Longitude)
		n.Located = true
		located++
	}

	log.Info("geocoding complete",
		zap.Int("located", located),
		zap.Int("total", len(nbhds)),
	)
	return located
}

// ApplyShapefileCentroids locates neighborhoods from boundary-polygon
// centroids instead of the HTTP API, matching on lower-cased display name
// with the key as fallback. Returns the number located.
func ApplyShapefileCentroids(nbhds []*dataset.Neighborhood, centroids map[string]spatial.Centroid, proj spatial.UTM) int {
	located := 0
	for _, n := range nbhds {
		if n.Excluded {
			continue
		}
		c, ok := centroids[strings.ToLower(n.Name)]
		if !ok {
			c, ok = centroids[n.Key]
		}
		if !ok {
			zap.L().Warn("no boundary polygon for neighborhood", zap.String("key", n.Key))
			continue
		}
		n.Lat = c.Lat
		n.Lng = c.Lng
		n.Quality = "centroid"
		n.Easting, n.Northing = proj.Project(c.Lat, c.Lng)
		n.Located = true
		located++
	}
	return located
}

// EvaluateVariant builds the design matrix for one variant, cross-validates
// on the training partition, then refits with the holdout as the validation
// set for early stopping and reports held-out error.
func EvaluateVariant(ctx context.Context, sales []dataset.Sale, featureCols []string, variant features.Variant, split dataset.Split, p gbm.Params, folds int) (*report.VariantResult, error) {
	m, err := features.Build(sales, featureCols, variant)
	if err != nil {
		return nil, err
	}

	train := m.Subset(split.Train)
	holdout := m.Subset(split.Holdout)

	foldRMSE, err := gbm.CrossValidate(ctx, train.X, train.Y, p, folds)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: cross-validate %s", variant)
	}

	model, curve, err := gbm.TrainValidate(train.X, train.Y, holdout.X, holdout.Y, p)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: train %s", variant)
	}

	predicted := model.Predict(holdout.X)
	mean, std := gbm.MeanStd(foldRMSE)

	return &report.VariantResult{
		Variant:     string(variant),
		FoldRMSE:    foldRMSE,
		CVMean:      mean,
		CVStd:       std,
		HoldoutRMSE: gbm.RMSE(predicted, holdout.Y),
		Rounds:      model.Rounds(),
		Curve:       curve,
		Predicted:   predicted,
		Actual:      holdout.Y,
	}, nil
}

// ModelParams converts the config hyperparameter block to gbm.Params.
func ModelParams(mc config.ModelConfig) gbm.Params {
	return gbm.Params{
		LearningRate: mc.LearningRate,
		MaxDepth:     mc.MaxDepth,
		MinLeaf:      mc.MinLeaf,
		Subsample:    mc.Subsample,
		Rounds:       mc.Rounds,
		Patience:     mc.Patience,
		Seed:         mc.Seed,
	}
}
