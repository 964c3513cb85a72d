package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradientworks/amesgeo/internal/dataset"
	"github.com/gradientworks/amesgeo/internal/features"
	"github.com/gradientworks/amesgeo/internal/pipeline"
	"github.com/gradientworks/amesgeo/internal/report"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evaluate a single model variant",
	Long:  "Runs the load/geocode/join steps and evaluates one variant with k-fold cross-validation and a held-out split. Hyperparameter flags override the config file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		variantFlag, _ := cmd.Flags().GetString("variant")
		variant, err := features.ParseVariant(variantFlag)
		if err != nil {
			return err
		}
		applyModelFlags(cmd)

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
		split := dataset.TrainTestSplit(len(joined), cfg.Model.HoldoutFrac, cfg.Model.Seed)

		p := pipeline.ModelParams(cfg.Model)
		r, err := pipeline.EvaluateVariant(ctx, joined, cfg.Data.FeatureColumns, variant, split, p, cfg.Model.Folds)
		if err != nil {
			return err
		}
		zap.L().Info("evaluated variant",
			zap.String("variant", r.Variant),
			zap.Int("rounds", r.Rounds))

		cmp := &report.Comparison{
			Seed:    cfg.Model.Seed,
			Rows:    len(joined),
			Results: []report.VariantResult{*r},
		}
		return cmp.Render(os.Stdout)
	},
}

func init() {
	trainCmd.Flags().String("variant", "coords", "model variant: factor or coords")
	trainCmd.Flags().String("boundaries", "", "boundary shapefile path; centroids replace the maps API when set")
	trainCmd.Flags().String("name-field", "Name", "shapefile attribute holding the neighborhood name")
	trainCmd.Flags().Float64("learning-rate", 0, "boosting learning rate")
	trainCmd.Flags().Int("max-depth", 0, "tree depth limit")
	trainCmd.Flags().Int("rounds", 0, "max boosting rounds")
	trainCmd.Flags().Int("folds", 0, "cross-validation folds")
	trainCmd.Flags().Int64("seed", 0, "random seed")
	rootCmd.AddCommand(trainCmd)
}

// applyModelFlags copies any explicitly set hyperparameter flags into cfg.
func applyModelFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("learning-rate") {
		cfg.Model.LearningRate, _ = cmd.Flags().GetFloat64("learning-rate")
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Model.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	if cmd.Flags().Changed("rounds") {
		cfg.Model.Rounds, _ = cmd.Flags().GetInt("rounds")
	}
	if cmd.Flags().Changed("folds") {
		cfg.Model.Folds, _ = cmd.Flags().GetInt("folds")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Model.Seed, _ = cmd.Flags().GetInt64("seed")
	}
}
