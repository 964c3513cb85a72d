package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradientworks/amesgeo/internal/dataset"
	"github.com/gradientworks/amesgeo/internal/pipeline"
	"github.com/gradientworks/amesgeo/internal/spatial"
	"github.com/gradientworks/amesgeo/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Geocode the neighborhood list and print planar coordinates",
	Long:  "Resolves each neighborhood to a lat/lng (maps API or boundary shapefile), projects to UTM, and prints the results. Model training is untouched.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ov := dataset.DefaultOverrides()
		if cfg.Data.OverridesYAML != "" {
			loaded, err := dataset.LoadOverrides(cfg.Data.OverridesYAML)
			if err != nil {
				return err
			}
			ov = loaded
		}
		nbhds, err := dataset.LoadNeighborhoods(cfg.Data.NeighborhoodTSV, cfg.Geocode.Locality, ov)
		if err != nil {
			return err
		}

		boundaries, _ := cmd.Flags().GetString("boundaries")
		nameField, _ := cmd.Flags().GetString("name-field")

		located, err := locateNeighborhoods(ctx, nbhds, boundaries, nameField)
		if err != nil {
			return err
		}
		zap.L().Info("located neighborhoods",
			zap.Int("located", located),
			zap.Int("total", len(nbhds)))

		formatNeighborhoods(os.Stdout, nbhds)

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := persistGeocode(ctx, nbhds); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	geocodeCmd.Flags().String("boundaries", "", "boundary shapefile path; centroids replace the maps API when set")
	geocodeCmd.Flags().String("name-field", "Name", "shapefile attribute holding the neighborhood name")
	geocodeCmd.Flags().Bool("save", false, "persist results to the SQLite store")
	rootCmd.AddCommand(geocodeCmd)
}

// newGeocoder builds the memoized maps-API client from config.
func newGeocoder() (geocode.Client, error) {
	if cfg.Geocode.APIKey == "" {
		return nil, eris.New("geocode: missing API key (set AMESGEO_GEOCODE_API_KEY)")
	}
	opts := []geocode.Option{geocode.WithRateLimit(cfg.Geocode.RateLimit)}
	if cfg.Geocode.BaseURL != "" {
		opts = append(opts, geocode.WithBaseURL(cfg.Geocode.BaseURL))
	}
	return geocode.NewMemoized(geocode.NewGoogle(cfg.Geocode.APIKey, opts...)), nil
}

// locateNeighborhoods attaches coordinates via the boundary shapefile when a
// path is given, otherwise via the maps API.
func locateNeighborhoods(ctx context.Context, nbhds []*dataset.Neighborhood, boundaries, nameField string) (int, error) {
	proj := spatial.UTM{Zone: cfg.Geocode.UTMZone, North: true}

	if boundaries != "" {
		centroids, err := spatial.CentroidsFromShapefile(boundaries, nameField)
		if err != nil {
			return 0, err
		}
		return pipeline.ApplyShapefileCentroids(nbhds, centroids, proj), nil
	}

	client, err := newGeocoder()
	if err != nil {
		return 0, err
	}
	return pipeline.GeocodeNeighborhoods(ctx, client, nbhds, proj), nil
}

// persistGeocode saves geocode results under a fresh run.
func persistGeocode(ctx context.Context, nbhds []*dataset.Neighborhood) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(ctx, cfg.Model.Seed, cfg.Geocode)
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
	fmt.Fprintf(os.Stderr, "saved run %s\n", run.ID)
	return nil
}

// formatNeighborhoods writes a tabular geocoding summary to w.
func formatNeighborhoods(out io.Writer, nbhds []*dataset.Neighborhood) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tNAME\tSTATUS\tLAT\tLNG\tEASTING\tNORTHING\tQUALITY")

	for _, n := range nbhds {
		switch {
		case n.Excluded:
			_, _ = fmt.Fprintf(w, "%s\t%s\texcluded\t\t\t\t\t\n", n.Key, n.Name)
		case !n.Located:
			_, _ = fmt.Fprintf(w, "%s\t%s\tunmatched\t\t\t\t\t\n", n.Key, n.Name)
		default:
			_, _ = fmt.Fprintf(w, "%s\t%s\tok\t%.5f\t%.5f\t%.0f\t%.0f\t%s\n",
				n.Key, n.Name, n.Lat, n.Lng, n.Easting, n.Northing, n.Quality)
		}
	}
	_ = w.Flush()
}
