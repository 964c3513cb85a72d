package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gradientworks/amesgeo/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved analysis runs",
	Long:  "Commands for listing saved runs and viewing their model metrics.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the model metrics of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runID, err := st.ResolveRunID(ctx, args[0])
		if err != nil {
			return err
		}

		metrics, err := st.MetricsForRun(ctx, runID)
		if err != nil {
			return err
		}
		if len(metrics) == 0 {
			return eris.Errorf("runs show: no metrics for run %s", runID)
		}

		formatMetrics(os.Stdout, metrics)
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// initStore opens the configured SQLite store and ensures the schema exists.
func initStore(ctx context.Context) (*store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSEED\tCREATED\tPARAMS")

	for _, r := range runs {
		params := r.Params
		if len(params) > 60 {
			params = params[:57] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Seed,
			r.CreatedAt.Format("2006-01-02 15:04"),
			params,
		)
	}
	_ = w.Flush()
}

// formatMetrics writes one row per saved variant evaluation to w.
func formatMetrics(out io.Writer, metrics []store.Metrics) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VARIANT\tCV RMSE\tHOLDOUT RMSE\tROUNDS")

	for _, m := range metrics {
		folds := make([]string, len(m.CVRMSE))
		for i, v := range m.CVRMSE {
			folds[i] = fmt.Sprintf("%.0f", v)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.0f\t%d\n",
			m.Variant, strings.Join(folds, " "), m.HoldoutRMSE, m.Rounds)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
