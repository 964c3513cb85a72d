package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradientworks/amesgeo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "amesgeo",
	Short: "Neighborhood location effects on Ames housing sale prices",
	Long:  "Geocodes Ames neighborhoods, projects them to planar UTM coordinates, joins them onto housing sales, and compares gradient-boosted price models built on neighborhood identity versus location.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
