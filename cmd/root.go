package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mendesarts/vox2you-import/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vox2you-import",
	Short: "Lead import and reconciliation engine",
	Long:  "Ingests spreadsheet exports, reconciles headers against the field catalog, coerces values, detects duplicates and commits leads to the store.",
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
