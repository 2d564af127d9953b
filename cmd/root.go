package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recipe-cost/internal/config"
)

var cfg *config.Config

// logOverrides holds the persistent --log-* flags. Empty means use config.
var logOverrides struct {
	level  string
	format string
}

var rootCmd = &cobra.Command{
	Use:           "recipe-cost",
	Short:         "Recipe shopping-cost estimator",
	Long:          "Maps each recipe ingredient onto the retail package a store sells it in and totals what the shopping trip costs versus what the recipe consumes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyLogOverrides(&c.Log)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.L().Debug("recipe-cost: starting", zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&logOverrides.level, "log-level", "", "override log.level (debug, info, warn, error)")
	f.StringVar(&logOverrides.format, "log-format", "", "override log.format (json, console)")
}

func applyLogOverrides(lc *config.LogConfig) {
	if logOverrides.level != "" {
		lc.Level = logOverrides.level
	}
	if logOverrides.format != "" {
		lc.Format = logOverrides.format
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "recipe-cost:", err)
		os.Exit(1)
	}
}
