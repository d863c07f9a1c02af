package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/alxjhc/sf-airbnb/internal/config"
	"github.com/alxjhc/sf-airbnb/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	logJSON bool

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sf-airbnb",
	Short: "sf-airbnb: select the best nightly-price regression model for SF Airbnb listings",
	Long: `sf-airbnb loads a CSV of Airbnb listings, cleans it, and compares eight
regression families (linear, ridge, lasso, polynomial, KNN, elastic net,
random forest, gradient boosting) by cross-validated error, then reports an
unbiased hold-out estimate for the winner.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(initRun)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sf-airbnb/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

func initRun() {
	l, err := logging.New(debug, logJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to build logger: %v\n", err)
		l = zap.NewNop()
	}
	logger = l

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config re-check and fail there.
		logger.Warn("failed to load config", zap.Error(err))
		return
	}
	cfg = c
}
