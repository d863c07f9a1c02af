package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/alxjhc/sf-airbnb/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("seed: %d\n", cfg.Seed)
		fmt.Printf("train_ratio: %.3f\n", cfg.TrainRatio)
		fmt.Printf("folds: %d\n", cfg.Folds)
		fmt.Printf("stratify_bins: %d\n", cfg.StratifyBins)
		fmt.Printf("metric: %s\n", cfg.Metric)
		fmt.Printf("workers: %d\n", cfg.Workers)
		fmt.Printf("target: %s\n", cfg.Target)
		fmt.Printf("price_cap: %.0f\n", cfg.PriceCap)
		fmt.Printf("rare_threshold: %.3f\n", cfg.RareThreshold)
		if len(cfg.DropColumns) > 0 {
			fmt.Printf("drop_columns: %s\n", strings.Join(cfg.DropColumns, ", "))
		}
		if len(cfg.DeriveBools) > 0 {
			fmt.Printf("derive_bools: %s\n", strings.Join(cfg.DeriveBools, ", "))
		}
		if len(cfg.ImputePredictors) > 0 {
			fmt.Printf("impute_predictors: %s\n", strings.Join(cfg.ImputePredictors, ", "))
		}
		if cfg.StorePath != "" {
			fmt.Printf("store_path: %s\n", cfg.StorePath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "seed":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed: %s", val)
			}
			cfg.Seed = n
		case "train_ratio":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid train_ratio: %s", val)
			}
			cfg.TrainRatio = f
		case "folds":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid folds: %s", val)
			}
			cfg.Folds = n
		case "stratify_bins":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid stratify_bins: %s", val)
			}
			cfg.StratifyBins = n
		case "metric":
			switch val {
			case "rmse", "mae", "r2":
				cfg.Metric = val
			default:
				return fmt.Errorf("invalid metric: %s (use rmse, mae, or r2)", val)
			}
		case "workers":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid workers: %s", val)
			}
			cfg.Workers = n
		case "target":
			cfg.Target = val
		case "price_cap":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid price_cap: %s", val)
			}
			cfg.PriceCap = f
		case "rare_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid rare_threshold: %s", val)
			}
			cfg.RareThreshold = f
		case "store_path":
			cfg.StorePath = val
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
