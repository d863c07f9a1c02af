package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Seed         int64   `mapstructure:"seed" yaml:"seed"`
	TrainRatio   float64 `mapstructure:"train_ratio" yaml:"train_ratio"`
	Folds        int     `mapstructure:"folds" yaml:"folds"`
	StratifyBins int     `mapstructure:"stratify_bins" yaml:"stratify_bins"`
	Metric       string  `mapstructure:"metric" yaml:"metric"`
	Workers      int     `mapstructure:"workers" yaml:"workers"`

	// Dataset cleaning
	Target      string   `mapstructure:"target" yaml:"target"`
	PriceCap    float64  `mapstructure:"price_cap" yaml:"price_cap"`
	DropColumns []string `mapstructure:"drop_columns" yaml:"drop_columns"`
	DeriveBools []string `mapstructure:"derive_bools" yaml:"derive_bools"`

	// Feature pipeline
	ImputePredictors []string `mapstructure:"impute_predictors" yaml:"impute_predictors"`
	RareThreshold    float64  `mapstructure:"rare_threshold" yaml:"rare_threshold"`

	// Per-family hyperparameter grid overrides. Family name -> parameter ->
	// enumerated values. Families absent here use their default grids.
	Grids map[string]map[string][]float64 `mapstructure:"grids" yaml:"grids"`

	// Run history database path (empty = ~/.sf-airbnb/runs.db)
	StorePath string `mapstructure:"store_path" yaml:"store_path"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.sf-airbnb/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".sf-airbnb")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SF_PRICER")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("seed", 42)
	v.SetDefault("train_ratio", 0.8)
	v.SetDefault("folds", 10)
	v.SetDefault("stratify_bins", 4)
	v.SetDefault("metric", "rmse")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("target", "price")
	v.SetDefault("price_cap", 1000)
	v.SetDefault("drop_columns", []string{})
	v.SetDefault("derive_bools", []string{})
	v.SetDefault("impute_predictors", []string{})
	v.SetDefault("rare_threshold", 0.01)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".sf-airbnb")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no run could use. Checked before any data is
// touched so misconfiguration fails fast.
func (c *Global) Validate() error {
	if c.TrainRatio <= 0 || c.TrainRatio >= 1 {
		return fmt.Errorf("train_ratio must be in (0,1), got %g", c.TrainRatio)
	}
	if c.Folds < 2 {
		return fmt.Errorf("folds must be >= 2, got %d", c.Folds)
	}
	if c.StratifyBins < 1 {
		return fmt.Errorf("stratify_bins must be >= 1, got %d", c.StratifyBins)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Target == "" {
		return fmt.Errorf("target column must be set")
	}
	if c.PriceCap <= 0 {
		return fmt.Errorf("price_cap must be positive, got %g", c.PriceCap)
	}
	return nil
}
