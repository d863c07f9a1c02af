package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alxjhc/sf-airbnb/internal/dataset"
)

var (
	insClean      bool
	insOutputPath string
	insMaxRows    int
	insDelimiter  string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <csv>",
	Short: "Profile a listings CSV and print a concise summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := dataset.DefaultLoadOptions()
		opt.MaxRows = insMaxRows
		switch insDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case ";":
			opt.Delimiter = ';'
		case "\t", "tab":
			opt.Delimiter = '\t'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", insDelimiter)
		}
		ds, err := dataset.Load(path, opt)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if insClean {
			if cfg == nil {
				return fmt.Errorf("configuration failed to load; check --config")
			}
			ds, err = dataset.Clean(ds, dataset.CleanOptions{
				Target:      cfg.Target,
				Cap:         cfg.PriceCap,
				Drop:        cfg.DropColumns,
				DeriveBools: cfg.DeriveBools,
			})
			if err != nil {
				return err
			}
			name += " (cleaned)"
		}
		md := dataset.Summarize(ds, name).Markdown()
		if insOutputPath != "" {
			if err := os.WriteFile(insOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote profile to %s\n", insOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&insClean, "clean", false, "apply the configured cleaning pass before profiling")
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
}
