package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alxjhc/sf-airbnb/internal/model"
	"github.com/alxjhc/sf-airbnb/internal/tune"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model families and their hyperparameter grids",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]model.Grid{}
		if cfg != nil {
			overrides = gridOverrides()
		}
		for _, fam := range model.Registry() {
			grid := tune.GridFor(fam, overrides)
			points := tune.Expand(grid)
			fmt.Printf("- %s (%d grid points)\n", fam.Name, len(points))
			names := make([]string, 0, len(grid))
			for n := range grid {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				vals := make([]string, len(grid[n]))
				for i, v := range grid[n] {
					vals[i] = fmt.Sprintf("%g", v)
				}
				fmt.Printf("    %s: %s\n", n, strings.Join(vals, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
