package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alxjhc/sf-airbnb/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs from the local history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		storePath := ""
		if cfg != nil {
			storePath = cfg.StorePath
		}
		st, err := store.Open(storePath)
		if err != nil {
			return err
		}
		defer st.Close()
		runs, err := st.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved runs")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %s rows=%d seed=%d  %s(%s) %s=%.4f\n",
				r.CreatedAt.Format("2006-01-02 15:04"), shortID(r.ID), r.Dataset, r.Rows,
				r.Seed, r.BestFamily, r.BestParams, r.Metric, r.FinalMetric)
		}
		return nil
	},
}

// shortID abbreviates a run id for the listing; ids shorter than eight
// characters pass through unchanged.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
}
