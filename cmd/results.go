package cmd

import (
	"github.com/spf13/cobra"
)

var tailCount int

func init() {
	resultsCmd.Flags().IntVarP(&tailCount, "tail", "t", 0, "only show the most recent N results")
	rootCmd.AddCommand(resultsCmd)
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Shows the classification history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := ensureHistory()
		if err != nil {
			return err
		}

		rows, err := resultLog.ReadAll()
		if err != nil {
			return fail(8, err)
		}

		if tailCount > 0 && len(rows) > tailCount {
			rows = rows[len(rows)-tailCount:]
		}

		if len(rows) == 0 {
			cmd.Println("no results yet")
			return nil
		}

		for _, row := range rows {
			cmd.Printf("%s  %-14s  %s\n", row.ProcessedAt, row.Label, row.ImagePath)
		}

		return nil
	},
}
