package cmd

import (
	"github.com/caiomaz/ovoscan/internal/feature"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <image> [<image>...]",
	Short: "Shows the color features extracted from an image",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			desc, err := feature.Average(arg)
			if err != nil {
				return fail(13, "can't extract features of %s: %w", arg, err)
			}

			dominant, err := feature.Dominant(arg)
			if err != nil {
				return fail(13, "can't determine dominant color of %s: %w", arg, err)
			}

			cmd.Printf("%s: %s dominant=%s\n", arg, desc, dominant)
		}

		return nil
	},
}
