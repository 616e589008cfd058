package cmd

import (
	"errors"

	"github.com/caiomaz/ovoscan/internal/feature"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the state of a running watcher",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !pidPath.IsRunning() {
			return errors.New("no watcher process found")
		}

		if !pidPath.IsOurs() {
			return sendViaIPC(cmd)
		}

		cmd.Println("watching =", viper.GetString("drop-dir"))
		cmd.Println("processed =", processed.Load())

		trainedClassifier.Table.Each(func(label string, desc feature.Descriptor) {
			cmd.Printf("%s = %s\n", label, desc)
		})

		return nil
	},
}
