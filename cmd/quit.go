package cmd

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Tells a running watcher process to quit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if pidPath.IsRunning() {
			if pidPath.IsOurs() {
				log.Info().Msg("received request to quit")
				cancelFunc()
				return nil
			}

			return sendViaIPC(cmd)
		}

		return errors.New("no watcher process found")
	},
}

func init() {
	rootCmd.AddCommand(quitCmd)
}
