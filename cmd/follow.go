package cmd

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/caiomaz/ovoscan/internal/history"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(followCmd)
}

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Streams new classification results from a running watcher",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !pidPath.IsRunning() {
			return errors.New("no watcher process found")
		}

		if !pidPath.IsOurs() {
			return sendViaIPCForeground(cmd, true, "follow")
		}

		// we are the watch process, invoked over IPC: stream rows until the
		// client hangs up or we shut down
		watcher := history.Events.Watch()
		defer watcher.Stop()

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case ev := <-watcher.Ch:
				row := ev.(history.ChangeEvent).Row
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s,%s,%s\n", row.ProcessedAt, row.ImagePath, row.Label)
				if err != nil {
					if errors.Is(err, syscall.EPIPE) {
						return nil
					}

					return err
				}
			}
		}
	},
}
