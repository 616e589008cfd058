package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/caiomaz/ovoscan/internal/menu"
	"github.com/caiomaz/ovoscan/pkg/ipc"
	"github.com/caiomaz/ovoscan/pkg/util"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(menuCmd)
}

var menuCmd = &cobra.Command{
	Use:     "menu",
	Short:   "Displays a tray menu showing classification results",
	PreRunE: ensureWatchRunning,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m := &menu.Menu{Cmd: rootCmd}
		for _, name := range []string{"results", "status", "quit"} {
			m.Add(name, []string{name})
		}

		go relayResults(cmd, m)

		m.Show(cmd.Context(), &log.Logger)
		return nil
	},
}

// relayResults follows the watcher over IPC and surfaces each new result in
// the tray.
func relayResults(cmd *cobra.Command, m *menu.Menu) {
	defer util.LogRecover()

	client := &ipc.Client{
		Foreground: true,
		RespCB: func(line string) bool {
			m.SetStatus(strings.TrimSpace(line))
			return true
		},
	}

	go func() {
		<-cmd.Context().Done()
		client.Close()
	}()

	err := client.Send(viper.GetString("sockpath"), "follow")
	if err != nil {
		log.Warn().Err(err).Msg("unable to follow watcher results")
	}
}

func ensureWatchRunning(cmd *cobra.Command, _ []string) error {
	if pidPath.IsRunning() && !pidPath.IsOurs() {
		// watch is already executing in the background
		return nil
	}

	watch := exec.Command(os.Args[0], "watch")
	err := watch.Start()
	if err != nil {
		return fmt.Errorf("unable to start %s watch: %w", os.Args[0], err)
	}

	err = watch.Process.Release()
	if err != nil {
		return fmt.Errorf("unable to release watch process: %w", err)
	}

	// wait a moment for the socket to be ready...
	sockPath := viper.GetString("sockpath")
	for i := 0; i < 10; i += 1 {
		time.Sleep(50 * time.Millisecond)
		_, err := os.Stat(sockPath)
		if err == nil {
			return nil
		}

		if !os.IsNotExist(err) {
			return fmt.Errorf("unable to stat %s: %w", sockPath, err)
		}
	}

	return fmt.Errorf("unable to start background watch process")
}
