package cmd

import (
	"os"

	"github.com/caiomaz/ovoscan/pkg/dropwatch"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/atomic"
)

// processed counts classifications completed by this watch process; exposed
// through the status command.
var processed = atomic.NewInt64(0)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watches the drop directory and classifies photos as they appear",
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := pidPath.CheckAndSet()
		if err != nil {
			return fail(5, err)
		}

		err = ensureClassifier()
		if err != nil {
			return err
		}

		err = ensureHistory()
		if err != nil {
			return err
		}

		err = ipcServer.Start(cmd.Context(), &log.Logger, viper.GetString("sockpath"), rootCmd)
		if err != nil {
			return fail(6, err)
		}

		dir := viper.GetString("drop-dir")
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return fail(7, "unable to create %s: %w", dir, err)
		}

		watcher := &dropwatch.Watcher{Handle: classifyDropped}
		err = watcher.Watch(cmd.Context(), &log.Logger, dir)
		if err != nil {
			return fail(7, err)
		}

		log.Info().Str("dir", dir).Int("classes", trainedClassifier.Table.Len()).Msg("watching")
		<-cmd.Context().Done()
		return nil
	},
}

func classifyDropped(pathname string) {
	result, err := trainedClassifier.Classify(pathname)
	if err != nil {
		// non-image files land here as well: expected, not an abort
		log.Warn().Err(err).Str("image", pathname).Msg("dropped file not classified")
		return
	}

	processed.Inc()
	log.Info().Str("image", pathname).Str("label", result.Label).
		Float64("distance", result.Distance).Msg("classified")

	err = resultLog.Append(result)
	if err != nil {
		log.Error().Err(err).Str("image", pathname).Msg("unable to record result")
	}
}
