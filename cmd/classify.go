package cmd

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <image> [<image>...]",
	Short: "Classifies egg photos by their average color",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if trainedClassifier == nil && pidPath.IsRunning() && !pidPath.IsOurs() {
			// a watch process already holds a trained table: let it do the work
			return sendMsgViaIPC(cmd, "classify "+strings.Join(absolutize(args), " "))
		}

		err := ensureClassifier()
		if err != nil {
			return err
		}

		err = ensureHistory()
		if err != nil {
			return err
		}

		failed := 0
		for _, arg := range args {
			result, err := trainedClassifier.Classify(arg)
			if err != nil {
				cmd.PrintErrf("%s: unclassifiable: %v\n", arg, err)
				failed++
				continue
			}

			cmd.Printf("%s: %s\n", arg, result)

			err = resultLog.Append(result)
			if err != nil {
				log.Warn().Err(err).Str("image", arg).Msg("unable to record result")
			}
		}

		if failed > 0 {
			return fail(10, "%d of %d images could not be classified", failed, len(args))
		}

		return nil
	},
}

// absolutize resolves args against our working directory since a remote
// watch process has its own, quoting them for shellwords on the far side.
func absolutize(args []string) []string {
	abs := make([]string, len(args))
	for i, arg := range args {
		pathname, err := filepath.Abs(arg)
		if err != nil {
			pathname = arg
		}
		abs[i] = strconv.Quote(pathname)
	}
	return abs
}
