package cmd

import (
	"fmt"

	"github.com/ristryder/ts2ass"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <input>",
	Short: "List the caption streams of a transport stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	_, logger, cfgErr := loadConfig()
	if cfgErr != nil {
		return cfgErr
	}

	transportStreamFile, openErr := ts2ass.NewTransportStreamFile(args[0], ts2ass.TransportStreamFileOptLogger(logger))
	if openErr != nil {
		return openErr
	}

	defer transportStreamFile.Close()

	streams, streamsErr := transportStreamFile.CaptionStreams(cmd.Context())
	if streamsErr != nil {
		return streamsErr
	}

	out := cmd.OutOrStdout()
	if len(streams) == 0 {
		fmt.Fprintln(out, "No caption streams found.")

		return nil
	}

	for _, stream := range streams {
		fmt.Fprintf(out, "PID %d (0x%04X)  program %d  component tag 0x%02X\n",
			stream.PID, stream.PID, stream.ProgramNumber, stream.ComponentTag)
	}

	return nil
}
