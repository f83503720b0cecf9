// cr2 drives Commit-Reveal² protocol simulations: a direct run against the
// authoritative state machine, a hybrid run through a leader and ledger
// contract, and a fairness analysis of the reveal-order algorithm over many
// independent runs.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "cr2",
	Short: "commit-reveal² randomness beacon simulations",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "print debug logs")
	rootCmd.AddCommand(directCmd)
	rootCmd.AddCommand(hybridCmd)
	rootCmd.AddCommand(fairnessCmd)
}

func mainLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
