package commands

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ofxer-dev/ofxer/internal/buildinfo"
)

// log is the shared command logger. Quiet unless --verbose is given.
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "ofxer",
		Short:   "Convert German bank CSV exports to OFX",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetOutput(cmd.ErrOrStderr())
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log row-level diagnostics")

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newProfilesCommand())

	return rootCmd
}
