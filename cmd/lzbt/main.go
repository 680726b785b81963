// Command lzbt compresses and decompresses data with the match finders and
// encoders in github.com/lzkit/pack, and shows the raw match lists the
// binary tree produces.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "lzbt COMMAND [ARG...]",
		Short:         "LZ77 compression with binary-tree match finding",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(cmd.ErrOrStderr())
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Enable debug logging")

	cmd.AddCommand(
		newCompressCommand(),
		newDecompressCommand(),
		newMatchesCommand(),
	)
	return cmd
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lzbt:", err)
		os.Exit(1)
	}
}
