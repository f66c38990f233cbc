// Package cli implements the scout command line: serve the HTTP API or
// answer a single question from the terminal.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "scout",
		Short:         "Answer questions from live web search results",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")

	root.AddCommand(
		newServeCommand(&cfgFile),
		newAskCommand(&cfgFile),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "scout version %s\n", Version)
			},
		},
	)
	return root
}
