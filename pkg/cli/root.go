// Package cli wires the section-cms commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
)

// errInvalidContent is returned by validate when the content does not pass
// the form checks. The report has already been printed.
var errInvalidContent = errors.New("content is invalid")

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "section-cms",
		Short: "Section CMS - variant-aware page sections for Hugo sites",
		Long: `section-cms edits the sections of Hugo pages. Each section picks a
variant of a section family; its stored content is deep-merged onto the
variant defaults, with required collections falling back to the defaults
when left empty.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			_ = config.LoadEnvFile()
			out := cmd.ErrOrStderr()
			if cmd == cmd.Root() || cmd.Name() == "serve" {
				out = cmd.OutOrStdout()
			}
			log.Configure(log.Config{Level: logLevel, Output: out})
			config.Init()
		},
		RunE: runServe,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	rootCmd.AddCommand(
		newServeCommand(),
		newResolveCommand(),
		newValidateCommand(),
		newCatalogCommand(),
	)
	return rootCmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(version string) int {
	if err := NewRootCommand(version).ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errInvalidContent) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
