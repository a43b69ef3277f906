// Package cli provides the command line interface and application wiring.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

// NewRootCommand builds the github-reporting command tree.
func NewRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "github-reporting",
		Short: "Collects GitHub issues and pull requests and reports on them.",
		Long: `github-reporting collects issues and pull requests from the configured GitHub
organizations, users and repositories into a database, and serves windowed queries,
the weekly development report and collection controls over HTTP.

Configuration is read from the environment. An optional .env file is loaded first;
variables already set in the environment take precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "Path to a .env file")

	root.AddCommand(
		newServeCommand(),
		newCollectCommand(),
		newReportCommand(),
		newMigrateCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnvFile loads path into the environment without overriding set variables.
// A missing file is an error only when it was named explicitly.
func loadEnvFile(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}
