// Package cmd holds the chatdesk command line: the API server and schema
// migrations.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chatdesk/api/config"
	"chatdesk/api/logger"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chatdesk",
		Short: "Chatdesk API - AI customer support widget backend",
		Long: `Chatdesk serves the embeddable chat widget, captures leads and backs the
business owner dashboard.

Running without a subcommand starts the API server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(ServeCmd())
	root.AddCommand(MigrateCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if _, err := logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("configure logger: %w", err)
	}
	return cfg, nil
}
