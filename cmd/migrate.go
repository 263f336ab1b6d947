package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chatdesk/api/config"
	"chatdesk/api/database"
	"chatdesk/api/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long: `Apply or roll back the embedded schema migrations.

Examples:
  chatdesk migrate up        # apply pending migrations
  chatdesk migrate down      # roll back the last migration
  chatdesk migrate version   # show the applied version`,
	}

	cmd.AddCommand(migrateActionCmd("up", "Apply all pending migrations", func(mg *database.Migrator) error {
		if err := mg.Up(); err != nil {
			return err
		}
		fmt.Println(color.New(color.FgGreen).Sprint("✓"), "schema is up to date")
		return nil
	}))
	cmd.AddCommand(migrateActionCmd("down", "Roll back the most recent migration", func(mg *database.Migrator) error {
		if err := mg.Down(); err != nil {
			return err
		}
		fmt.Println(color.New(color.FgYellow).Sprint("↓"), "rolled back one migration")
		return nil
	}))
	cmd.AddCommand(migrateActionCmd("version", "Print the applied migration version", func(mg *database.Migrator) error {
		version, dirty, ok, err := mg.Version()
		if err != nil {
			return err
		}
		switch {
		case !ok:
			fmt.Println(color.New(color.FgYellow).Sprint("(no migrations applied)"))
		case dirty:
			fmt.Printf("version %d %s\n", version, color.New(color.FgRed).Sprint("DIRTY"))
		default:
			fmt.Printf("version %d %s\n", version, color.New(color.FgGreen).Sprint("OK"))
		}
		return nil
	}))
	return cmd
}

func migrateActionCmd(use, short string, action func(*database.Migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadMigrate()
			if err != nil {
				return err
			}
			if _, err := logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
				return fmt.Errorf("configure logger: %w", err)
			}

			ctx := cmd.Context()
			dbClient, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer dbClient.Close()

			mg, err := database.NewMigrator(ctx, dbClient.DB)
			if err != nil {
				return err
			}
			defer mg.Close()

			return action(mg)
		},
	}
}
