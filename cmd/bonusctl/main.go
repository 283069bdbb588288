// Command bonusctl runs migrations, imports and reports from the shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/app"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/config"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "bonusctl",
		Short:        "Bonus tracker administration",
		Long:         `bonusctl imports Clockify CSV exports and prints bonus reports against the bonus tracker database.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	setup := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		level := cfg.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	// open loads configuration and wires the services.
	open := func() (*app.App, error) {
		cfg, logger, err := setup()
		if err != nil {
			return nil, err
		}
		return app.New(cfg, logger)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := setup()
				if err != nil {
					return err
				}
				if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			},
		},
		importCommand(open),
		reportCommand(open),
	)
	return root
}
