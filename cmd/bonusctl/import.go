package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/app"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
	"github.com/spf13/cobra"
)

type opener func() (*app.App, error)

func importCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import a Clockify CSV export",
		Long: `Import a Clockify "detailed" CSV export. The whole file is validated
before anything is written; rows already stored are counted as duplicates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Imports.Import(cmd.Context(), imports.ImportRequest{Filename: args[0], Content: content})
			if err != nil {
				var rowErr *timesheet.RowError
				if errors.As(err, &rowErr) {
					return fmt.Errorf("%s: %w", args[0], rowErr)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %d: %d imported, %d duplicate, %d skipped\n",
				result.BatchID, result.RowsImported, result.RowsDuplicate, len(result.RowsSkipped))
			fmt.Fprintf(out, "Projects: %d created, %d updated\n", result.ProjectsCreated, result.ProjectsUpdated)
			for _, s := range result.RowsSkipped {
				fmt.Fprintf(out, "  skipped row %d: %s %s\n", s.Row, s.Field, s.Message)
			}
			return nil
		},
	}
}
