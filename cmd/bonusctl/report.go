package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/export"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/spf13/cobra"
)

func reportCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reports",
	}
	cmd.AddCommand(financeCommand(open))
	return cmd
}

func financeCommand(open opener) *cobra.Command {
	var (
		year   int
		month  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "finance",
		Short: "Print bonus and revenue per project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				r, err := a.Reports.Finance(cmd.Context(), report.FinanceRequest{Year: year, Month: month})
				if err != nil {
					return err
				}
				return printFinance(out, r)
			case "json":
				r, err := a.Reports.Finance(cmd.Context(), report.FinanceRequest{Year: year, Month: month})
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			case "csv":
				y := year
				if y == 0 {
					y = time.Now().Year()
				}
				period, err := export.ParsePeriod(y, month)
				if err != nil {
					return err
				}
				file, err := a.Exports.Finance(cmd.Context(), export.FinanceExportRequest{Format: export.FormatCSV, Period: period})
				if err != nil {
					return err
				}
				_, err = out.Write(file.Body)
				return err
			default:
				return fmt.Errorf("unknown format %q: use table, json or csv", format)
			}
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Report year (default: current year)")
	cmd.Flags().IntVarP(&month, "month", "m", 0, "Restrict to one month (1-12)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv")
	return cmd
}

func printFinance(w io.Writer, r report.FinanceReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Project\tClient\tRemote h\tOnsite h\tHours\tBonus\tRevenue\t\n")
	for _, p := range r.ByProject() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.ProjectName, p.Client,
			p.Hours.Remote.StringFixed(2), p.Hours.Onsite.StringFixed(2), p.Hours.Total().StringFixed(2),
			p.Bonus.TotalBonus.StringFixed(2), p.Revenue.StringFixed(2))
	}
	fmt.Fprintf(tw, "Total\t\t\t\t%s\t%s\t%s\t\n",
		r.TotalHours.StringFixed(2), r.TotalBonus.StringFixed(2), r.TotalRevenue.StringFixed(2))
	return tw.Flush()
}
