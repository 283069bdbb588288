package report

import (
	"context"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// Dashboard combines current-month figures for active projects with
// year-to-date totals and a linear full-year forecast. Both halves are fetched
// in parallel from one shared snapshot so they always agree.
func (s *ReportServiceImpl) Dashboard(ctx context.Context, req report.DashboardRequest) (report.Dashboard, error) {
	asOf := s.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	ytdRange := report.DateRange{From: report.YearRange(today.Year()).From, To: today.AddDate(0, 0, 1)}

	var current, ytd []report.ProjectHours

	err := s.tx.WithinSharedSnapshot(ctx,
		func(ctx context.Context) error {
			rows, err := s.reportRepo.ProjectHours(ctx, report.MonthRange(today.Year(), today.Month()), true)
			if err != nil {
				return err
			}
			current = rows
			return nil
		},
		func(ctx context.Context) error {
			rows, err := s.reportRepo.ProjectHours(ctx, ytdRange, false)
			if err != nil {
				return err
			}
			ytd = rows
			return nil
		},
	)
	if err != nil {
		return report.Dashboard{}, err
	}

	result := report.Dashboard{
		AsOf:           today.Format("2006-01-02"),
		CurrentMonth:   today.Format("2006-01"),
		ActiveProjects: len(current),
		Projects:       make([]project.ProjectResponse, 0, len(current)),
	}
	for _, row := range current {
		resp := project.NewProjectResponse(project.Summary{Project: row.Project, Hours: row.Hours})
		resp.BonusAmount = bonus.Round(resp.BonusAmount)
		result.Projects = append(result.Projects, resp)
		result.TotalHoursCurrentMonth = result.TotalHoursCurrentMonth.Add(resp.TotalHours)
		result.TotalBonusCurrentMonth = result.TotalBonusCurrentMonth.Add(resp.BonusAmount)
	}

	for _, row := range ytd {
		rates := row.Project.Rates()
		result.YTDHours = result.YTDHours.Add(row.Hours.Total())
		result.YTDBonus = result.YTDBonus.Add(bonus.Round(bonus.ForHours(row.Hours, rates).TotalBonus))
		result.YTDRevenue = result.YTDRevenue.Add(bonus.Round(bonus.RevenueForHours(row.Hours, rates)))
	}

	if !result.YTDHours.IsZero() {
		elapsed := decimal.NewFromInt(int64(today.Month()))
		result.ForecastHours = forecast(result.YTDHours, elapsed)
		result.ForecastBonus = forecast(result.YTDBonus, elapsed)
		result.ForecastRevenue = forecast(result.YTDRevenue, elapsed)
	}

	return result, nil
}

func forecast(ytd, monthsElapsed decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(bonus.Round(ytd.Mul(monthsPerYear).Div(monthsElapsed)))
}
