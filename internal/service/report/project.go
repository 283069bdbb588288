package report

import (
	"context"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/shopspring/decimal"
)

// remaining returns budget minus used, or null when no budget is set.
func remaining(budget decimal.NullDecimal, used decimal.Decimal) decimal.NullDecimal {
	if !budget.Valid || budget.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(budget.Decimal.Sub(used))
}

func (s *ReportServiceImpl) ProjectReport(ctx context.Context, req report.ProjectReportRequest) (report.ProjectReport, error) {
	if err := req.Validate(); err != nil {
		return report.ProjectReport{}, err
	}

	var (
		p         project.Project
		months    []report.MonthHours
		employees []report.EmployeeHours
	)
	err := s.tx.WithinSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if p, err = s.reportRepo.GetProject(ctx, req.ProjectID); err != nil {
			return err
		}
		if months, err = s.reportRepo.ProjectMonthlyHours(ctx, req.ProjectID); err != nil {
			return err
		}
		employees, err = s.reportRepo.ProjectEmployeeHours(ctx, req.ProjectID, req.Month)
		return err
	})
	if err != nil {
		return report.ProjectReport{}, err
	}

	result := report.ProjectReport{
		Project: report.ProjectInfo{
			ID:               p.ID,
			ProjectKey:       p.ProjectID,
			Name:             p.Name,
			Client:           p.Client,
			BudgetHours:      p.BudgetHours,
			HourlyRate:       p.HourlyRate,
			OnsiteHourlyRate: p.OnsiteHourlyRate,
			BonusRate:        p.BonusRate,
			Status:           p.Status,
		},
		MonthlyBreakdown:  make([]report.MonthlyBreakdown, 0, len(months)),
		EmployeeBreakdown: employees,
	}
	for _, m := range months {
		b := bonus.ForHours(m.Hours, p.Rates()).Rounded()
		result.MonthlyBreakdown = append(result.MonthlyBreakdown, report.MonthlyBreakdown{
			Month:       m.Month,
			Hours:       m.Hours.Total(),
			RemoteHours: m.Hours.Remote,
			OnsiteHours: m.Hours.Onsite,
			Breakdown:   b,
		})
		result.TotalHours = result.TotalHours.Add(m.Hours.Total())
		result.TotalBonus = result.TotalBonus.Add(b.TotalBonus)
	}
	result.BudgetRemaining = remaining(p.BudgetHours, result.TotalHours)

	return result, nil
}

func (s *ReportServiceImpl) CustomerReport(ctx context.Context, req report.CustomerReportRequest) (report.CustomerReport, error) {
	if err := req.Validate(); err != nil {
		return report.CustomerReport{}, err
	}

	var (
		p         project.Project
		employees []report.EmployeeHours
		entries   []report.EntryLine
		allTime   decimal.Decimal
		note      report.CustomerReportNote
	)
	err := s.tx.WithinSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if p, err = s.reportRepo.GetProject(ctx, req.ProjectID); err != nil {
			return err
		}
		if employees, err = s.reportRepo.ProjectEmployeeHours(ctx, req.ProjectID, req.Month); err != nil {
			return err
		}
		if entries, err = s.reportRepo.ProjectEntries(ctx, req.ProjectID, req.Month); err != nil {
			return err
		}
		if allTime, err = s.reportRepo.ProjectTotalHours(ctx, req.ProjectID, ""); err != nil {
			return err
		}
		note, _, err = s.reportRepo.GetNote(ctx, req.ProjectID, req.Month)
		return err
	})
	if err != nil {
		return report.CustomerReport{}, err
	}

	result := report.CustomerReport{
		ProjectID:       p.ID,
		ProjectKey:      p.ProjectID,
		ProjectName:     p.Name,
		Client:          p.Client,
		Month:           req.Month,
		BudgetHours:     p.BudgetHours,
		HoursRemaining:  remaining(p.BudgetHours, allTime),
		Employees:       employees,
		Entries:         make([]report.CustomerEntry, 0, len(entries)),
		Note:            note.Note,
		ProjectManager:  p.ProjectManager,
		CustomerContact: p.CustomerContact,
	}
	for _, e := range employees {
		result.TotalHours = result.TotalHours.Add(e.Hours)
	}
	for _, e := range entries {
		result.Entries = append(result.Entries, report.CustomerEntry{
			Date:        e.Date.Format("2006-01-02"),
			Employee:    e.Employee,
			Description: e.Description,
			Hours:       e.Hours,
		})
	}

	return result, nil
}
