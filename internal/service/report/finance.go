package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/shopspring/decimal"
)

// utilizationPlaces is the precision of budget utilization fractions.
const utilizationPlaces = 4

// Finance builds the project by month matrix. Money is rounded per cell and
// every total is the sum of the rounded cells.
func (s *ReportServiceImpl) Finance(ctx context.Context, req report.FinanceRequest) (report.FinanceReport, error) {
	if err := req.Validate(); err != nil {
		return report.FinanceReport{}, err
	}
	year := s.resolveYear(req.Year)

	key := fmt.Sprintf("finance:%d:%d", year, req.Month)
	return cached(ctx, s, "finance", key, func() (report.FinanceReport, error) {
		dr := report.YearRange(year)
		if req.Month > 0 {
			dr = report.MonthRange(year, time.Month(req.Month))
		}

		rows, err := s.reportRepo.ProjectMonthHours(ctx, dr)
		if err != nil {
			return report.FinanceReport{}, err
		}
		return buildFinance(year, req.Month, rows), nil
	})
}

func buildFinance(year, month int, rows []report.ProjectMonthHours) report.FinanceReport {
	result := report.FinanceReport{Year: year, Months: []report.FinanceMonth{}}
	if month > 0 {
		result.Month = &month
	}

	for _, row := range rows {
		if row.Hours.IsZero() {
			continue
		}
		if n := len(result.Months); n == 0 || result.Months[n-1].Month != row.Month {
			result.Months = append(result.Months, report.FinanceMonth{Month: row.Month, Projects: []report.FinanceCell{}})
		}
		m := &result.Months[len(result.Months)-1]

		rates := row.Project.Rates()
		b := bonus.ForHours(row.Hours, rates).Rounded()
		cell := report.FinanceCell{
			ProjectID:        row.Project.ID,
			ProjectKey:       row.Project.ProjectID,
			ProjectName:      row.Project.Name,
			Client:           row.Project.Client,
			Month:            row.Month,
			TotalHours:       row.Hours.Total(),
			RemoteHours:      row.Hours.Remote,
			OnsiteHours:      row.Hours.Onsite,
			HourlyRate:       row.Project.HourlyRate,
			OnsiteHourlyRate: row.Project.OnsiteHourlyRate,
			BonusRate:        row.Project.BonusRate,
			RemoteBonus:      b.RemoteBonus,
			OnsiteBonus:      b.OnsiteBonus,
			BonusAmount:      b.TotalBonus,
			Revenue:          bonus.Round(bonus.RevenueForHours(row.Hours, rates)),
		}
		m.Projects = append(m.Projects, cell)
		m.TotalHours = m.TotalHours.Add(cell.TotalHours)
		m.TotalBonus = m.TotalBonus.Add(cell.BonusAmount)
		m.TotalRevenue = m.TotalRevenue.Add(cell.Revenue)
	}

	for _, m := range result.Months {
		result.TotalHours = result.TotalHours.Add(m.TotalHours)
		result.TotalBonus = result.TotalBonus.Add(m.TotalBonus)
		result.TotalRevenue = result.TotalRevenue.Add(m.TotalRevenue)
	}
	return result
}

// Revenue summarizes active projects for a year.
func (s *ReportServiceImpl) Revenue(ctx context.Context, req report.YearRequest) (report.RevenueReport, error) {
	if err := req.Validate(); err != nil {
		return report.RevenueReport{}, err
	}
	year := s.resolveYear(req.Year)

	return cached(ctx, s, "revenue", fmt.Sprintf("revenue:%d", year), func() (report.RevenueReport, error) {
		rows, err := s.reportRepo.ProjectHours(ctx, report.YearRange(year), true)
		if err != nil {
			return report.RevenueReport{}, err
		}
		return buildRevenue(year, rows), nil
	})
}

func buildRevenue(year int, rows []report.ProjectHours) report.RevenueReport {
	result := report.RevenueReport{Year: year, Projects: make([]report.RevenueProject, 0, len(rows))}

	var (
		utilizationSum   decimal.Decimal
		budgetedProjects int64
	)
	for _, row := range rows {
		p := row.Project
		total := row.Hours.Total()
		revenue := bonus.Round(bonus.RevenueForHours(row.Hours, p.Rates()))

		var utilization decimal.NullDecimal
		if p.BudgetHours.Valid && p.BudgetHours.Decimal.IsPositive() {
			u := total.Div(p.BudgetHours.Decimal)
			utilizationSum = utilizationSum.Add(u)
			budgetedProjects++
			utilization = decimal.NewNullDecimal(u.Round(utilizationPlaces))
		}

		result.Projects = append(result.Projects, report.RevenueProject{
			ID:                p.ID,
			ProjectKey:        p.ProjectID,
			Name:              p.Name,
			Client:            p.Client,
			DealValue:         p.DealValue,
			BudgetHours:       p.BudgetHours,
			TotalHours:        total,
			RemoteHours:       row.Hours.Remote,
			OnsiteHours:       row.Hours.Onsite,
			HourlyRate:        p.HourlyRate,
			OnsiteHourlyRate:  p.OnsiteHourlyRate,
			Revenue:           revenue,
			BudgetUtilization: utilization,
			Status:            p.Status,
		})

		if p.DealValue.Valid {
			result.TotalDealValue = result.TotalDealValue.Add(p.DealValue.Decimal)
		}
		result.TotalRevenue = result.TotalRevenue.Add(revenue)
	}

	result.ActiveProjects = len(rows)
	if budgetedProjects > 0 {
		avg := utilizationSum.Div(decimal.NewFromInt(budgetedProjects))
		result.AvgBudgetUtilization = decimal.NewNullDecimal(avg.Round(utilizationPlaces))
	}
	return result
}

// Employees lists hours per employee for a year, busiest first.
func (s *ReportServiceImpl) Employees(ctx context.Context, req report.YearRequest) ([]report.EmployeeUtilization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	year := s.resolveYear(req.Year)

	return cached(ctx, s, "employees", fmt.Sprintf("employees:%d", year), func() ([]report.EmployeeUtilization, error) {
		rows, err := s.reportRepo.EmployeeProjectHours(ctx, report.YearRange(year))
		if err != nil {
			return nil, err
		}
		return buildEmployees(rows), nil
	})
}

func buildEmployees(rows []report.EmployeeProjectHours) []report.EmployeeUtilization {
	index := make(map[string]int)
	result := []report.EmployeeUtilization{}

	for _, row := range rows {
		i, ok := index[row.Employee]
		if !ok {
			i = len(result)
			index[row.Employee] = i
			result = append(result, report.EmployeeUtilization{Employee: row.Employee, Projects: []report.EmployeeProject{}})
		}
		e := &result[i]
		e.Projects = append(e.Projects, report.EmployeeProject{
			ProjectID:   row.ProjectID,
			ProjectKey:  row.ProjectKey,
			ProjectName: row.ProjectName,
			Hours:       row.Hours,
		})
		e.TotalHours = e.TotalHours.Add(row.Hours)
		if row.Hours.IsPositive() {
			e.ProjectCount++
		}
	}

	for i := range result {
		slices.SortStableFunc(result[i].Projects, func(a, b report.EmployeeProject) int {
			return b.Hours.Cmp(a.Hours)
		})
	}
	slices.SortStableFunc(result, func(a, b report.EmployeeUtilization) int {
		if c := b.TotalHours.Cmp(a.TotalHours); c != 0 {
			return c
		}
		return cmp.Compare(a.Employee, b.Employee)
	})
	return result
}
