package report

import (
	"strings"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUESTS
// ========================================

// YearRequest selects a calendar year. Zero means the year of the reference clock.
type YearRequest struct {
	Year int
}

func (r *YearRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Year != 0 && !validator.IsValidYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	return errs.Err()
}

// FinanceRequest selects a year, optionally narrowed to one month (1-12).
type FinanceRequest struct {
	Year  int
	Month int
}

func (r *FinanceRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Year != 0 && !validator.IsValidYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	if r.Month < 0 || r.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}
	return errs.Err()
}

type ProjectReportRequest struct {
	ProjectID int64
	// Month optionally narrows the employee breakdown (YYYY-MM).
	Month string
}

func (r *ProjectReportRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month != "" {
		if _, ok := validator.IsValidMonth(r.Month); !ok {
			errs.Add("month", "must be YYYY-MM")
		}
	}
	return errs.Err()
}

type CustomerReportRequest struct {
	ProjectID int64
	Month     string
}

func (r *CustomerReportRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs.Add("month", "is required as YYYY-MM")
	}
	return errs.Err()
}

// DashboardRequest optionally overrides the reference instant.
type DashboardRequest struct {
	AsOf *time.Time
}

const MaxNoteLength = 10000

type SaveNoteRequest struct {
	ProjectID int64  `json:"-"`
	Month     string `json:"-"`
	Note      string `json:"note"`
}

func (r *SaveNoteRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs.Add("month", "is required as YYYY-MM")
	}
	r.Note = strings.TrimSpace(r.Note)
	if len(r.Note) > MaxNoteLength {
		errs.Add("note", "must be at most 10000 characters")
	}
	return errs.Err()
}

// ========================================
// FINANCE MATRIX
// ========================================

type FinanceCell struct {
	ProjectID        int64               `json:"project_id"`
	ProjectKey       string              `json:"project_external_id"`
	ProjectName      string              `json:"project_name"`
	Client           string              `json:"client"`
	Month            string              `json:"month"`
	TotalHours       decimal.Decimal     `json:"total_hours"`
	RemoteHours      decimal.Decimal     `json:"remote_hours"`
	OnsiteHours      decimal.Decimal     `json:"onsite_hours"`
	HourlyRate       decimal.NullDecimal `json:"hourly_rate"`
	OnsiteHourlyRate decimal.NullDecimal `json:"onsite_hourly_rate"`
	BonusRate        decimal.Decimal     `json:"bonus_rate"`
	RemoteBonus      decimal.Decimal     `json:"remote_bonus"`
	OnsiteBonus      decimal.Decimal     `json:"onsite_bonus"`
	BonusAmount      decimal.Decimal     `json:"bonus_amount"`
	Revenue          decimal.Decimal     `json:"revenue"`
}

type FinanceMonth struct {
	Month        string          `json:"month"`
	Projects     []FinanceCell   `json:"projects"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	TotalBonus   decimal.Decimal `json:"total_bonus"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type FinanceReport struct {
	Year         int             `json:"year"`
	Month        *int            `json:"month,omitempty"`
	Months       []FinanceMonth  `json:"months"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	TotalBonus   decimal.Decimal `json:"total_bonus"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// FinanceProjectTotal is a finance cell summed over every month of a report.
type FinanceProjectTotal struct {
	ProjectID        int64
	ProjectKey       string
	ProjectName      string
	Client           string
	HourlyRate       decimal.NullDecimal
	OnsiteHourlyRate decimal.NullDecimal
	BonusRate        decimal.Decimal
	Hours            bonus.Hours
	Bonus            bonus.Breakdown
	Revenue          decimal.Decimal
}

// ByProject folds the matrix into one row per project, in first-seen order.
func (r FinanceReport) ByProject() []FinanceProjectTotal {
	index := make(map[int64]int)
	var totals []FinanceProjectTotal
	for _, m := range r.Months {
		for _, c := range m.Projects {
			i, ok := index[c.ProjectID]
			if !ok {
				i = len(totals)
				index[c.ProjectID] = i
				totals = append(totals, FinanceProjectTotal{
					ProjectID:        c.ProjectID,
					ProjectKey:       c.ProjectKey,
					ProjectName:      c.ProjectName,
					Client:           c.Client,
					HourlyRate:       c.HourlyRate,
					OnsiteHourlyRate: c.OnsiteHourlyRate,
					BonusRate:        c.BonusRate,
				})
			}
			t := &totals[i]
			t.Hours = t.Hours.Add(bonus.Hours{Remote: c.RemoteHours, Onsite: c.OnsiteHours})
			t.Bonus = t.Bonus.Add(bonus.Breakdown{RemoteBonus: c.RemoteBonus, OnsiteBonus: c.OnsiteBonus, TotalBonus: c.BonusAmount})
			t.Revenue = t.Revenue.Add(c.Revenue)
		}
	}
	return totals
}

// ========================================
// REVENUE KPIs
// ========================================

type RevenueProject struct {
	ID                int64               `json:"id"`
	ProjectKey        string              `json:"project_external_id"`
	Name              string              `json:"name"`
	Client            string              `json:"client"`
	DealValue         decimal.NullDecimal `json:"deal_value"`
	BudgetHours       decimal.NullDecimal `json:"budget_hours"`
	TotalHours        decimal.Decimal     `json:"total_hours"`
	RemoteHours       decimal.Decimal     `json:"remote_hours"`
	OnsiteHours       decimal.Decimal     `json:"onsite_hours"`
	HourlyRate        decimal.NullDecimal `json:"hourly_rate"`
	OnsiteHourlyRate  decimal.NullDecimal `json:"onsite_hourly_rate"`
	Revenue           decimal.Decimal     `json:"revenue"`
	BudgetUtilization decimal.NullDecimal `json:"budget_utilization"`
	Status            project.Status      `json:"status"`
}

type RevenueReport struct {
	Year                 int                 `json:"year"`
	TotalDealValue       decimal.Decimal     `json:"total_deal_value"`
	TotalRevenue         decimal.Decimal     `json:"total_revenue"`
	AvgBudgetUtilization decimal.NullDecimal `json:"avg_budget_utilization"`
	ActiveProjects       int                 `json:"active_projects"`
	Projects             []RevenueProject    `json:"projects"`
}

// ========================================
// EMPLOYEE UTILIZATION
// ========================================

type EmployeeProject struct {
	ProjectID   int64           `json:"project_id"`
	ProjectKey  string          `json:"project_external_id"`
	ProjectName string          `json:"project_name"`
	Hours       decimal.Decimal `json:"hours"`
}

type EmployeeUtilization struct {
	Employee     string            `json:"employee"`
	TotalHours   decimal.Decimal   `json:"total_hours"`
	ProjectCount int               `json:"project_count"`
	Projects     []EmployeeProject `json:"projects"`
}

// ========================================
// PROJECT DETAIL
// ========================================

type EmployeeHours struct {
	Employee string          `json:"employee"`
	Hours    decimal.Decimal `json:"hours"`
}

type ProjectInfo struct {
	ID               int64               `json:"id"`
	ProjectKey       string              `json:"project_id"`
	Name             string              `json:"name"`
	Client           string              `json:"client"`
	BudgetHours      decimal.NullDecimal `json:"budget_hours"`
	HourlyRate       decimal.NullDecimal `json:"hourly_rate"`
	OnsiteHourlyRate decimal.NullDecimal `json:"onsite_hourly_rate"`
	BonusRate        decimal.Decimal     `json:"bonus_rate"`
	Status           project.Status      `json:"status"`
}

type MonthlyBreakdown struct {
	Month       string          `json:"month"`
	Hours       decimal.Decimal `json:"hours"`
	RemoteHours decimal.Decimal `json:"remote_hours"`
	OnsiteHours decimal.Decimal `json:"onsite_hours"`
	bonus.Breakdown
}

type ProjectReport struct {
	Project           ProjectInfo         `json:"project"`
	TotalHours        decimal.Decimal     `json:"total_hours"`
	TotalBonus        decimal.Decimal     `json:"total_bonus"`
	BudgetRemaining   decimal.NullDecimal `json:"budget_remaining"`
	MonthlyBreakdown  []MonthlyBreakdown  `json:"monthly_breakdown"`
	EmployeeBreakdown []EmployeeHours     `json:"employee_breakdown"`
}

// ========================================
// CUSTOMER REPORT
// ========================================

type CustomerEntry struct {
	Date        string          `json:"date"`
	Employee    string          `json:"employee"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
}

type CustomerReport struct {
	ProjectID       int64               `json:"id"`
	ProjectKey      string              `json:"project_id"`
	ProjectName     string              `json:"project_name"`
	Client          string              `json:"client"`
	Month           string              `json:"month"`
	TotalHours      decimal.Decimal     `json:"total_hours"`
	BudgetHours     decimal.NullDecimal `json:"budget_hours"`
	HoursRemaining  decimal.NullDecimal `json:"hours_remaining"`
	Employees       []EmployeeHours     `json:"employees"`
	Entries         []CustomerEntry     `json:"entries"`
	Note            string              `json:"note"`
	ProjectManager  *string             `json:"project_manager"`
	CustomerContact *string             `json:"customer_contact"`
}

type NoteResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Month     string    `json:"month"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ========================================
// DASHBOARD
// ========================================

type Dashboard struct {
	AsOf                   string                    `json:"as_of"`
	CurrentMonth           string                    `json:"current_month"`
	ActiveProjects         int                       `json:"active_projects"`
	TotalHoursCurrentMonth decimal.Decimal           `json:"total_hours_current_month"`
	TotalBonusCurrentMonth decimal.Decimal           `json:"total_bonus_current_month"`
	Projects               []project.ProjectResponse `json:"projects"`
	YTDHours               decimal.Decimal           `json:"ytd_hours"`
	YTDBonus               decimal.Decimal           `json:"ytd_bonus"`
	YTDRevenue             decimal.Decimal           `json:"ytd_revenue"`
	ForecastHours          decimal.NullDecimal       `json:"forecast_hours"`
	ForecastBonus          decimal.NullDecimal       `json:"forecast_bonus"`
	ForecastRevenue        decimal.NullDecimal       `json:"forecast_revenue"`
}
