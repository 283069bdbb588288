package export

import (
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type FinanceExportRequest struct {
	Format Format
	Period Period
}

func (r *FinanceExportRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Format != FormatCSV && r.Format != FormatJSON {
		errs.Add("format", "must be csv or json")
	}
	switch r.Period.Kind {
	case PeriodYear, PeriodMonth:
		if !validator.IsValidYear(r.Period.Year) {
			errs.Add("year", "year must be between 2000 and 2100")
		}
		if r.Period.Kind == PeriodMonth && (r.Period.Month < 1 || r.Period.Month > 12) {
			errs.Add("month", "month must be between 1 and 12")
		}
	default:
		errs.Add("period", "must be a year or a month")
	}
	return errs.Err()
}

type CustomerExportRequest struct {
	Format    Format
	ProjectID int64
	Month     string
}

func (r *CustomerExportRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Format != FormatCSV && r.Format != FormatJSON {
		errs.Add("format", "must be csv or json")
	}
	if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs.Add("month", "is required as YYYY-MM")
	}
	return errs.Err()
}

// FinanceRow is one project of a finance export, summed over the period.
type FinanceRow struct {
	ProjectID        string              `json:"project_id"`
	ProjectName      string              `json:"project_name"`
	Client           string              `json:"client"`
	HourlyRate       decimal.NullDecimal `json:"hourly_rate"`
	OnsiteHourlyRate decimal.NullDecimal `json:"onsite_hourly_rate"`
	BonusRate        decimal.Decimal     `json:"bonus_rate"`
	RemoteHours      decimal.Decimal     `json:"remote_hours"`
	OnsiteHours      decimal.Decimal     `json:"onsite_hours"`
	TotalHours       decimal.Decimal     `json:"total_hours"`
	Bonus            decimal.Decimal     `json:"bonus"`
	Revenue          decimal.Decimal     `json:"revenue"`
}

type FinanceExport struct {
	Period       string          `json:"period"`
	Projects     []FinanceRow    `json:"projects"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	TotalBonus   decimal.Decimal `json:"total_bonus"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
