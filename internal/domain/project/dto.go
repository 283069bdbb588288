package project

import (
	"strings"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxTextLength bounds names and contact fields in characters.
const MaxTextLength = 255

// OptionalDecimal tells an absent JSON field apart from an explicit null,
// which clears the stored amount.
type OptionalDecimal struct {
	Set   bool
	Value decimal.NullDecimal
}

func (o *OptionalDecimal) UnmarshalJSON(b []byte) error {
	o.Set = true
	return o.Value.UnmarshalJSON(b)
}

// SetDecimal returns a present OptionalDecimal holding d.
func SetDecimal(d decimal.Decimal) OptionalDecimal {
	return OptionalDecimal{Set: true, Value: decimal.NewNullDecimal(d)}
}

// Cleared returns a present OptionalDecimal holding null.
func Cleared() OptionalDecimal {
	return OptionalDecimal{Set: true}
}

type ListFilter struct {
	Status *Status
}

type CreateProjectRequest struct {
	ProjectID        string              `json:"project_id"`
	Name             string              `json:"name"`
	Client           string              `json:"client"`
	DealValue        decimal.NullDecimal `json:"deal_value"`
	BudgetHours      decimal.NullDecimal `json:"budget_hours"`
	HourlyRate       decimal.NullDecimal `json:"hourly_rate"`
	OnsiteHourlyRate decimal.NullDecimal `json:"onsite_hourly_rate"`
	BonusRate        *decimal.Decimal    `json:"bonus_rate,omitempty"`
	Status           Status              `json:"status,omitempty"`
	StartDate        *string             `json:"start_date,omitempty"`
	ProjectManager   *string             `json:"project_manager,omitempty"`
	CustomerContact  *string             `json:"customer_contact,omitempty"`
}

func (r *CreateProjectRequest) Validate() error {
	var errs validator.ValidationErrors

	r.ProjectID = strings.TrimSpace(r.ProjectID)
	if validator.IsEmpty(r.ProjectID) {
		errs.Add("project_id", "is required")
	} else if len(r.ProjectID) > timesheet.MaxProjectIDLength {
		errs.Add("project_id", "must be at most 50 characters")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "is required")
	}
	validateText(&errs, "name", &r.Name)
	validateText(&errs, "client", &r.Client)
	validateText(&errs, "project_manager", r.ProjectManager)
	validateText(&errs, "customer_contact", r.CustomerContact)
	validateFinancials(&errs, r.DealValue, r.BudgetHours, r.HourlyRate, r.OnsiteHourlyRate, r.BonusRate)
	if r.Status != "" && !r.Status.Valid() {
		errs.Add("status", "must be one of active, paused, completed")
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("start_date", "must be YYYY-MM-DD")
		}
	}

	return errs.Err()
}

type UpdateProjectRequest struct {
	ID               int64               `json:"-"`
	Name             *string             `json:"name,omitempty"`
	Client           *string             `json:"client,omitempty"`
	DealValue        OptionalDecimal     `json:"deal_value"`
	BudgetHours      OptionalDecimal     `json:"budget_hours"`
	HourlyRate       OptionalDecimal     `json:"hourly_rate"`
	OnsiteHourlyRate OptionalDecimal     `json:"onsite_hourly_rate"`
	BonusRate        *decimal.Decimal    `json:"bonus_rate,omitempty"`
	Status           *Status             `json:"status,omitempty"`
	StartDate        *string             `json:"start_date,omitempty"`
	ProjectManager   *string             `json:"project_manager,omitempty"`
	CustomerContact  *string             `json:"customer_contact,omitempty"`
}

func (r *UpdateProjectRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "must not be empty")
	}
	validateText(&errs, "name", r.Name)
	validateText(&errs, "client", r.Client)
	validateText(&errs, "project_manager", r.ProjectManager)
	validateText(&errs, "customer_contact", r.CustomerContact)
	validateFinancials(&errs, r.DealValue.Value, r.BudgetHours.Value, r.HourlyRate.Value, r.OnsiteHourlyRate.Value, r.BonusRate)
	if r.Status != nil && !r.Status.Valid() {
		errs.Add("status", "must be one of active, paused, completed")
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("start_date", "must be YYYY-MM-DD")
		}
	}

	return errs.Err()
}

// Apply merges the set fields of r into p. Absent money fields keep their
// value and null ones are cleared.
func (r *UpdateProjectRequest) Apply(p *Project) {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Client != nil {
		p.Client = strings.TrimSpace(*r.Client)
	}
	if r.DealValue.Set {
		p.DealValue = r.DealValue.Value
	}
	if r.BudgetHours.Set {
		p.BudgetHours = r.BudgetHours.Value
	}
	if r.HourlyRate.Set {
		p.HourlyRate = r.HourlyRate.Value
	}
	if r.OnsiteHourlyRate.Set {
		p.OnsiteHourlyRate = r.OnsiteHourlyRate.Value
	}
	if r.BonusRate != nil {
		p.BonusRate = *r.BonusRate
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.StartDate != nil {
		if d, ok := validator.IsValidDate(*r.StartDate); ok {
			p.StartDate = &d
		}
	}
	if r.ProjectManager != nil {
		p.ProjectManager = r.ProjectManager
	}
	if r.CustomerContact != nil {
		p.CustomerContact = r.CustomerContact
	}
}

func validateText(errs *validator.ValidationErrors, field string, value *string) {
	if value != nil && !validator.HasMaxLength(strings.TrimSpace(*value), MaxTextLength) {
		errs.Add(field, "must be at most 255 characters")
	}
}

func validateFinancials(errs *validator.ValidationErrors, dealValue, budgetHours, hourlyRate, onsiteRate decimal.NullDecimal, bonusRate *decimal.Decimal) {
	// precision matches the NUMERIC columns in the projects table
	amounts := []struct {
		field     string
		value     decimal.NullDecimal
		precision int32
	}{
		{"deal_value", dealValue, 14},
		{"budget_hours", budgetHours, 10},
		{"hourly_rate", hourlyRate, 10},
		{"onsite_hourly_rate", onsiteRate, 10},
	}
	for _, a := range amounts {
		switch {
		case !validator.IsNonNegative(a.value):
			errs.Add(a.field, "must be non-negative")
		case !validator.FitsNumeric(a.value, a.precision, 2):
			errs.Add(a.field, "is too large")
		}
	}
	if bonusRate != nil && !validator.IsFraction(*bonusRate) {
		errs.Add("bonus_rate", "must be between 0 and 1")
	}
}

type BulkStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status Status  `json:"status"`
}

func (r *BulkStatusRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.IDs) == 0 {
		errs.Add("ids", "must contain at least one id")
	}
	if !r.Status.Valid() {
		errs.Add("status", "must be one of active, paused, completed")
	}
	return errs.Err()
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (r *BulkDeleteRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.IDs) == 0 {
		errs.Add("ids", "must contain at least one id")
	}
	return errs.Err()
}

type BulkResult struct {
	Affected int64 `json:"affected"`
}

type ProjectResponse struct {
	ID               int64               `json:"id"`
	ProjectID        string              `json:"project_id"`
	Name             string              `json:"name"`
	Client           string              `json:"client"`
	DealValue        decimal.NullDecimal `json:"deal_value"`
	BudgetHours      decimal.NullDecimal `json:"budget_hours"`
	HourlyRate       decimal.NullDecimal `json:"hourly_rate"`
	OnsiteHourlyRate decimal.NullDecimal `json:"onsite_hourly_rate"`
	BonusRate        decimal.Decimal     `json:"bonus_rate"`
	Status           Status              `json:"status"`
	StartDate        *string             `json:"start_date"`
	ProjectManager   *string             `json:"project_manager"`
	CustomerContact  *string             `json:"customer_contact"`
	TotalHours       decimal.Decimal     `json:"total_hours"`
	RemoteHours      decimal.Decimal     `json:"remote_hours"`
	OnsiteHours      decimal.Decimal     `json:"onsite_hours"`
	BonusAmount      decimal.Decimal     `json:"bonus_amount"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewProjectResponse projects the computed totals of s.
func NewProjectResponse(s Summary) ProjectResponse {
	resp := ProjectResponse{
		ID:               s.ID,
		ProjectID:        s.ProjectID,
		Name:             s.Name,
		Client:           s.Client,
		DealValue:        s.DealValue,
		BudgetHours:      s.BudgetHours,
		HourlyRate:       s.HourlyRate,
		OnsiteHourlyRate: s.OnsiteHourlyRate,
		BonusRate:        s.BonusRate,
		Status:           s.Status,
		ProjectManager:   s.ProjectManager,
		CustomerContact:  s.CustomerContact,
		TotalHours:       s.Hours.Total(),
		RemoteHours:      s.Hours.Remote,
		OnsiteHours:      s.Hours.Onsite,
		BonusAmount:      bonus.ForHours(s.Hours, s.Rates()).TotalBonus,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.StartDate != nil {
		d := s.StartDate.Format("2006-01-02")
		resp.StartDate = &d
	}
	return resp
}
