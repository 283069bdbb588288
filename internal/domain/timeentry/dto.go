package timeentry

import (
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 500
	MaxLimit     = 5000
)

type ListFilter struct {
	ProjectID *int64
	Month     *string
	Employee  *string
	Limit     int
	Offset    int
}

// Validate checks the filter and applies the default limit.
func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		errs.Add("limit", "must be between 1 and 5000")
	}
	if f.Offset < 0 {
		errs.Add("offset", "must be non-negative")
	}
	if f.Month != nil {
		if _, ok := validator.IsValidMonth(*f.Month); !ok {
			errs.Add("month", "must be YYYY-MM")
		}
	}

	return errs.Err()
}

type TimeEntryResponse struct {
	ID            int64           `json:"id"`
	ProjectID     int64           `json:"project_id"`
	ProjectKey    string          `json:"project_external_id"`
	ProjectName   string          `json:"project_name"`
	ImportBatchID int64           `json:"import_batch_id"`
	Date          string          `json:"date"`
	Duration      decimal.Decimal `json:"duration_decimal"`
	Employee      string          `json:"employee"`
	Description   string          `json:"description"`
	StartTime     *string         `json:"start_time"`
	EndTime       *string         `json:"end_time"`
	Month         string          `json:"month"`
	IsOnsite      bool            `json:"is_onsite"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ListTimeEntriesResponse struct {
	Entries []TimeEntryResponse `json:"entries"`
	Total   int64               `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

func NewTimeEntryResponse(e TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:            e.ID,
		ProjectID:     e.ProjectID,
		ProjectKey:    e.ProjectExternalID,
		ProjectName:   e.ProjectName,
		ImportBatchID: e.ImportBatchID,
		Date:          e.Date.Format("2006-01-02"),
		Duration:      e.Duration,
		Employee:      e.Employee,
		Description:   e.Description,
		Month:         e.Month,
		IsOnsite:      e.IsOnsite,
		CreatedAt:     e.CreatedAt,
	}
	if e.StartTime.Valid {
		s := e.StartTime.String()
		resp.StartTime = &s
	}
	if e.EndTime.Valid {
		s := e.EndTime.String()
		resp.EndTime = &s
	}
	return resp
}
