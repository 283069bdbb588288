package timeentry

import (
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
	"github.com/shopspring/decimal"
)

// TimeEntry is one imported line of work. Entries are immutable once stored.
type TimeEntry struct {
	ID            int64
	ProjectID     int64
	ImportBatchID int64
	Date          time.Time
	Duration      decimal.Decimal
	Employee      string
	Description   string
	StartTime     timesheet.Clock
	EndTime       timesheet.Clock
	Month         string
	IsOnsite      bool
	CreatedAt     time.Time

	// Joined fields
	ProjectExternalID string
	ProjectName       string
}
