package project

import (
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

var Statuses = []string{string(StatusActive), string(StatusPaused), string(StatusCompleted)}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Project is a billable engagement identified externally by its Clockify id.
// Hour and bonus totals are never stored; see Summary.
type Project struct {
	ID               int64
	ProjectID        string
	Name             string
	Client           string
	DealValue        decimal.NullDecimal
	BudgetHours      decimal.NullDecimal
	HourlyRate       decimal.NullDecimal
	OnsiteHourlyRate decimal.NullDecimal
	BonusRate        decimal.Decimal
	Status           Status
	StartDate        *time.Time
	ProjectManager   *string
	CustomerContact  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p Project) Rates() bonus.Rates {
	return bonus.Rates{
		HourlyRate:       p.HourlyRate,
		OnsiteHourlyRate: p.OnsiteHourlyRate,
		BonusRate:        p.BonusRate,
	}
}

// Summary is a project with its all-time hours.
type Summary struct {
	Project
	Hours bonus.Hours
}
