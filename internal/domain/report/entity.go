package report

import (
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/shopspring/decimal"
)

// ProjectHours is one project with the hours worked in a date range.
type ProjectHours struct {
	Project project.Project
	Hours   bonus.Hours
}

// ProjectMonthHours is one bucket of the finance matrix.
type ProjectMonthHours struct {
	Project project.Project
	Month   string
	Hours   bonus.Hours
}

type MonthHours struct {
	Month string
	Hours bonus.Hours
}

type EmployeeProjectHours struct {
	Employee    string
	ProjectID   int64
	ProjectKey  string
	ProjectName string
	Hours       decimal.Decimal
}

type EntryLine struct {
	Date        time.Time
	Employee    string
	Description string
	Hours       decimal.Decimal
	IsOnsite    bool
}

type CustomerReportNote struct {
	ID        int64
	ProjectID int64
	Month     string
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateRange is the half-open interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

func YearRange(year int) DateRange {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: from, To: from.AddDate(1, 0, 0)}
}

func MonthRange(year int, month time.Month) DateRange {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: from, To: from.AddDate(0, 1, 0)}
}
