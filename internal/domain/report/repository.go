package report

import (
	"context"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ReportRepository is read-only apart from notes. Multi-query reports call it
// inside a snapshot so all reads agree.
type ReportRepository interface {
	// ProjectMonthHours returns one row per project and month with hours in r.
	ProjectMonthHours(ctx context.Context, r DateRange) ([]ProjectMonthHours, error)
	// ProjectHours returns every project, with zero hours when none fall in r.
	ProjectHours(ctx context.Context, r DateRange, activeOnly bool) ([]ProjectHours, error)
	EmployeeProjectHours(ctx context.Context, r DateRange) ([]EmployeeProjectHours, error)

	GetProject(ctx context.Context, id int64) (project.Project, error)
	ProjectMonthlyHours(ctx context.Context, projectID int64) ([]MonthHours, error)
	// ProjectEmployeeHours returns hours per employee, largest first. An
	// empty month means all time.
	ProjectEmployeeHours(ctx context.Context, projectID int64, month string) ([]EmployeeHours, error)
	ProjectTotalHours(ctx context.Context, projectID int64, month string) (decimal.Decimal, error)
	ProjectEntries(ctx context.Context, projectID int64, month string) ([]EntryLine, error)

	// DataVersion changes whenever an import, batch removal or project edit
	// is committed, by this process or any other.
	DataVersion(ctx context.Context) (string, error)

	GetNote(ctx context.Context, projectID int64, month string) (CustomerReportNote, bool, error)
	UpsertNote(ctx context.Context, projectID int64, month, note string) (CustomerReportNote, error)
}
