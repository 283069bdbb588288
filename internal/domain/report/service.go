package report

import "context"

type ReportService interface {
	Finance(ctx context.Context, req FinanceRequest) (FinanceReport, error)
	Revenue(ctx context.Context, req YearRequest) (RevenueReport, error)
	Employees(ctx context.Context, req YearRequest) ([]EmployeeUtilization, error)
	ProjectReport(ctx context.Context, req ProjectReportRequest) (ProjectReport, error)
	CustomerReport(ctx context.Context, req CustomerReportRequest) (CustomerReport, error)
	Dashboard(ctx context.Context, req DashboardRequest) (Dashboard, error)
	SaveNote(ctx context.Context, req SaveNoteRequest) (NoteResponse, error)
	// Invalidate drops cached reports after the underlying data changed.
	Invalidate()
}
