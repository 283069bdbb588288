package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func hours(remote, onsite string) bonus.Hours {
	return bonus.Hours{Remote: d(remote), Onsite: d(onsite)}
}

type fakeReportRepo struct {
	mu    sync.Mutex
	calls int

	monthHours    []report.ProjectMonthHours
	projectHours  func(dr report.DateRange, activeOnly bool) []report.ProjectHours
	employeeHours []report.EmployeeProjectHours
	projects      map[int64]project.Project
	monthly       []report.MonthHours
	breakdown     []report.EmployeeHours
	totalHours    decimal.Decimal
	entries       []report.EntryLine
	notes         map[string]report.CustomerReportNote
	ranges        []report.DateRange
	version       string
	// afterMonthHours runs once ProjectMonthHours has read its rows.
	afterMonthHours func()
}

func (r *fakeReportRepo) track(dr report.DateRange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.ranges = append(r.ranges, dr)
}

func (r *fakeReportRepo) ProjectMonthHours(_ context.Context, dr report.DateRange) ([]report.ProjectMonthHours, error) {
	r.track(dr)
	rows := r.monthHours
	if r.afterMonthHours != nil {
		r.afterMonthHours()
	}
	return rows, nil
}

func (r *fakeReportRepo) ProjectHours(_ context.Context, dr report.DateRange, activeOnly bool) ([]report.ProjectHours, error) {
	r.track(dr)
	if r.projectHours == nil {
		return nil, nil
	}
	return r.projectHours(dr, activeOnly), nil
}

func (r *fakeReportRepo) EmployeeProjectHours(_ context.Context, dr report.DateRange) ([]report.EmployeeProjectHours, error) {
	r.track(dr)
	return r.employeeHours, nil
}

func (r *fakeReportRepo) GetProject(_ context.Context, id int64) (project.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return project.Project{}, report.ErrProjectNotFound
	}
	return p, nil
}

func (r *fakeReportRepo) ProjectMonthlyHours(context.Context, int64) ([]report.MonthHours, error) {
	return r.monthly, nil
}

func (r *fakeReportRepo) ProjectEmployeeHours(context.Context, int64, string) ([]report.EmployeeHours, error) {
	return r.breakdown, nil
}

func (r *fakeReportRepo) ProjectTotalHours(context.Context, int64, string) (decimal.Decimal, error) {
	return r.totalHours, nil
}

func (r *fakeReportRepo) ProjectEntries(context.Context, int64, string) ([]report.EntryLine, error) {
	return r.entries, nil
}

func (r *fakeReportRepo) DataVersion(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version, nil
}

func (r *fakeReportRepo) setVersion(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = v
}

func (r *fakeReportRepo) GetNote(_ context.Context, projectID int64, month string) (report.CustomerReportNote, bool, error) {
	n, ok := r.notes[month]
	return n, ok, nil
}

func (r *fakeReportRepo) UpsertNote(_ context.Context, projectID int64, month, note string) (report.CustomerReportNote, error) {
	if r.notes == nil {
		r.notes = map[string]report.CustomerReportNote{}
	}
	n := report.CustomerReportNote{ID: 1, ProjectID: projectID, Month: month, Note: note}
	r.notes[month] = n
	return n, nil
}

type passthroughTransactor struct {
	snapshots       int
	sharedSnapshots int
}

func (t *passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (t *passthroughTransactor) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	t.snapshots++
	return fn(ctx)
}

func (t *passthroughTransactor) WithinSharedSnapshot(ctx context.Context, fns ...func(ctx context.Context) error) error {
	t.sharedSnapshots++
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

var fixedNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func newTestService(repo *fakeReportRepo, ttl time.Duration) (*ReportServiceImpl, *passthroughTransactor) {
	tx := &passthroughTransactor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewReportService(repo, tx, ttl, nil, func() time.Time { return fixedNow }, logger)
	return svc.(*ReportServiceImpl), tx
}

func alpha() project.Project {
	return project.Project{
		ID: 1, ProjectID: "P-1", Name: "Alpha", Client: "Thees",
		HourlyRate: nd("120"), OnsiteHourlyRate: nd("150"), BonusRate: d("0.02"),
		BudgetHours: nd("200"), DealValue: nd("30000"), Status: project.StatusActive,
	}
}

func beta() project.Project {
	return project.Project{
		ID: 2, ProjectID: "P-2", Name: "Beta", Client: "Kern",
		HourlyRate: nd("95.55"), BonusRate: d("0.035"), Status: project.StatusActive,
	}
}

func TestFinance_GrandTotalIsSumOfCells(t *testing.T) {
	repo := &fakeReportRepo{monthHours: []report.ProjectMonthHours{
		{Project: alpha(), Month: "2026-01", Hours: hours("80", "20")},
		{Project: beta(), Month: "2026-01", Hours: hours("3.33", "0")},
		{Project: alpha(), Month: "2026-02", Hours: hours("7.77", "1.11")},
		{Project: beta(), Month: "2026-02", Hours: hours("0", "0")},
	}}
	svc, _ := newTestService(repo, 0)

	got, err := svc.Finance(context.Background(), report.FinanceRequest{Year: 2026})
	require.NoError(t, err)

	assert.Equal(t, 2026, got.Year)
	assert.Nil(t, got.Month)
	require.Len(t, got.Months, 2)
	assert.Equal(t, "2026-01", got.Months[0].Month)
	require.Len(t, got.Months[0].Projects, 2)
	require.Len(t, got.Months[1].Projects, 1, "months without hours have no cell")

	jan := got.Months[0].Projects[0]
	assert.Equal(t, "252.00", jan.BonusAmount.StringFixed(2))
	assert.Equal(t, "12600.00", jan.Revenue.StringFixed(2))

	var hoursSum, bonusSum, revenueSum decimal.Decimal
	for _, m := range got.Months {
		var mh, mb, mr decimal.Decimal
		for _, c := range m.Projects {
			mh, mb, mr = mh.Add(c.TotalHours), mb.Add(c.BonusAmount), mr.Add(c.Revenue)
			assert.True(t, c.BonusAmount.Equal(c.RemoteBonus.Add(c.OnsiteBonus)))
		}
		assert.True(t, mh.Equal(m.TotalHours))
		assert.True(t, mb.Equal(m.TotalBonus))
		assert.True(t, mr.Equal(m.TotalRevenue))
		hoursSum, bonusSum, revenueSum = hoursSum.Add(mh), bonusSum.Add(mb), revenueSum.Add(mr)
	}
	assert.True(t, hoursSum.Equal(got.TotalHours))
	assert.True(t, bonusSum.Equal(got.TotalBonus))
	assert.True(t, revenueSum.Equal(got.TotalRevenue))

	byProject := got.ByProject()
	require.Len(t, byProject, 2)
	assert.Equal(t, "108.88", byProject[0].Hours.Total().String())
}

func TestFinance_MonthNarrowsRange(t *testing.T) {
	repo := &fakeReportRepo{}
	svc, _ := newTestService(repo, 0)

	got, err := svc.Finance(context.Background(), report.FinanceRequest{Month: 2})
	require.NoError(t, err)

	require.NotNil(t, got.Month)
	assert.Equal(t, 2, *got.Month)
	assert.Equal(t, 2026, got.Year)
	assert.Empty(t, got.Months)
	assert.True(t, got.TotalBonus.IsZero())
	require.Len(t, repo.ranges, 1)
	assert.Equal(t, report.MonthRange(2026, time.February), repo.ranges[0])
}

func TestFinance_RejectsInvalidParameters(t *testing.T) {
	svc, _ := newTestService(&fakeReportRepo{}, 0)

	_, err := svc.Finance(context.Background(), report.FinanceRequest{Year: 1999, Month: 13})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestRevenue_UtilizationNullRules(t *testing.T) {
	zeroBudget := beta()
	zeroBudget.ID, zeroBudget.BudgetHours = 3, nd("0")

	repo := &fakeReportRepo{projectHours: func(report.DateRange, bool) []report.ProjectHours {
		return []report.ProjectHours{
			{Project: alpha(), Hours: hours("80", "20")},
			{Project: beta(), Hours: hours("10", "0")},
			{Project: zeroBudget, Hours: hours("5", "0")},
		}
	}}
	svc, _ := newTestService(repo, 0)

	got, err := svc.Revenue(context.Background(), report.YearRequest{Year: 2026})
	require.NoError(t, err)

	require.Len(t, got.Projects, 3)
	assert.Equal(t, 3, got.ActiveProjects)
	assert.True(t, got.Projects[0].BudgetUtilization.Valid)
	assert.Equal(t, "0.5", got.Projects[0].BudgetUtilization.Decimal.String())
	assert.False(t, got.Projects[1].BudgetUtilization.Valid, "no budget")
	assert.False(t, got.Projects[2].BudgetUtilization.Valid, "zero budget")

	require.True(t, got.AvgBudgetUtilization.Valid)
	assert.Equal(t, "0.5", got.AvgBudgetUtilization.Decimal.String())
	assert.Equal(t, "30000", got.TotalDealValue.String())
	// 12600 + 955.50 + 477.75
	assert.Equal(t, "14033.25", got.TotalRevenue.StringFixed(2))
}

func TestRevenue_AverageNullWithoutBudgets(t *testing.T) {
	repo := &fakeReportRepo{projectHours: func(report.DateRange, bool) []report.ProjectHours {
		return []report.ProjectHours{{Project: beta(), Hours: hours("10", "0")}}
	}}
	svc, _ := newTestService(repo, 0)

	got, err := svc.Revenue(context.Background(), report.YearRequest{})
	require.NoError(t, err)
	assert.False(t, got.AvgBudgetUtilization.Valid)
	assert.Equal(t, 2026, got.Year)
}

func TestEmployees_SortedByTotalHours(t *testing.T) {
	repo := &fakeReportRepo{employeeHours: []report.EmployeeProjectHours{
		{Employee: "Anna", ProjectID: 1, ProjectKey: "P-1", ProjectName: "Alpha", Hours: d("10")},
		{Employee: "Anna", ProjectID: 2, ProjectKey: "P-2", ProjectName: "Beta", Hours: d("30")},
		{Employee: "Ben", ProjectID: 1, ProjectKey: "P-1", ProjectName: "Alpha", Hours: d("55.5")},
		{Employee: "Cleo", ProjectID: 2, ProjectKey: "P-2", ProjectName: "Beta", Hours: d("40")},
	}}
	svc, _ := newTestService(repo, 0)

	got, err := svc.Employees(context.Background(), report.YearRequest{Year: 2026})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "Ben", got[0].Employee)
	assert.Equal(t, "Anna", got[1].Employee)
	assert.Equal(t, "Cleo", got[2].Employee)
	assert.Equal(t, "40", got[1].TotalHours.String())
	assert.Equal(t, 2, got[1].ProjectCount)
	assert.Equal(t, "Beta", got[1].Projects[0].ProjectName)
}

func TestReportCache(t *testing.T) {
	repo := &fakeReportRepo{}
	svc, _ := newTestService(repo, time.Minute)

	for range 3 {
		_, err := svc.Employees(context.Background(), report.YearRequest{Year: 2026})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.calls)

	_, err := svc.Employees(context.Background(), report.YearRequest{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)

	svc.Invalidate()
	_, err = svc.Employees(context.Background(), report.YearRequest{Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
}

func TestReportCache_InvalidateDuringComputeDropsResult(t *testing.T) {
	row := func(h string) []report.ProjectMonthHours {
		return []report.ProjectMonthHours{{Project: alpha(), Month: "2026-01", Hours: hours(h, "0")}}
	}
	repo := &fakeReportRepo{monthHours: row("10")}
	svc, _ := newTestService(repo, time.Minute)

	// An import commits and invalidates while the first report is still reading.
	repo.afterMonthHours = func() {
		repo.monthHours = row("20")
		repo.afterMonthHours = nil
		svc.Invalidate()
	}

	got, err := svc.Finance(context.Background(), report.FinanceRequest{Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "10", got.TotalHours.String())

	got, err = svc.Finance(context.Background(), report.FinanceRequest{Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "20", got.TotalHours.String())
	assert.Equal(t, 2, repo.calls)
}

func TestReportCache_DataVersionChangeMisses(t *testing.T) {
	repo := &fakeReportRepo{version: "1"}
	svc, _ := newTestService(repo, time.Minute)

	_, err := svc.Revenue(context.Background(), report.YearRequest{Year: 2026})
	require.NoError(t, err)
	_, err = svc.Revenue(context.Background(), report.YearRequest{Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	// Another process imported a file; this process was never told.
	repo.setVersion("2")
	_, err = svc.Revenue(context.Background(), report.YearRequest{Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestProjectReport(t *testing.T) {
	repo := &fakeReportRepo{
		projects: map[int64]project.Project{1: alpha()},
		monthly: []report.MonthHours{
			{Month: "2026-01", Hours: hours("80", "20")},
			{Month: "2026-02", Hours: hours("10", "0")},
		},
		breakdown: []report.EmployeeHours{{Employee: "Anna", Hours: d("110")}},
	}
	svc, tx := newTestService(repo, 0)

	got, err := svc.ProjectReport(context.Background(), report.ProjectReportRequest{ProjectID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, tx.snapshots)
	assert.Equal(t, "P-1", got.Project.ProjectKey)
	require.Len(t, got.MonthlyBreakdown, 2)
	assert.Equal(t, "252.00", got.MonthlyBreakdown[0].TotalBonus.StringFixed(2))
	assert.Equal(t, "110", got.TotalHours.String())
	// 252 + 10*120*0.02
	assert.Equal(t, "276.00", got.TotalBonus.StringFixed(2))
	require.True(t, got.BudgetRemaining.Valid)
	assert.Equal(t, "90", got.BudgetRemaining.Decimal.String())

	_, err = svc.ProjectReport(context.Background(), report.ProjectReportRequest{ProjectID: 99})
	assert.ErrorIs(t, err, report.ErrProjectNotFound)
}

func TestCustomerReport(t *testing.T) {
	noBudget := beta()
	repo := &fakeReportRepo{
		projects: map[int64]project.Project{1: alpha(), 2: noBudget},
		breakdown: []report.EmployeeHours{
			{Employee: "Anna", Hours: d("12.5")},
			{Employee: "Ben", Hours: d("4")},
		},
		totalHours: d("150"),
		entries: []report.EntryLine{
			{Date: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), Employee: "Anna", Description: "Workshop", Hours: d("12.5")},
		},
	}
	svc, _ := newTestService(repo, 0)

	got, err := svc.CustomerReport(context.Background(), report.CustomerReportRequest{ProjectID: 1, Month: "2026-02"})
	require.NoError(t, err)
	assert.Equal(t, "16.5", got.TotalHours.String())
	require.True(t, got.HoursRemaining.Valid)
	assert.Equal(t, "50", got.HoursRemaining.Decimal.String())
	assert.Equal(t, "", got.Note)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "2026-02-03", got.Entries[0].Date)

	_, err = svc.SaveNote(context.Background(), report.SaveNoteRequest{ProjectID: 1, Month: "2026-02", Note: "  Phase 1 done  "})
	require.NoError(t, err)
	got, err = svc.CustomerReport(context.Background(), report.CustomerReportRequest{ProjectID: 1, Month: "2026-02"})
	require.NoError(t, err)
	assert.Equal(t, "Phase 1 done", got.Note)

	got, err = svc.CustomerReport(context.Background(), report.CustomerReportRequest{ProjectID: 2, Month: "2026-02"})
	require.NoError(t, err)
	assert.False(t, got.HoursRemaining.Valid)

	_, err = svc.CustomerReport(context.Background(), report.CustomerReportRequest{ProjectID: 1})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestSaveNote_Errors(t *testing.T) {
	svc, _ := newTestService(&fakeReportRepo{projects: map[int64]project.Project{}}, 0)

	_, err := svc.SaveNote(context.Background(), report.SaveNoteRequest{ProjectID: 1, Month: "2026-13"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	_, err = svc.SaveNote(context.Background(), report.SaveNoteRequest{ProjectID: 1, Month: "2026-02"})
	assert.ErrorIs(t, err, report.ErrProjectNotFound)
}

func TestDashboard_ForecastAndCurrentMonth(t *testing.T) {
	ytdFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeReportRepo{projectHours: func(dr report.DateRange, activeOnly bool) []report.ProjectHours {
		if activeOnly {
			return []report.ProjectHours{
				{Project: alpha(), Hours: hours("8", "2")},
				{Project: beta(), Hours: hours("0", "0")},
			}
		}
		return []report.ProjectHours{
			{Project: alpha(), Hours: hours("80", "20")},
			{Project: beta(), Hours: hours("0", "0")},
		}
	}}
	svc, tx := newTestService(repo, 0)

	got, err := svc.Dashboard(context.Background(), report.DashboardRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.sharedSnapshots)

	assert.Equal(t, "2026-03-15", got.AsOf)
	assert.Equal(t, "2026-03", got.CurrentMonth)
	assert.Equal(t, 2, got.ActiveProjects)
	assert.Equal(t, "10", got.TotalHoursCurrentMonth.String())
	assert.Equal(t, "25.20", got.TotalBonusCurrentMonth.StringFixed(2))

	assert.Equal(t, "100", got.YTDHours.String())
	assert.Equal(t, "252.00", got.YTDBonus.StringFixed(2))
	assert.Equal(t, "12600.00", got.YTDRevenue.StringFixed(2))
	require.True(t, got.ForecastHours.Valid)
	assert.Equal(t, "400.00", got.ForecastHours.Decimal.StringFixed(2))
	assert.Equal(t, "1008.00", got.ForecastBonus.Decimal.StringFixed(2))
	assert.Equal(t, "50400.00", got.ForecastRevenue.Decimal.StringFixed(2))

	assert.Contains(t, repo.ranges, report.DateRange{From: ytdFrom, To: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)})
	assert.Contains(t, repo.ranges, report.MonthRange(2026, time.March))
}

func TestDashboard_NoDataHasNoForecast(t *testing.T) {
	svc, _ := newTestService(&fakeReportRepo{}, 0)
	asOf := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)

	got, err := svc.Dashboard(context.Background(), report.DashboardRequest{AsOf: &asOf})
	require.NoError(t, err)

	assert.Equal(t, "2025-12-31", got.AsOf)
	assert.Equal(t, 0, got.ActiveProjects)
	assert.NotNil(t, got.Projects)
	assert.False(t, got.ForecastHours.Valid)
	assert.False(t, got.ForecastBonus.Valid)
	assert.False(t, got.ForecastRevenue.Valid)
}
