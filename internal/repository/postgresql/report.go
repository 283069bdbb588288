package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ProjectMonthHours(ctx context.Context, dr report.DateRange) ([]report.ProjectMonthHours, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + projectColumns + `, te.month,` + hoursColumns + `
		FROM time_entries te
		JOIN projects p ON p.id = te.project_id
		WHERE te.date >= $1 AND te.date < $2
		GROUP BY p.id, te.month
		ORDER BY te.month, p.name, p.id
	`

	rows, err := q.Query(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query project month hours: %w", err)
	}
	defer rows.Close()

	result := []report.ProjectMonthHours{}
	for rows.Next() {
		var h report.ProjectMonthHours
		targets := append(projectScanTargets(&h.Project), &h.Month, &h.Hours.Remote, &h.Hours.Onsite)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan project month hours: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project month hours: %w", err)
	}

	return result, nil
}

func (r *reportRepository) ProjectHours(ctx context.Context, dr report.DateRange, activeOnly bool) ([]report.ProjectHours, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + projectColumns + `,` + hoursColumns + `
		FROM projects p
		LEFT JOIN time_entries te
		       ON te.project_id = p.id AND te.date >= $1 AND te.date < $2
		WHERE NOT $3::boolean OR p.status = 'active'
		GROUP BY p.id
		ORDER BY p.name, p.id
	`

	rows, err := q.Query(ctx, query, dr.From, dr.To, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query project hours: %w", err)
	}
	defer rows.Close()

	result := []report.ProjectHours{}
	for rows.Next() {
		var h report.ProjectHours
		targets := append(projectScanTargets(&h.Project), &h.Hours.Remote, &h.Hours.Onsite)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan project hours: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project hours: %w", err)
	}

	return result, nil
}

func (r *reportRepository) EmployeeProjectHours(ctx context.Context, dr report.DateRange) ([]report.EmployeeProjectHours, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT te.employee, p.id, p.project_id, p.name, SUM(te.duration_decimal)
		FROM time_entries te
		JOIN projects p ON p.id = te.project_id
		WHERE te.date >= $1 AND te.date < $2
		GROUP BY te.employee, p.id
		ORDER BY te.employee, p.name, p.id
	`, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee hours: %w", err)
	}
	defer rows.Close()

	result := []report.EmployeeProjectHours{}
	for rows.Next() {
		var h report.EmployeeProjectHours
		if err := rows.Scan(&h.Employee, &h.ProjectID, &h.ProjectKey, &h.ProjectName, &h.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan employee hours: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee hours: %w", err)
	}

	return result, nil
}

func (r *reportRepository) GetProject(ctx context.Context, id int64) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	var p project.Project
	err := q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id).
		Scan(projectScanTargets(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, report.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

func (r *reportRepository) ProjectMonthlyHours(ctx context.Context, projectID int64) ([]report.MonthHours, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT te.month,`+hoursColumns+`
		FROM time_entries te
		WHERE te.project_id = $1
		GROUP BY te.month
		ORDER BY te.month
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly hours: %w", err)
	}
	defer rows.Close()

	result := []report.MonthHours{}
	for rows.Next() {
		var m report.MonthHours
		if err := rows.Scan(&m.Month, &m.Hours.Remote, &m.Hours.Onsite); err != nil {
			return nil, fmt.Errorf("failed to scan monthly hours: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly hours: %w", err)
	}

	return result, nil
}

func (r *reportRepository) ProjectEmployeeHours(ctx context.Context, projectID int64, month string) ([]report.EmployeeHours, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT te.employee, SUM(te.duration_decimal) AS hours
		FROM time_entries te
		WHERE te.project_id = $1 AND ($2::text = '' OR te.month = $2)
		GROUP BY te.employee
		ORDER BY hours DESC, te.employee
	`, projectID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee breakdown: %w", err)
	}
	defer rows.Close()

	result := []report.EmployeeHours{}
	for rows.Next() {
		var e report.EmployeeHours
		if err := rows.Scan(&e.Employee, &e.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan employee breakdown: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee breakdown: %w", err)
	}

	return result, nil
}

func (r *reportRepository) ProjectTotalHours(ctx context.Context, projectID int64, month string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var total decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(duration_decimal), 0)
		FROM time_entries
		WHERE project_id = $1 AND ($2::text = '' OR month = $2)
	`, projectID, month).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum project hours: %w", err)
	}

	return total, nil
}

func (r *reportRepository) ProjectEntries(ctx context.Context, projectID int64, month string) ([]report.EntryLine, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT date, employee, description, duration_decimal, is_onsite
		FROM time_entries
		WHERE project_id = $1 AND ($2::text = '' OR month = $2)
		ORDER BY date, start_time NULLS LAST, id
	`, projectID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query project entries: %w", err)
	}
	defer rows.Close()

	result := []report.EntryLine{}
	for rows.Next() {
		var e report.EntryLine
		if err := rows.Scan(&e.Date, &e.Employee, &e.Description, &e.Hours, &e.IsOnsite); err != nil {
			return nil, fmt.Errorf("failed to scan project entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project entries: %w", err)
	}

	return result, nil
}

func (r *reportRepository) DataVersion(ctx context.Context) (string, error) {
	q := GetQuerier(ctx, r.db)

	var (
		lastBatch, batches, projects int64
		lastEdit                     time.Time
	)
	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(MAX(id), 0) FROM import_batches),
			(SELECT COUNT(*) FROM import_batches),
			(SELECT COALESCE(MAX(updated_at), 'epoch'::timestamptz) FROM projects),
			(SELECT COUNT(*) FROM projects)
	`).Scan(&lastBatch, &batches, &lastEdit, &projects)
	if err != nil {
		return "", fmt.Errorf("failed to read data version: %w", err)
	}

	return fmt.Sprintf("%d.%d.%d.%d", lastBatch, batches, lastEdit.UnixMicro(), projects), nil
}

func (r *reportRepository) GetNote(ctx context.Context, projectID int64, month string) (report.CustomerReportNote, bool, error) {
	q := GetQuerier(ctx, r.db)

	var n report.CustomerReportNote
	err := q.QueryRow(ctx, `
		SELECT id, project_id, month, note, created_at, updated_at
		FROM customer_report_notes
		WHERE project_id = $1 AND month = $2
	`, projectID, month).Scan(&n.ID, &n.ProjectID, &n.Month, &n.Note, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.CustomerReportNote{}, false, nil
		}
		return report.CustomerReportNote{}, false, fmt.Errorf("failed to get report note: %w", err)
	}

	return n, true, nil
}

func (r *reportRepository) UpsertNote(ctx context.Context, projectID int64, month, note string) (report.CustomerReportNote, error) {
	q := GetQuerier(ctx, r.db)

	var n report.CustomerReportNote
	err := q.QueryRow(ctx, `
		INSERT INTO customer_report_notes (project_id, month, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, month) DO UPDATE SET
			note = EXCLUDED.note,
			updated_at = NOW()
		RETURNING id, project_id, month, note, created_at, updated_at
	`, projectID, month, note).Scan(&n.ID, &n.ProjectID, &n.Month, &n.Note, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return report.CustomerReportNote{}, fmt.Errorf("failed to upsert report note: %w", err)
	}

	return n, nil
}
