package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const projectColumns = `
	p.id, p.project_id, p.name, p.client, p.deal_value, p.budget_hours,
	p.hourly_rate, p.onsite_hourly_rate, p.bonus_rate, p.status, p.start_date,
	p.project_manager, p.customer_contact, p.created_at, p.updated_at`

// hoursColumns splits summed hours by location; the caller joins time_entries as te.
const hoursColumns = `
	COALESCE(SUM(te.duration_decimal) FILTER (WHERE NOT te.is_onsite), 0),
	COALESCE(SUM(te.duration_decimal) FILTER (WHERE te.is_onsite), 0)`

const uniqueViolation = "23505"

type projectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepository{db: db}
}

func projectScanTargets(p *project.Project) []any {
	return []any{
		&p.ID, &p.ProjectID, &p.Name, &p.Client, &p.DealValue, &p.BudgetHours,
		&p.HourlyRate, &p.OnsiteHourlyRate, &p.BonusRate, &p.Status, &p.StartDate,
		&p.ProjectManager, &p.CustomerContact, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanSummary(row pgx.Row) (project.Summary, error) {
	var s project.Summary
	targets := append(projectScanTargets(&s.Project), &s.Hours.Remote, &s.Hours.Onsite)
	err := row.Scan(targets...)
	return s, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

func (r *projectRepository) List(ctx context.Context, filter project.ListFilter) ([]project.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + projectColumns + `,` + hoursColumns + `
		FROM projects p
		LEFT JOIN time_entries te ON te.project_id = p.id
		WHERE ($1::text IS NULL OR p.status = $1)
		GROUP BY p.id
		ORDER BY p.name, p.id
	`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := []project.Summary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return summaries, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (project.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + projectColumns + `,` + hoursColumns + `
		FROM projects p
		LEFT JOIN time_entries te ON te.project_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`

	s, err := scanSummary(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Summary{}, project.ErrProjectNotFound
		}
		return project.Summary{}, fmt.Errorf("failed to get project: %w", err)
	}

	return s, nil
}

func (r *projectRepository) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO projects AS p (
			project_id, name, client, deal_value, budget_hours, hourly_rate,
			onsite_hourly_rate, bonus_rate, status, start_date, project_manager, customer_contact
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + projectColumns

	var created project.Project
	err := q.QueryRow(ctx, query,
		p.ProjectID, p.Name, p.Client, p.DealValue, p.BudgetHours, p.HourlyRate,
		p.OnsiteHourlyRate, p.BonusRate, p.Status, p.StartDate, p.ProjectManager, p.CustomerContact,
	).Scan(projectScanTargets(&created)...)
	if err != nil {
		if isUniqueViolation(err, "uk_projects_project_id") {
			return project.Project{}, project.ErrProjectIDExists
		}
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}

	return created, nil
}

func (r *projectRepository) Update(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE projects AS p SET
			name = $2, client = $3, deal_value = $4, budget_hours = $5, hourly_rate = $6,
			onsite_hourly_rate = $7, bonus_rate = $8, status = $9, start_date = $10,
			project_manager = $11, customer_contact = $12, updated_at = NOW()
		WHERE p.id = $1
		RETURNING ` + projectColumns

	var updated project.Project
	err := q.QueryRow(ctx, query,
		p.ID, p.Name, p.Client, p.DealValue, p.BudgetHours, p.HourlyRate,
		p.OnsiteHourlyRate, p.BonusRate, p.Status, p.StartDate, p.ProjectManager, p.CustomerContact,
	).Scan(projectScanTargets(&updated)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to update project: %w", err)
	}

	return updated, nil
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, ids []int64, status project.Status) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE projects SET status = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`, status, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to update project status: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *projectRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM projects WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete projects: %w", err)
	}

	return tag.RowsAffected(), nil
}
