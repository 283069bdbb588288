package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/timeentry"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
	"github.com/jackc/pgx/v5/pgtype"
)

type timeEntryRepository struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func clockFromTime(t pgtype.Time) timesheet.Clock {
	if !t.Valid {
		return timesheet.Clock{}
	}
	return timesheet.Clock{Seconds: int(t.Microseconds / int64(time.Second/time.Microsecond)), Valid: true}
}

func (r *timeEntryRepository) List(ctx context.Context, filter timeentry.ListFilter) ([]timeentry.TimeEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `
		WHERE ($1::bigint IS NULL OR te.project_id = $1)
		  AND ($2::text IS NULL OR te.month = $2)
		  AND ($3::text IS NULL OR te.employee = $3)
	`
	args := []any{filter.ProjectID, filter.Month, filter.Employee}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM time_entries te `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	query := `
		SELECT te.id, te.project_id, te.import_batch_id, te.date, te.duration_decimal,
			   te.employee, te.description, te.start_time, te.end_time, te.month,
			   te.is_onsite, te.created_at, p.project_id, p.name
		FROM time_entries te
		JOIN projects p ON p.id = te.project_id
	` + where + `
		ORDER BY te.date DESC, te.start_time DESC NULLS LAST, te.id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := q.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := []timeentry.TimeEntry{}
	for rows.Next() {
		var (
			e          timeentry.TimeEntry
			start, end pgtype.Time
		)
		if err := rows.Scan(
			&e.ID, &e.ProjectID, &e.ImportBatchID, &e.Date, &e.Duration,
			&e.Employee, &e.Description, &start, &end, &e.Month,
			&e.IsOnsite, &e.CreatedAt, &e.ProjectExternalID, &e.ProjectName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan time entry: %w", err)
		}
		e.StartTime, e.EndTime = clockFromTime(start), clockFromTime(end)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate time entries: %w", err)
	}

	return entries, total, nil
}
