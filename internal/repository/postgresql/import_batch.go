package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// entryBatchSize bounds the number of statements queued per round trip.
const entryBatchSize = 1000

type importRepository struct {
	db *database.DB
}

func NewImportRepository(db *database.DB) imports.ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) EnsureProject(ctx context.Context, ref imports.ProjectRef, defaultBonusRate decimal.Decimal) (int64, imports.ProjectOutcome, error) {
	q := GetQuerier(ctx, r.db)

	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO projects (project_id, name, client, bonus_rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id) DO NOTHING
		RETURNING id
	`, ref.ProjectID, ref.Name, ref.Client, defaultBonusRate).Scan(&id)
	if err == nil {
		return id, imports.ProjectCreated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("failed to insert project %s: %w", ref.ProjectID, err)
	}

	// Existing project: refresh display fields the file provides, keep financials.
	err = q.QueryRow(ctx, `
		UPDATE projects SET
			name = COALESCE(NULLIF($2, ''), name),
			client = COALESCE(NULLIF($3, ''), client),
			updated_at = NOW()
		WHERE project_id = $1
		  AND (name IS DISTINCT FROM COALESCE(NULLIF($2, ''), name)
		    OR client IS DISTINCT FROM COALESCE(NULLIF($3, ''), client))
		RETURNING id
	`, ref.ProjectID, ref.Name, ref.Client).Scan(&id)
	if err == nil {
		return id, imports.ProjectUpdated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("failed to refresh project %s: %w", ref.ProjectID, err)
	}

	err = q.QueryRow(ctx, `SELECT id FROM projects WHERE project_id = $1`, ref.ProjectID).Scan(&id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch project %s: %w", ref.ProjectID, err)
	}
	return id, imports.ProjectUnchanged, nil
}

func (r *importRepository) CreateBatch(ctx context.Context, filename string, importedAt time.Time) (imports.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	var b imports.ImportBatch
	err := q.QueryRow(ctx, `
		INSERT INTO import_batches (filename, imported_at)
		VALUES ($1, $2)
		RETURNING id, filename, imported_at, row_count, archive_path
	`, filename, importedAt.UTC()).Scan(&b.ID, &b.Filename, &b.ImportedAt, &b.RowCount, &b.ArchivePath)
	if err != nil {
		return imports.ImportBatch{}, fmt.Errorf("failed to create import batch: %w", err)
	}

	return b, nil
}

func clockValue(c timesheet.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c.Seconds) * int64(time.Second/time.Microsecond), Valid: c.Valid}
}

func (r *importRepository) InsertEntries(ctx context.Context, batchID int64, entries []imports.Entry) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_entries (
			project_id, import_batch_id, date, duration_decimal, employee,
			description, start_time, end_time, is_onsite
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (project_id, employee, date, start_time, end_time, duration_decimal) DO NOTHING
	`

	inserted := 0
	for start := 0; start < len(entries); start += entryBatchSize {
		chunk := entries[start:min(start+entryBatchSize, len(entries))]

		batch := &pgx.Batch{}
		for _, e := range chunk {
			batch.Queue(query,
				e.ProjectID, batchID, e.Date, e.Duration, e.Employee,
				e.Description, clockValue(e.StartTime), clockValue(e.EndTime), e.IsOnsite,
			)
		}

		n, err := execBatch(ctx, q, batch)
		if err != nil {
			return 0, fmt.Errorf("failed to insert time entries: %w", err)
		}
		inserted += n
	}

	return inserted, nil
}

func execBatch(ctx context.Context, q database.Querier, batch *pgx.Batch) (int, error) {
	br := q.SendBatch(ctx, batch)
	affected := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, err
		}
		affected += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *importRepository) SetRowCount(ctx context.Context, batchID int64, rowCount int) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE import_batches SET row_count = $2 WHERE id = $1`, batchID, rowCount); err != nil {
		return fmt.Errorf("failed to update import batch row count: %w", err)
	}
	return nil
}

func (r *importRepository) SetArchivePath(ctx context.Context, batchID int64, key string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE import_batches SET archive_path = $2 WHERE id = $1`, batchID, key); err != nil {
		return fmt.Errorf("failed to update import batch archive path: %w", err)
	}
	return nil
}

func (r *importRepository) ListBatches(ctx context.Context) ([]imports.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, filename, imported_at, row_count, archive_path
		FROM import_batches
		ORDER BY imported_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	batches := []imports.ImportBatch{}
	for rows.Next() {
		var b imports.ImportBatch
		if err := rows.Scan(&b.ID, &b.Filename, &b.ImportedAt, &b.RowCount, &b.ArchivePath); err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import batches: %w", err)
	}

	return batches, nil
}

func (r *importRepository) GetBatch(ctx context.Context, id int64) (imports.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	var b imports.ImportBatch
	err := q.QueryRow(ctx, `
		SELECT id, filename, imported_at, row_count, archive_path
		FROM import_batches
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Filename, &b.ImportedAt, &b.RowCount, &b.ArchivePath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return imports.ImportBatch{}, imports.ErrBatchNotFound
		}
		return imports.ImportBatch{}, fmt.Errorf("failed to get import batch: %w", err)
	}

	return b, nil
}

func (r *importRepository) DeleteBatch(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM import_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete import batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return imports.ErrBatchNotFound
	}

	return nil
}
