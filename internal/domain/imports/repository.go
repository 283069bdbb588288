package imports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ImportRepository interface {
	// EnsureProject inserts the project when its external id is unknown and
	// otherwise refreshes name and client. Financial fields are never touched.
	EnsureProject(ctx context.Context, ref ProjectRef, defaultBonusRate decimal.Decimal) (int64, ProjectOutcome, error)
	CreateBatch(ctx context.Context, filename string, importedAt time.Time) (ImportBatch, error)
	// InsertEntries stores entries that are not yet present and returns how many were inserted.
	InsertEntries(ctx context.Context, batchID int64, entries []Entry) (int, error)
	SetRowCount(ctx context.Context, batchID int64, rowCount int) error
	SetArchivePath(ctx context.Context, batchID int64, key string) error

	ListBatches(ctx context.Context) ([]ImportBatch, error)
	GetBatch(ctx context.Context, id int64) (ImportBatch, error)
	DeleteBatch(ctx context.Context, id int64) error
}
