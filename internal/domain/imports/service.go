package imports

import (
	"context"
	"io"
)

type ImportService interface {
	Import(ctx context.Context, req ImportRequest) (ImportResult, error)
	ListBatches(ctx context.Context) ([]BatchResponse, error)
	DeleteBatch(ctx context.Context, id int64) error
	// OpenArchive returns the original upload of a batch.
	OpenArchive(ctx context.Context, id int64) (io.ReadCloser, ImportBatch, error)
}
