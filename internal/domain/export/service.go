package export

import "context"

type ExportService interface {
	Finance(ctx context.Context, req FinanceExportRequest) (File, error)
	Customer(ctx context.Context, req CustomerExportRequest) (File, error)
}
