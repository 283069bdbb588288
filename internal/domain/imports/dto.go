package imports

import "time"

type ImportRequest struct {
	Filename string
	Content  []byte
}

type SkippedRow struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	BatchID         int64        `json:"batch_id"`
	Filename        string       `json:"filename"`
	RowsImported    int          `json:"rows_imported"`
	RowsDuplicate   int          `json:"rows_duplicate"`
	ProjectsCreated int          `json:"projects_created"`
	ProjectsUpdated int          `json:"projects_updated"`
	RowsSkipped     []SkippedRow `json:"rows_skipped"`
}

type BatchResponse struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	ImportedAt time.Time `json:"imported_at"`
	RowCount   int       `json:"row_count"`
	HasArchive bool      `json:"has_archive"`
}

func NewBatchResponse(b ImportBatch) BatchResponse {
	return BatchResponse{
		ID:         b.ID,
		Filename:   b.Filename,
		ImportedAt: b.ImportedAt,
		RowCount:   b.RowCount,
		HasArchive: b.ArchivePath != nil,
	}
}
