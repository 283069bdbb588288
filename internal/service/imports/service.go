package imports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/config"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/metrics"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/storage"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
)

const (
	maxFilenameLength = 255
	// Longer suffixes are treated as part of the name when truncating.
	maxExtensionLength = 16
)

// Invalidator drops cached reports.
type Invalidator interface {
	Invalidate()
}

type ImportServiceImpl struct {
	tx      database.Transactor
	repo    imports.ImportRepository
	storage storage.FileStorage
	metrics *metrics.ImportMetrics
	cache   Invalidator
	cfg     config.ImportConfig
	now     func() time.Time
	logger  *slog.Logger
}

// NewImportService wires the reconciler. fileStorage and m may be nil, which
// disables archiving and metrics respectively.
func NewImportService(
	tx database.Transactor,
	repo imports.ImportRepository,
	fileStorage storage.FileStorage,
	m *metrics.ImportMetrics,
	cache Invalidator,
	cfg config.ImportConfig,
	now func() time.Time,
	logger *slog.Logger,
) imports.ImportService {
	return &ImportServiceImpl{
		tx:      tx,
		repo:    repo,
		storage: fileStorage,
		metrics: m,
		cache:   cache,
		cfg:     cfg,
		now:     now,
		logger:  logger.With("component", "import"),
	}
}

func (s *ImportServiceImpl) Import(ctx context.Context, req imports.ImportRequest) (imports.ImportResult, error) {
	start := time.Now()

	result, err := s.importFile(ctx, req)
	if err != nil {
		s.metrics.RecordImportError(failureReason(err))
		s.logger.Warn("import rejected", "filename", req.Filename, "error", err)
		return imports.ImportResult{}, err
	}

	s.archive(ctx, &result, req.Content)
	s.metrics.RecordImport(metrics.ImportResult{
		RowsImported:    result.RowsImported,
		RowsDuplicate:   result.RowsDuplicate,
		RowsSkipped:     len(result.RowsSkipped),
		ProjectsCreated: result.ProjectsCreated,
		ProjectsUpdated: result.ProjectsUpdated,
	}, time.Since(start))
	s.cache.Invalidate()

	s.logger.Info("import completed",
		"batch_id", result.BatchID,
		"filename", result.Filename,
		"rows_imported", result.RowsImported,
		"rows_duplicate", result.RowsDuplicate,
		"rows_skipped", len(result.RowsSkipped),
		"projects_created", result.ProjectsCreated,
		"projects_updated", result.ProjectsUpdated,
	)
	return result, nil
}

func (s *ImportServiceImpl) importFile(ctx context.Context, req imports.ImportRequest) (imports.ImportResult, error) {
	if int64(len(req.Content)) > s.cfg.MaxBytes {
		return imports.ImportResult{}, fmt.Errorf("%w: %d bytes exceeds the limit of %d", imports.ErrFileTooLarge, len(req.Content), s.cfg.MaxBytes)
	}
	filename := sanitizeFilename(req.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return imports.ImportResult{}, imports.ErrInvalidFileType
	}

	text, err := decode(req.Content, s.cfg.EncodingFallback)
	if err != nil {
		return imports.ImportResult{}, err
	}

	rows, skipped, err := s.parse(ctx, text)
	if err != nil {
		return imports.ImportResult{}, err
	}
	if len(rows) == 0 {
		return imports.ImportResult{}, imports.ErrNoEntries
	}

	result := imports.ImportResult{Filename: filename, RowsSkipped: skipped}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.persist(ctx, filename, rows, &result)
	})
	if err != nil {
		return imports.ImportResult{}, fmt.Errorf("%w: %w", imports.ErrPersistence, err)
	}

	return result, nil
}

// parse reads every row before anything is written. In strict mode the first
// invalid row aborts the import.
func (s *ImportServiceImpl) parse(ctx context.Context, text []byte) ([]timesheet.Row, []imports.SkippedRow, error) {
	seq, err := timesheet.Parse(bytes.NewReader(text), timesheet.Options{OnsiteTags: s.cfg.OnsiteTags})
	if err != nil {
		return nil, nil, err
	}

	var (
		rows    []timesheet.Row
		skipped = []imports.SkippedRow{}
	)
	for row, err := range seq {
		if err != nil {
			var rowErr *timesheet.RowError
			if s.cfg.SkipInvalidRows && errors.Is(err, timesheet.ErrInvalidRow) && errors.As(err, &rowErr) {
				skipped = append(skipped, imports.SkippedRow{Row: rowErr.Row, Field: rowErr.Field, Message: rowErr.Message})
				continue
			}
			return nil, nil, err
		}
		rows = append(rows, row)
		if len(rows)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
	}

	return rows, skipped, nil
}

func (s *ImportServiceImpl) persist(ctx context.Context, filename string, rows []timesheet.Row, result *imports.ImportResult) error {
	projectIDs := make(map[string]int64)
	for _, row := range rows {
		if _, seen := projectIDs[row.ProjectID]; seen {
			continue
		}
		ref := imports.ProjectRef{ProjectID: row.ProjectID, Name: row.ProjectName, Client: row.Client}
		id, outcome, err := s.repo.EnsureProject(ctx, ref, s.cfg.DefaultBonusRate)
		if err != nil {
			return err
		}
		projectIDs[row.ProjectID] = id
		switch outcome {
		case imports.ProjectCreated:
			result.ProjectsCreated++
		case imports.ProjectUpdated:
			result.ProjectsUpdated++
		}
	}

	batch, err := s.repo.CreateBatch(ctx, filename, s.now())
	if err != nil {
		return err
	}

	entries := make([]imports.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, imports.Entry{ProjectID: projectIDs[row.ProjectID], Row: row})
	}

	inserted, err := s.repo.InsertEntries(ctx, batch.ID, entries)
	if err != nil {
		return err
	}
	if err := s.repo.SetRowCount(ctx, batch.ID, inserted); err != nil {
		return err
	}

	result.BatchID = batch.ID
	result.RowsImported = inserted
	result.RowsDuplicate = len(rows) - inserted
	return nil
}

// archive keeps the original upload next to the batch. Failures are logged
// and do not fail the committed import.
func (s *ImportServiceImpl) archive(ctx context.Context, result *imports.ImportResult, content []byte) {
	if s.storage == nil {
		return
	}

	key, err := s.storage.Save(ctx, storage.ArchiveKey(result.Filename, s.now()), bytes.NewReader(content))
	if err != nil {
		s.logger.Warn("failed to archive upload", "batch_id", result.BatchID, "error", err)
		return
	}
	if err := s.repo.SetArchivePath(ctx, result.BatchID, key); err != nil {
		s.logger.Warn("failed to record archive path", "batch_id", result.BatchID, "error", err)
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned archive", "key", key, "error", delErr)
		}
	}
}

func (s *ImportServiceImpl) ListBatches(ctx context.Context) ([]imports.BatchResponse, error) {
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]imports.BatchResponse, 0, len(batches))
	for _, b := range batches {
		responses = append(responses, imports.NewBatchResponse(b))
	}
	return responses, nil
}

func (s *ImportServiceImpl) DeleteBatch(ctx context.Context, id int64) error {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBatch(ctx, id); err != nil {
		return err
	}

	if batch.ArchivePath != nil && s.storage != nil {
		if err := s.storage.Delete(ctx, *batch.ArchivePath); err != nil {
			s.logger.Warn("failed to delete archived upload", "batch_id", id, "error", err)
		}
	}

	s.logger.Info("import batch deleted", "batch_id", id, "rows", batch.RowCount)
	s.cache.Invalidate()
	return nil
}

func (s *ImportServiceImpl) OpenArchive(ctx context.Context, id int64) (io.ReadCloser, imports.ImportBatch, error) {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, imports.ImportBatch{}, err
	}
	if batch.ArchivePath == nil || s.storage == nil {
		return nil, imports.ImportBatch{}, imports.ErrNoArchive
	}

	rc, err := s.storage.Open(ctx, *batch.ArchivePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, imports.ImportBatch{}, imports.ErrNoArchive
		}
		return nil, imports.ImportBatch{}, err
	}
	return rc, batch, nil
}

func sanitizeFilename(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > maxExtensionLength {
			ext = ""
		}
		name = truncateUTF8(strings.TrimSuffix(name, ext), maxFilenameLength-len(ext)) + ext
	}
	return name
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, imports.ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, imports.ErrInvalidFileType):
		return "file_type"
	case errors.Is(err, imports.ErrEncoding):
		return "encoding"
	case errors.Is(err, imports.ErrInvalidRow):
		return "invalid_row"
	case errors.Is(err, imports.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, imports.ErrNoEntries):
		return "no_entries"
	case errors.Is(err, imports.ErrPersistence):
		return "persistence"
	default:
		return "other"
	}
}
