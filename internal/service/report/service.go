package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/metrics"
	"github.com/patrickmn/go-cache"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	tx         database.Transactor
	cache      *cache.Cache
	generation atomic.Uint64
	metrics    *metrics.ImportMetrics
	now        func() time.Time
	logger     *slog.Logger
}

// NewReportService builds the aggregator. Year-scoped reports are cached for
// cacheTTL; a zero TTL disables caching.
func NewReportService(
	reportRepo report.ReportRepository,
	tx database.Transactor,
	cacheTTL time.Duration,
	m *metrics.ImportMetrics,
	now func() time.Time,
	logger *slog.Logger,
) report.ReportService {
	s := &ReportServiceImpl{
		reportRepo: reportRepo,
		tx:         tx,
		metrics:    m,
		now:        now,
		logger:     logger.With("component", "report"),
	}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

func (s *ReportServiceImpl) Invalidate() {
	if s.cache == nil {
		return
	}
	s.generation.Add(1)
	s.cache.Flush()
	s.logger.Debug("report cache flushed")
}

// cached returns the value stored under key or computes and stores it. The
// key carries the database data version so writes made by another process
// miss the cache. A value computed across an Invalidate is returned but not
// stored.
func cached[T any](ctx context.Context, s *ReportServiceImpl, name, key string, compute func() (T, error)) (T, error) {
	if s.cache == nil {
		return compute()
	}

	gen := s.generation.Load()
	version, err := s.reportRepo.DataVersion(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	key = key + "@" + version

	if v, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(name, true)
		return v.(T), nil
	}
	s.metrics.RecordCacheLookup(name, false)

	v, err := compute()
	if err != nil {
		return v, err
	}
	if s.generation.Load() == gen {
		s.cache.SetDefault(key, v)
	}
	return v, nil
}

func (s *ReportServiceImpl) resolveYear(year int) int {
	if year == 0 {
		return s.now().Year()
	}
	return year
}

func (s *ReportServiceImpl) SaveNote(ctx context.Context, req report.SaveNoteRequest) (report.NoteResponse, error) {
	if err := req.Validate(); err != nil {
		return report.NoteResponse{}, err
	}

	if _, err := s.reportRepo.GetProject(ctx, req.ProjectID); err != nil {
		return report.NoteResponse{}, err
	}

	note, err := s.reportRepo.UpsertNote(ctx, req.ProjectID, req.Month, req.Note)
	if err != nil {
		return report.NoteResponse{}, fmt.Errorf("failed to save note: %w", err)
	}

	s.logger.Info("customer report note saved", "project_id", req.ProjectID, "month", req.Month)
	return report.NoteResponse{
		ID:        note.ID,
		ProjectID: note.ProjectID,
		Month:     note.Month,
		Note:      note.Note,
		UpdatedAt: note.UpdatedAt,
	}, nil
}
