// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/config"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/export"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/timeentry"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/amqp"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/metrics"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/sse"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/storage"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/repository/postgresql"
	exportService "github.com/bonustracker/bonus-tracker-backend-go/internal/service/export"
	importService "github.com/bonustracker/bonus-tracker-backend-go/internal/service/imports"
	projectService "github.com/bonustracker/bonus-tracker-backend-go/internal/service/project"
	reportService "github.com/bonustracker/bonus-tracker-backend-go/internal/service/report"
	timeEntryService "github.com/bonustracker/bonus-tracker-backend-go/internal/service/timeentry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	DB       *database.DB
	Registry *prometheus.Registry
	Metrics  *metrics.ImportMetrics
	// Events carries change notifications for the event stream.
	Events   *sse.Hub

	publisher *amqp.Publisher

	Projects    project.ProjectService
	Imports     imports.ImportService
	TimeEntries timeentry.TimeEntryService
	Reports     report.ReportService
	Exports     export.ExportService
}

// New connects to the database and builds every service. The caller owns
// the returned App and must Close it.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	fileStorage, err := newStorage(cfg.Storage)
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	importMetrics, err := metrics.NewImportMetrics(registry)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	now := func() time.Time { return time.Now().UTC() }
	tx := postgresql.NewTransactor(db)

	projectRepo := postgresql.NewProjectRepository(db)
	importRepo := postgresql.NewImportRepository(db)
	timeEntryRepo := postgresql.NewTimeEntryRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	reports := reportService.NewReportService(reportRepo, tx, cfg.Report.CacheTTL, importMetrics, now, logger)
	hub := sse.NewHub()
	changes := changeNotifier{cache: reports, hub: hub, now: now, logger: logger}

	var publisher *amqp.Publisher
	if cfg.Events.AMQPURL != "" {
		publisher, err = amqp.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect message broker: %w", err)
		}
		changes.broker = publisher
	}

	return &App{
		DB:          db,
		Registry:    registry,
		Metrics:     importMetrics,
		Events:      hub,
		publisher:   publisher,
		Projects:    projectService.NewProjectService(projectRepo, cfg.Import.DefaultBonusRate, changes, logger),
		Imports:     importService.NewImportService(tx, importRepo, fileStorage, importMetrics, changes, cfg.Import, now, logger),
		TimeEntries: timeEntryService.NewTimeEntryService(timeEntryRepo),
		Reports:     reports,
		Exports:     exportService.NewExportService(reports),
	}, nil
}

func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	a.DB.Close()
}

// SamplePool records the current database pool occupancy. It runs as a cron job.
func (a *App) SamplePool(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stat := a.DB.Pool.Stat()
	a.Metrics.RecordPoolStats(metrics.PoolStats{
		Total:    stat.TotalConns(),
		Idle:     stat.IdleConns(),
		Acquired: stat.AcquiredConns(),
	})
	return nil
}

func newStorage(cfg config.StorageConfig) (storage.FileStorage, error) {
	switch cfg.Type {
	case config.StorageLocal:
		s, err := storage.NewLocalStorage(cfg.BasePath)
		if err != nil {
			return nil, fmt.Errorf("initialize local storage: %w", err)
		}
		return s, nil
	case config.StorageNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
