package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/app"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/config"
	appHTTP "github.com/bonustracker/bonus-tracker-backend-go/internal/handler/http"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/cron"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const (
	shutdownTimeout = 15 * time.Second
	eventKeepalive  = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "bonus-tracker"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	// Money and hours go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
		return err
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
	}, appHTTP.Handlers{
		Project:   appHTTP.NewProjectHandler(a.Projects),
		Import:    appHTTP.NewImportHandler(a.Imports, cfg.Import.MaxBytes),
		TimeEntry: appHTTP.NewTimeEntryHandler(a.TimeEntries),
		Report:    appHTTP.NewReportHandler(a.Reports),
		Export:    appHTTP.NewExportHandler(a.Exports, time.Now),
		Events:    appHTTP.NewEventHandler(a.Events, eventKeepalive),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler(logger)
	scheduler.AddJob("db_pool_stats", cfg.App.PoolStatsInterval, a.SamplePool)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
