package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// Handlers groups the API handlers mounted under /api/v1.
type Handlers struct {
	Project   ProjectHandler
	Import    ImportHandler
	TimeEntry TimeEntryHandler
	Report    ReportHandler
	Export    ExportHandler
	// Events is optional; /events is mounted when set.
	Events    EventHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: false,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Project.List)
			r.Post("/", h.Project.Create)
			r.Post("/bulk/status", h.Project.BulkUpdateStatus)
			r.Post("/bulk/delete", h.Project.BulkDelete)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Project.Get)
				r.Put("/", h.Project.Update)
				r.Patch("/", h.Project.Update)
				r.Delete("/", h.Project.Delete)
			})
		})

		r.Route("/imports", func(r chi.Router) {
			r.Get("/", h.Import.List)
			r.Post("/", h.Import.Upload)
			r.Delete("/{id}", h.Import.Delete)
			r.Get("/{id}/file", h.Import.Download)
		})

		r.Get("/time-entries", h.TimeEntry.List)

		if h.Events != nil {
			r.Get("/events", h.Events.Stream)
		}

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.Report.Dashboard)
			r.Get("/finance", h.Report.Finance)
			r.Get("/revenue", h.Report.Revenue)
			r.Get("/employees", h.Report.Employees)
			r.Get("/project/{id}", h.Report.Project)
			r.Get("/customer/{id}", h.Report.Customer)
			r.Put("/customer/{id}/notes", h.Report.SaveNote)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/finance", h.Export.Finance)
			r.Get("/customer/{id}", h.Export.Customer)
		})
	})
	return r
}
