package http

import (
	"net/http"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/export"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/handler/http/response"
)

type ExportHandler interface {
	Finance(w http.ResponseWriter, r *http.Request)
	Customer(w http.ResponseWriter, r *http.Request)
}

type exportHandlerImpl struct {
	exportService export.ExportService
	now           func() time.Time
}

func NewExportHandler(exportService export.ExportService, now func() time.Time) ExportHandler {
	return &exportHandlerImpl{exportService: exportService, now: now}
}

// Finance handles GET /exports/finance?year=&month=&format=csv|json
func (h *exportHandlerImpl) Finance(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if year == 0 {
		year = h.now().Year()
	}
	month, err := queryInt(r, "month")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	period, err := export.ParsePeriod(year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.exportService.Finance(r.Context(), export.FinanceExportRequest{Format: format, Period: period})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Download(w, file.Filename, file.ContentType, file.Body)
}

// Customer handles GET /exports/customer/{id}?month=YYYY-MM&format=csv|json
func (h *exportHandlerImpl) Customer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid project ID", nil)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.exportService.Customer(r.Context(), export.CustomerExportRequest{
		Format:    format,
		ProjectID: id,
		Month:     r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Download(w, file.Filename, file.ContentType, file.Body)
}
