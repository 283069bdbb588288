package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	Finance(w http.ResponseWriter, r *http.Request)
	Revenue(w http.ResponseWriter, r *http.Request)
	Employees(w http.ResponseWriter, r *http.Request)
	Project(w http.ResponseWriter, r *http.Request)
	Customer(w http.ResponseWriter, r *http.Request)
	SaveNote(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Dashboard handles GET /reports/dashboard?as_of=YYYY-MM-DD
func (h *reportHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	var req report.DashboardRequest
	if v := r.URL.Query().Get("as_of"); v != "" {
		asOf, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.ValidationError(w, map[string]string{"as_of": "must be YYYY-MM-DD"})
			return
		}
		req.AsOf = &asOf
	}

	result, err := h.reportService.Dashboard(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Finance handles GET /reports/finance?year=&month=
func (h *reportHandlerImpl) Finance(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.reportService.Finance(r.Context(), report.FinanceRequest{Year: year, Month: month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Revenue handles GET /reports/revenue?year=
func (h *reportHandlerImpl) Revenue(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.reportService.Revenue(r.Context(), report.YearRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Employees handles GET /reports/employees?year=
func (h *reportHandlerImpl) Employees(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.reportService.Employees(r.Context(), report.YearRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Project handles GET /reports/project/{id}?month=
func (h *reportHandlerImpl) Project(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid project ID", nil)
		return
	}

	result, err := h.reportService.ProjectReport(r.Context(), report.ProjectReportRequest{
		ProjectID: id,
		Month:     r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Customer handles GET /reports/customer/{id}?month=YYYY-MM
func (h *reportHandlerImpl) Customer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid project ID", nil)
		return
	}

	result, err := h.reportService.CustomerReport(r.Context(), report.CustomerReportRequest{
		ProjectID: id,
		Month:     r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SaveNote handles PUT /reports/customer/{id}/notes?month=YYYY-MM
func (h *reportHandlerImpl) SaveNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid project ID", nil)
		return
	}

	var req report.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ProjectID = id
	req.Month = r.URL.Query().Get("month")

	result, err := h.reportService.SaveNote(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Note saved", result)
}
