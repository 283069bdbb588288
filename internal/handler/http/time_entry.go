package http

import (
	"net/http"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/timeentry"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/handler/http/response"
)

type TimeEntryHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{timeEntryService: timeEntryService}
}

// List handles GET /time-entries?project_id=&month=&employee=&limit=&offset=
func (h *timeEntryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter timeentry.ListFilter

	projectID, err := queryInt(r, "project_id")
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if projectID != 0 {
		id := int64(projectID)
		filter.ProjectID = &id
	}
	filter.Month = queryString(r, "month")
	filter.Employee = queryString(r, "employee")

	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.timeEntryService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
