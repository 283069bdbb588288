package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/export"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	// Import errors
	case errors.Is(err, imports.ErrFileTooLarge), errors.As(err, &maxBytesErr):
		PayloadTooLarge(w, "Uploaded file is too large")
	case errors.Is(err, imports.ErrInvalidFileType):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, imports.ErrEncoding):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timesheet.ErrMalformedInput):
		BadRequest(w, "Malformed CSV file", rowDetails(err))
	case errors.Is(err, imports.ErrNoEntries):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, imports.ErrBatchNotFound):
		NotFound(w, "Import batch not found")
	case errors.Is(err, imports.ErrNoArchive):
		NotFound(w, "No archived file for this import")

	// Project errors
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")
	case errors.Is(err, project.ErrProjectIDExists):
		Conflict(w, "Project ID already exists")

	// Export errors
	case errors.Is(err, export.ErrUnsupportedFormat), errors.Is(err, export.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled request error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func rowDetails(err error) map[string]string {
	var rowErr *timesheet.RowError
	if !errors.As(err, &rowErr) {
		return map[string]string{"message": err.Error()}
	}
	details := map[string]string{
		"row":     strconv.Itoa(rowErr.Row),
		"message": rowErr.Message,
	}
	if rowErr.Field != "" {
		details["field"] = rowErr.Field
	}
	return details
}
