package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/handler/http/response"
)

// multipartOverhead allows for boundaries and part headers around the file.
const multipartOverhead = 1 << 20

type ImportHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type importHandlerImpl struct {
	importService imports.ImportService
	maxBytes      int64
}

func NewImportHandler(importService imports.ImportService, maxBytes int64) ImportHandler {
	return &importHandlerImpl{importService: importService, maxBytes: maxBytes}
}

// Upload handles POST /imports with a multipart "file" field.
func (h *importHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.HandleError(w, imports.ErrFileTooLarge)
			return
		}
		slog.Warn("failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Field 'file' is required", nil)
		return
	}
	defer file.Close()

	// Read one byte past the limit so the service can tell the file is too large.
	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	}

	result, err := h.importService.Import(r.Context(), imports.ImportRequest{
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "File imported successfully", result)
}

func (h *importHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.importService.ListBatches(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, batches)
}

func (h *importHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid import ID", nil)
		return
	}

	if err := h.importService.DeleteBatch(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Import deleted successfully", nil)
}

// Download handles GET /imports/{id}/file and streams the archived upload.
func (h *importHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid import ID", nil)
		return
	}

	rc, batch, err := h.importService.OpenArchive(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": batch.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("failed to stream archived import", "batch_id", id, "error", err)
	}
}
