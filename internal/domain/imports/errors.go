package imports

import (
	"errors"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/timesheet"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("only .csv files are accepted")
	ErrEncoding        = errors.New("file is not valid UTF-8 text")
	ErrNoEntries       = errors.New("file contains no time entries")
	ErrPersistence     = errors.New("failed to store import")
	ErrBatchNotFound   = errors.New("import batch not found")
	ErrNoArchive       = errors.New("import batch has no archived file")

	ErrMalformedInput = timesheet.ErrMalformedInput
	ErrInvalidRow     = timesheet.ErrInvalidRow
)
