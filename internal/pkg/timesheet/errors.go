package timesheet

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput means the CSV cannot be read as a timesheet at all.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidRow means a single row failed validation. It matches
	// ErrMalformedInput under errors.Is.
	ErrInvalidRow = fmt.Errorf("%w: invalid row", ErrMalformedInput)
)

// RowError locates a parse failure by CSV line number and column.
type RowError struct {
	Row     int
	Field   string
	Message string
	Kind    error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

func (e *RowError) Unwrap() error {
	return e.Kind
}

func invalidRow(row int, field, format string, args ...any) *RowError {
	return &RowError{Row: row, Field: field, Message: fmt.Sprintf(format, args...), Kind: ErrInvalidRow}
}

func malformed(row int, field, format string, args ...any) *RowError {
	return &RowError{Row: row, Field: field, Message: fmt.Sprintf(format, args...), Kind: ErrMalformedInput}
}
