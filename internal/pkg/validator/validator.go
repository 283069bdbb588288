package validator

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns v as an error, or nil when empty.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// HasMaxLength reports whether s has at most n characters.
func HasMaxLength(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidMonth checks a YYYY-MM month key.
func IsValidMonth(month string) (time.Time, bool) {
	if len(month) != 7 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01", month)
	return t, err == nil
}

// Years outside this range are rejected as report parameters.
const (
	MinYear = 2000
	MaxYear = 2100
)

func IsValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

// IsNonNegative reports whether an optional amount is absent or >= 0.
func IsNonNegative(d decimal.NullDecimal) bool {
	return !d.Valid || !d.Decimal.IsNegative()
}

var one = decimal.NewFromInt(1)

// IsFraction reports whether d lies in [0, 1].
func IsFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(one)
}

// FitsNumeric reports whether an optional amount, rounded to scale, fits a
// NUMERIC(precision, scale) column.
func FitsNumeric(d decimal.NullDecimal, precision, scale int32) bool {
	if !d.Valid {
		return true
	}
	return d.Decimal.Round(scale).Abs().LessThan(decimal.New(1, precision-scale))
}
