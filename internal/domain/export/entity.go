package export

import (
	"fmt"
	"strings"
	"time"
)

// Format is the rendering of an export. PDF is not offered.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a query value to a Format. Empty selects CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// PeriodKind tags a Period.
type PeriodKind int

const (
	PeriodYear PeriodKind = iota + 1
	PeriodMonth
)

// Period is either a whole year or one month of a year. Build it with
// YearPeriod or MonthPeriod.
type Period struct {
	Kind  PeriodKind
	Year  int
	Month time.Month
}

func YearPeriod(year int) Period {
	return Period{Kind: PeriodYear, Year: year}
}

func MonthPeriod(year int, month time.Month) Period {
	return Period{Kind: PeriodMonth, Year: year, Month: month}
}

// ParsePeriod builds a Period from query values. Month 0 selects the whole year.
func ParsePeriod(year, month int) (Period, error) {
	switch {
	case month == 0:
		return YearPeriod(year), nil
	case month >= 1 && month <= 12:
		return MonthPeriod(year, time.Month(month)), nil
	}
	return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
}

// Suffix names the period in file names: 2026 or 2026-02.
func (p Period) Suffix() string {
	if p.Kind == PeriodMonth {
		return fmt.Sprintf("%d-%02d", p.Year, int(p.Month))
	}
	return fmt.Sprintf("%d", p.Year)
}

// File is a rendered export ready to be sent as a download.
type File struct {
	Filename    string
	ContentType string
	Body        []byte
}
