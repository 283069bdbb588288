package timesheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Clock is a time of day with second precision. The zero value is absent.
type Clock struct {
	Seconds int
	Valid   bool
}

// NewClock returns a valid Clock for the given components.
func NewClock(hour, minute, second int) Clock {
	return Clock{Seconds: hour*3600 + minute*60 + second, Valid: true}
}

// String formats c as HH:MM:SS, or "" when absent.
func (c Clock) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Seconds/3600, c.Seconds/60%60, c.Seconds%60)
}

var dateLayouts = []string{"2/1/2006", "2.1.2006", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM", "3:04PM"}

func parseClock(s string) (Clock, error) {
	if s == "" {
		return Clock{}, nil
	}
	v := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return Clock{}, fmt.Errorf("invalid time %q", s)
}

var secondsPerHour = decimal.NewFromInt(3600)

// MaxDuration is the largest entry duration in hours that can be stored.
var MaxDuration = decimal.RequireFromString("99999999.99")

const maxWholeHours = 99999999

// parseDuration accepts H:MM:SS, HH:MM or decimal hours with a dot or comma
// separator and returns hours rounded to two places.
func parseDuration(s string) (decimal.Decimal, error) {
	var hours decimal.Decimal
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return decimal.Zero, fmt.Errorf("invalid duration %q", s)
		}
		total := 0
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > maxWholeHours || (i > 0 && (n > 59 || len(p) != 2)) {
				return decimal.Zero, fmt.Errorf("invalid duration %q", s)
			}
			switch i {
			case 0:
				total += n * 3600
			case 1:
				total += n * 60
			case 2:
				total += n
			}
		}
		hours = decimal.NewFromInt(int64(total)).Div(secondsPerHour)
	} else {
		d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid duration %q", s)
		}
		hours = d
	}

	hours = hours.Round(2)
	if !hours.IsPositive() {
		return decimal.Zero, fmt.Errorf("duration must be positive, got %q", s)
	}
	if hours.GreaterThan(MaxDuration) {
		return decimal.Zero, fmt.Errorf("duration exceeds %s hours, got %q", MaxDuration, s)
	}
	return hours, nil
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "x", "ja", "y":
		return true
	}
	return false
}
