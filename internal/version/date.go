package version

import (
	"time"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// DateLayout is the calendar date format accepted on the command line.
const DateLayout = "20060102"

// ParseDate parses a YYYYMMDD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewError("parseDate", errors.ErrInvalidInput).
			WithMessage("invalid timestamp format '" + s + "', use YYYYMMDD")
	}
	return t, nil
}

// EndOfDay returns 23:59:59.999999 UTC on the calendar date of t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999000, time.UTC)
}

// Cutoff parses a YYYYMMDD date and returns its end-of-day timestamp.
func Cutoff(s string) (time.Time, error) {
	day, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return EndOfDay(day), nil
}
