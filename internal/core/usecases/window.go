package usecases

import (
	"fmt"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// DateLayout is the accepted format of date query values.
const DateLayout = "2006-01-02"

// DayWindow returns the inclusive range [00:00:00, 23:59:59] of date in loc.
// Both ends are wall-clock times, so 23- and 25-hour DST days are covered.
func DayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, date)
	}
	return day, time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc), nil
}
