package conditions

import (
	"fmt"
	"time"
)

// DefaultTimezone is the resort's local zone used for display dates.
const DefaultTimezone = "America/Denver"

// OrdinalSuffix returns the English ordinal suffix for a day of the month.
// 11, 12 and 13 take "th"; otherwise the last digit decides.
func OrdinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatDisplayDate renders t in loc like "Jan 31st". A nil loc keeps t's
// own location.
func FormatDisplayDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s %d%s", t.Format("Jan"), t.Day(), OrdinalSuffix(t.Day()))
}

// LoadLocation resolves a timezone name, falling back to DefaultTimezone
// when name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}
