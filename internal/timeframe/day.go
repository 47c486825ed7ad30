// Package timeframe provides calendar-day arithmetic shared by the analytics
// and churn packages. All bucketing is UTC day granularity.
package timeframe

import (
	"strings"
	"time"
)

// Day is a calendar day at UTC midnight. Using a truncated time.Time keeps the
// type comparable and usable as a map key.
type Day struct {
	t time.Time
}

// DayOf floors a timestamp to its UTC calendar day.
func DayOf(ts time.Time) Day {
	u := ts.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time returns the day as a time.Time at UTC midnight.
func (d Day) Time() time.Time {
	return d.t
}

// AddDays returns the day offset by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d falls before other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// After reports whether d falls after other.
func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

// DaysSince returns the whole-day span from earlier to d.
func (d Day) DaysSince(earlier Day) int {
	return int(d.t.Sub(earlier.t) / (24 * time.Hour))
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return d.t.Format("2006-01-02")
}

// IsZero reports whether the day is the zero value.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// MarshalJSON renders the day as a quoted YYYY-MM-DD string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Day) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = DayOf(t)
	return nil
}

// Window is an inclusive day range.
type Window struct {
	From Day
	To   Day
}

// TrailingWindow returns the window of n days ending on last, inclusive.
// TrailingWindow(d, 7) spans [d-6, d].
func TrailingWindow(last Day, n int) Window {
	return Window{From: last.AddDays(-(n - 1)), To: last}
}

// Contains reports whether the day falls inside the window, boundaries included.
func (w Window) Contains(d Day) bool {
	return !d.Before(w.From) && !d.After(w.To)
}
