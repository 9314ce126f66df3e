package valueobjects

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var weekIDPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// WeekID identifies a calendar week bucket, e.g. "2026-W06". Weeks follow
// ISO-8601 numbering: a week belongs to the year containing its Thursday, so
// every day of the same Mon-Sun week maps to the same WeekID.
type WeekID struct {
	value string
}

// WeekOf computes the WeekID for the week containing t
func WeekOf(t time.Time) WeekID {
	// Shift to the Thursday of this week, with Sunday counted as day 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dow := int(d.Weekday())
	if dow == 0 {
		dow = 7
	}
	d = d.AddDate(0, 0, 4-dow)

	// Week number is the 1-based count of 7-day blocks since Jan 1 of the
	// Thursday's year.
	week := (d.YearDay() + 6) / 7

	return WeekID{value: fmt.Sprintf("%d-W%02d", d.Year(), week)}
}

// NewWeekIDFromString creates a WeekID from an existing string
func NewWeekIDFromString(s string) (WeekID, error) {
	if !weekIDPattern.MatchString(s) {
		return WeekID{}, errors.New("week ID must look like 2026-W06")
	}
	return WeekID{value: s}, nil
}

func (w WeekID) String() string        { return w.value }
func (w WeekID) Equals(o WeekID) bool  { return w.value == o.value }
func (w WeekID) IsZero() bool          { return w.value == "" }
