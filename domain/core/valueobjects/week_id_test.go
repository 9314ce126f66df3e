package valueobjects

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "midweek",
			date: time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC),
			want: "2026-W06",
		},
		{
			name: "first day of year on a Thursday",
			date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2026-W01",
		},
		{
			name: "late December belongs to next year's week 1",
			date: time.Date(2024, 12, 30, 23, 59, 59, 0, time.UTC),
			want: "2025-W01",
		},
		{
			name: "January 1st belongs to previous year's last week",
			date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2022-W52",
		},
		{
			name: "53-week year",
			date: time.Date(2021, 1, 1, 8, 30, 0, 0, time.UTC),
			want: "2020-W53",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekOf(tt.date).String())
		})
	}
}

func TestWeekOf_MatchesISOWeek(t *testing.T) {
	// Sweep two years of days and compare against the standard library
	date := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 730; i++ {
		year, week := date.ISOWeek()
		want := fmt.Sprintf("%d-W%02d", year, week)
		assert.Equal(t, want, WeekOf(date).String(), "date %s", date.Format("2006-01-02"))
		date = date.AddDate(0, 0, 1)
	}
}

func TestWeekOf_StableAcrossWeek(t *testing.T) {
	// Monday through Sunday of one week resolve to the same id
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	want := WeekOf(monday)
	for i := 1; i < 7; i++ {
		assert.Equal(t, want, WeekOf(monday.AddDate(0, 0, i)))
	}
	assert.NotEqual(t, want, WeekOf(monday.AddDate(0, 0, 7)))
}

func TestNewWeekIDFromString(t *testing.T) {
	valid := []string{"2026-W06", "2020-W53", "1999-W01"}
	for _, s := range valid {
		id, err := NewWeekIDFromString(s)
		require.NoError(t, err)
		assert.Equal(t, s, id.String())
	}

	invalid := []string{"", "2026-06", "2026W06", "2026-W6", "26-W06", "2026-W061"}
	for _, s := range invalid {
		_, err := NewWeekIDFromString(s)
		assert.Error(t, err, "input %q", s)
	}
}
