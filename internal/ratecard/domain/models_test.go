package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{" 09:15 ", 555, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidClockTime, "%q", tc.in)
			continue
		}
		require.NoError(t, err, "%q", tc.in)
		assert.Equal(t, tc.minutes, got, "%q", tc.in)
	}
}

func TestResolveRecurringPattern(t *testing.T) {
	cases := []struct {
		pattern string
		year    int
		want    time.Time
	}{
		{"december-25", 2026, time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)},
		{"january-1", 2027, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"first-monday-may", 2026, time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)},
		{"last-monday-may", 2026, time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC)},
		{"last-monday-august", 2026, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)},
		{"last-monday-august", 2025, time.Date(2025, time.August, 25, 0, 0, 0, 0, time.UTC)},
		{"Last-Monday-December", 2026, time.Date(2026, time.December, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ResolveRecurringPattern(tc.pattern, tc.year)
		require.NoError(t, err, tc.pattern)
		assert.True(t, got.Equal(tc.want), "%s in %d: got %s", tc.pattern, tc.year, got)
	}
}

func TestResolveRecurringPatternRejectsInvalid(t *testing.T) {
	for _, pattern := range []string{
		"",
		"someday",
		"fifth-monday-may",
		"first-funday-may",
		"first-monday-smarch",
		"february-30",
		"december-0",
	} {
		_, err := ResolveRecurringPattern(pattern, 2026)
		assert.ErrorIs(t, err, ErrInvalidRecurringPattern, "%q", pattern)
	}
}
