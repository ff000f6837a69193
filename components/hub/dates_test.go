package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDaysIdentity(t *testing.T) {
	for _, d := range []string{"2026-02-11", "2024-02-29", "1999-12-31", "2026-01-01"} {
		assert.Equal(t, d, AddDays(d, 0), d)
	}
}

func TestAddDaysRollover(t *testing.T) {
	cases := []struct {
		in    string
		delta int
		want  string
	}{
		{"2026-02-11", -1, "2026-02-10"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2026-01-01", -6, "2025-12-26"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AddDays(tc.in, tc.delta), "%s%+d", tc.in, tc.delta)
	}
}

func TestParseDateDefaultsMalformedComponents(t *testing.T) {
	assert.Equal(t, "2026-01-01", FormatDate(ParseDate("2026")))
	assert.Equal(t, "2026-01-05", FormatDate(ParseDate("2026-xx-05")))
	assert.Equal(t, "2026-07-01", FormatDate(ParseDate("2026-07-")))
}

func TestClockHelpers(t *testing.T) {
	assert.Equal(t, 990, ParseClock("16:30"))
	assert.Equal(t, "16:30", FormatClock(990))
	assert.Equal(t, "23:50", FormatClock(-10))
	assert.Equal(t, "00:05", FormatClock(1445))
	assert.Equal(t, "45m", FormatRuntime(45))
	assert.Equal(t, "1h 5m", FormatRuntime(65))
	assert.Equal(t, "00:00", AverageClock(nil))
	assert.Equal(t, "09:22", AverageClock([]string{"09:35", "09:18", "09:22", "09:08", "09:25"}))
}

func TestTimestamps(t *testing.T) {
	a, err := ParseTimestamp("2026-02-11T09:45:00")
	require.NoError(t, err)
	b, err := ParseTimestamp("2026-02-11T12:40:30")
	require.NoError(t, err)

	assert.Equal(t, "09:45", ClockOf(a))
	assert.Equal(t, 175, MinutesBetween(a, b))
	assert.Equal(t, 0, MinutesBetween(b, a))
	assert.Equal(t, a, EarliestTimestamp([]time.Time{b, {}, a}))
	assert.True(t, EarliestTimestamp(nil).IsZero())

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestTimestampJSON(t *testing.T) {
	var rm RM
	require.NoError(t, json.Unmarshal([]byte(`{"started_at":"2026-02-11T15:20:00","frc":null}`), &rm))
	assert.Equal(t, time.Date(2026, time.February, 11, 15, 20, 0, 0, time.UTC), rm.StartedAt.Time)
	assert.True(t, rm.FRC.IsZero())

	out, err := json.Marshal(rm)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"started_at":"2026-02-11T15:20:00"`)
	assert.Contains(t, string(out), `"frc":null`)

	require.Error(t, json.Unmarshal([]byte(`{"started_at":"2026-02-11T15:20:00+05:30"}`), &rm))
	require.Error(t, json.Unmarshal([]byte(`{"started_at":42}`), &rm))
}
