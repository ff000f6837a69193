package hub

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the wall-clock timestamp format used by RM activity data.
const TimestampLayout = "2006-01-02T15:04:05"

// Dates and timestamps carry no zone semantics. UTC is only used as a neutral
// calendar so day arithmetic never trips over DST transitions.
var calendar = time.UTC

// ParseDate converts a YYYY-MM-DD string into a calendar date. Missing or
// malformed month/day components default to 1; a malformed year becomes 0.
// Out-of-range components roll over (month 13 is January of the next year).
func ParseDate(iso string) time.Time {
	parts := strings.Split(strings.TrimSpace(iso), "-")
	year := componentAt(parts, 0, 0)
	month := componentAt(parts, 1, 1)
	day := componentAt(parts, 2, 1)
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, calendar)
}

func componentAt(parts []string, idx, fallback int) int {
	if idx >= len(parts) {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[idx]))
	if err != nil || v == 0 {
		return fallback
	}
	return v
}

// FormatDate renders the date portion of t as zero-padded YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// AddDays applies a calendar day delta to an ISO date.
func AddDays(iso string, delta int) string {
	return FormatDate(ParseDate(iso).AddDate(0, 0, delta))
}

// ParseClock returns minutes since midnight for an HH:MM value. Malformed
// components count as zero.
func ParseClock(hhmm string) int {
	hh, mm, _ := strings.Cut(strings.TrimSpace(hhmm), ":")
	h, _ := strconv.Atoi(strings.TrimSpace(hh))
	m, _ := strconv.Atoi(strings.TrimSpace(mm))
	return h*60 + m
}

// FormatClock renders minutes since midnight as HH:MM, wrapping around the day.
func FormatClock(total int) string {
	m := ((total % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatRuntime renders a duration in minutes as "45m" or "2h 5m".
func FormatRuntime(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// AverageClock returns the rounded mean of HH:MM values.
func AverageClock(values []string) string {
	if len(values) == 0 {
		return "00:00"
	}
	sum := 0
	for _, v := range values {
		sum += ParseClock(v)
	}
	return FormatClock(int(math.Round(float64(sum) / float64(len(values)))))
}

// ParseTimestamp parses a wall-clock timestamp (2006-01-02T15:04:05).
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(value), calendar)
	if err != nil {
		return time.Time{}, fmt.Errorf("hub: parse timestamp %q: %w", value, err)
	}
	return t, nil
}

// Timestamp is a wall-clock instant carried in JSON as TimestampLayout.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON renders the timestamp without a zone; the zero value is null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON accepts TimestampLayout values, null and "".
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	value, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("hub: timestamp must be a string: %s", data)
	}
	if strings.TrimSpace(value) == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ClockOf returns the HH:MM portion of a timestamp.
func ClockOf(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MinutesBetween returns whole minutes from a to b, floored at zero.
func MinutesBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	return int(b.Sub(a) / time.Minute)
}

// EarliestTimestamp returns the earliest non-zero instant, or the zero time.
func EarliestTimestamp(values []time.Time) time.Time {
	var earliest time.Time
	for _, v := range values {
		if v.IsZero() {
			continue
		}
		if earliest.IsZero() || v.Before(earliest) {
			earliest = v
		}
	}
	return earliest
}
