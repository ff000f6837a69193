package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeStart(t *testing.T) {
	end := "2026-02-11"
	assert.Equal(t, end, RangeStart(end, Range1D, ""))
	assert.Equal(t, AddDays(end, -1), RangeStart(end, Range2D, ""))
	assert.Equal(t, AddDays(end, -6), RangeStart(end, Range7D, ""))
	assert.Equal(t, "2026-01-01", RangeStart(end, RangeCustom, "2026-01-01"))
	assert.Equal(t, end, RangeStart(end, RangeCustom, ""))
	assert.Equal(t, AddDays(end, -6), RangeStart(end, RangeKey("30D"), ""))
}

func TestInRangeIsInclusive(t *testing.T) {
	start, end := "2026-02-05", "2026-02-11"
	assert.True(t, InRange(start, start, end))
	assert.True(t, InRange(end, start, end))
	assert.False(t, InRange(AddDays(start, -1), start, end))
	assert.False(t, InRange(AddDays(end, 1), start, end))
}

func TestRatingHistogramPartitionsCompleted(t *testing.T) {
	visits := GenerateVisits("2026-02-11")
	for _, key := range []RangeKey{Range1D, Range2D, Range7D} {
		completed := CompletedInRange(visits, RangeStart("2026-02-11", key, ""), "2026-02-11")
		h := BuildRatingHistogram(completed)
		assert.Equal(t, len(completed), h.Total(), string(key))

		sum := 0
		for _, b := range h.Buckets() {
			sum += b.Count
			assert.Len(t, VisibleFeedback(completed, RatingFocus(b.Label)), b.Count, "%s bucket %s", key, b.Label)
		}
		assert.Equal(t, len(completed), sum)
	}

	week := CompletedInRange(visits, "2026-02-05", "2026-02-11")
	assert.Equal(t, RatingHistogram{Five: 3, Four: 2, Three: 1, Two: 2}, BuildRatingHistogram(week))

	today := CompletedInRange(visits, "2026-02-11", "2026-02-11")
	assert.Equal(t, RatingHistogram{Five: 2, Four: 1, Three: 1, Two: 1}, BuildRatingHistogram(today))
}

func TestNoFeedbackBucket(t *testing.T) {
	completed := []Visit{
		{ID: "1", Status: StatusCompleted, FeedbackRating: 4},
		{ID: "2", Status: StatusCompleted},
		{ID: "3", Status: StatusCompleted, FeedbackRating: 9},
	}
	h := BuildRatingHistogram(completed)
	assert.Equal(t, 2, h.NF)
	assert.Equal(t, []string{"2", "3"}, ids(VisibleFeedback(completed, FocusNF)))
	assert.Equal(t, []string{"1"}, ids(VisibleFeedback(completed, FocusRating(4))))
	assert.Len(t, VisibleFeedback(completed, FocusAllRatings), 3)
}

func TestParseRatingFocus(t *testing.T) {
	for _, v := range []string{"ALL", "NF", "1", "5"} {
		_, ok := ParseRatingFocus(v)
		assert.True(t, ok, v)
	}
	for _, v := range []string{"0", "6", "nf", ""} {
		_, ok := ParseRatingFocus(v)
		assert.False(t, ok, v)
	}
}

func TestRollupByRM(t *testing.T) {
	visits := GenerateVisits("2026-02-11")
	rows := RollupByRM(CompletedInRange(visits, "2026-02-05", "2026-02-11"))

	assert.Equal(t, []RMFeedbackRow{
		{RM: "Chetan Arora", Total: 3, AtOrAbove3: 3},
		{RM: "Aman Sharma", Total: 2, Below3: 1, AtOrAbove3: 1},
		{RM: "Neeraj Verma", Total: 2, AtOrAbove3: 2},
		{RM: "Badal Rajpoot", Total: 1, Below3: 1},
	}, rows)
}

func TestRollupByRMUnassigned(t *testing.T) {
	rows := RollupByRM([]Visit{
		{ID: "1", Status: StatusCompleted},
		{ID: "2", Status: StatusCompleted, RM: "Aman Sharma", FeedbackRating: 1},
		{ID: "3", Status: StatusCompleted, FeedbackRating: 5},
	})
	assert.Equal(t, []RMFeedbackRow{
		{RM: UnassignedRM, Total: 2, AtOrAbove3: 1, NF: 1},
		{RM: "Aman Sharma", Total: 1, Below3: 1},
	}, rows)
}
