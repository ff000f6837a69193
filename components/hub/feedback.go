package hub

import (
	"sort"
	"strconv"
)

// RangeKey selects the feedback window ending at the dashboard date.
type RangeKey string

const (
	Range1D     RangeKey = "1D"
	Range2D     RangeKey = "2D"
	Range7D     RangeKey = "7D"
	RangeCustom RangeKey = "CUSTOM"
)

// ParseRangeKey validates a range selector.
func ParseRangeKey(value string) (RangeKey, bool) {
	switch RangeKey(value) {
	case Range1D, Range2D, Range7D, RangeCustom:
		return RangeKey(value), true
	}
	return "", false
}

// RangeStart computes the inclusive start date for a window ending at end.
// CUSTOM uses customStart and falls back to end when it is blank; any
// unrecognised key behaves like 7D.
func RangeStart(end string, key RangeKey, customStart string) string {
	switch key {
	case RangeCustom:
		if customStart == "" {
			return end
		}
		return customStart
	case Range1D:
		return end
	case Range2D:
		return AddDays(end, -1)
	default:
		return AddDays(end, -6)
	}
}

// InRange reports whether the ISO date d lies in [start, end]. ISO dates sort
// lexicographically, so plain string comparison is sufficient.
func InRange(d, start, end string) bool {
	return d >= start && d <= end
}

// CompletedInRange keeps completed visits dated within [start, end].
func CompletedInRange(visits []Visit, start, end string) []Visit {
	out := make([]Visit, 0, len(visits))
	for _, v := range visits {
		if v.Status == StatusCompleted && InRange(v.Date, start, end) {
			out = append(out, v)
		}
	}
	return out
}

// RatingHistogram counts feedback ratings; anything outside 1-5 counts as NF.
type RatingHistogram struct {
	Five  int `json:"5"`
	Four  int `json:"4"`
	Three int `json:"3"`
	Two   int `json:"2"`
	One   int `json:"1"`
	NF    int `json:"NF"`
}

// RatingBucket is a labelled histogram entry.
type RatingBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Total returns the number of visits in the histogram.
func (h RatingHistogram) Total() int {
	return h.Five + h.Four + h.Three + h.Two + h.One + h.NF
}

// Buckets returns the histogram as ordered buckets: 5, 4, 3, 2, 1, NF.
func (h RatingHistogram) Buckets() []RatingBucket {
	return []RatingBucket{
		{Label: "5", Count: h.Five},
		{Label: "4", Count: h.Four},
		{Label: "3", Count: h.Three},
		{Label: "2", Count: h.Two},
		{Label: "1", Count: h.One},
		{Label: string(FocusNF), Count: h.NF},
	}
}

// BuildRatingHistogram buckets completed visits by rating.
func BuildRatingHistogram(completed []Visit) RatingHistogram {
	var h RatingHistogram
	for _, v := range completed {
		switch v.FeedbackRating {
		case 5:
			h.Five++
		case 4:
			h.Four++
		case 3:
			h.Three++
		case 2:
			h.Two++
		case 1:
			h.One++
		default:
			h.NF++
		}
	}
	return h
}

// RatingFocus filters the feedback list: ALL, NF or a single score "1".."5".
type RatingFocus string

const (
	FocusAllRatings RatingFocus = "ALL"
	FocusNF         RatingFocus = "NF"
)

// ParseRatingFocus validates a rating focus selector.
func ParseRatingFocus(value string) (RatingFocus, bool) {
	switch RatingFocus(value) {
	case FocusAllRatings, FocusNF:
		return RatingFocus(value), true
	}
	if n, err := strconv.Atoi(value); err == nil && Rating(n).Rated() {
		return RatingFocus(value), true
	}
	return "", false
}

// FocusRating builds the focus selector for a single score.
func FocusRating(r Rating) RatingFocus {
	return RatingFocus(strconv.Itoa(int(r)))
}

// VisibleFeedback narrows completed visits to the focused rating.
func VisibleFeedback(completed []Visit, focus RatingFocus) []Visit {
	if focus == FocusAllRatings || focus == "" {
		return append([]Visit(nil), completed...)
	}
	out := make([]Visit, 0, len(completed))
	for _, v := range completed {
		if focus == FocusNF {
			if !v.FeedbackRating.Rated() {
				out = append(out, v)
			}
			continue
		}
		if FocusRating(v.FeedbackRating) == focus {
			out = append(out, v)
		}
	}
	return out
}

// UnassignedRM buckets visits without a relationship manager.
const UnassignedRM = "Unassigned"

// RMFeedbackRow is the per-RM feedback rollup.
type RMFeedbackRow struct {
	RM         string `json:"rm"`
	Total      int    `json:"total"`
	Below3     int    `json:"below3"`
	AtOrAbove3 int    `json:"at_or_above3"`
	NF         int    `json:"nf"`
}

// RollupByRM aggregates completed visits per RM, sorted by total descending.
// Ties keep first-appearance order.
func RollupByRM(completed []Visit) []RMFeedbackRow {
	index := map[string]int{}
	rows := []RMFeedbackRow{}
	for _, v := range completed {
		name := v.RM
		if name == "" {
			name = UnassignedRM
		}
		idx, ok := index[name]
		if !ok {
			idx = len(rows)
			index[name] = idx
			rows = append(rows, RMFeedbackRow{RM: name})
		}
		row := &rows[idx]
		row.Total++
		switch {
		case !v.FeedbackRating.Rated():
			row.NF++
		case v.FeedbackRating < 3:
			row.Below3++
		default:
			row.AtOrAbove3++
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}
