package hub

import (
	"sort"
	"strconv"
)

// Scope narrows the visit log by visit type.
type Scope string

const (
	ScopeAll Scope = "ALL"
	ScopeHV  Scope = Scope(VisitHV)
	ScopeHTD Scope = Scope(VisitHTD)
)

// ParseScope validates a scope selector.
func ParseScope(value string) (Scope, bool) {
	switch Scope(value) {
	case ScopeAll, ScopeHV, ScopeHTD:
		return Scope(value), true
	}
	return "", false
}

// FocusAll disables the status focus filter.
const FocusAll VisitStatus = "ALL"

// ParseFocusStatus validates a status focus selector (ALL or a visit status).
func ParseFocusStatus(value string) (VisitStatus, bool) {
	status := VisitStatus(value)
	if status == FocusAll {
		return status, true
	}
	for _, s := range VisitStatuses {
		if s == status {
			return status, true
		}
	}
	return "", false
}

// SortOrder selects how the visible visit list is ordered.
type SortOrder string

const (
	// OrderConcatenated sorts by the string key time+id. Ids are compared as
	// text, so "10" sorts before "2" within the same time slot.
	OrderConcatenated SortOrder = "concatenated"
	// OrderNatural sorts by clock time, then by numeric id when both ids are numbers.
	OrderNatural SortOrder = "natural"
)

// ParseSortOrder validates a sort order selector.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch SortOrder(value) {
	case OrderConcatenated, OrderNatural:
		return SortOrder(value), true
	}
	return "", false
}

// ScopeVisits keeps every visit for ScopeAll (or an empty scope) and only the
// matching type otherwise.
func ScopeVisits(visits []Visit, scope Scope) []Visit {
	if scope == ScopeAll || scope == "" {
		return append([]Visit(nil), visits...)
	}
	out := make([]Visit, 0, len(visits))
	for _, v := range visits {
		if Scope(v.Type) == scope {
			out = append(out, v)
		}
	}
	return out
}

// VisitCounts summarizes a scoped visit log.
type VisitCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Ongoing   int `json:"ongoing"`
	Scheduled int `json:"scheduled"`
	Cancelled int `json:"cancelled"`
}

// ForStatus returns the count for a status, or Total for FocusAll.
func (c VisitCounts) ForStatus(status VisitStatus) int {
	switch status {
	case StatusCompleted:
		return c.Completed
	case StatusOngoing:
		return c.Ongoing
	case StatusScheduled:
		return c.Scheduled
	case StatusCancelled:
		return c.Cancelled
	}
	return c.Total
}

// CountVisits tallies total and per-status counts.
func CountVisits(scoped []Visit) VisitCounts {
	counts := VisitCounts{Total: len(scoped)}
	for _, v := range scoped {
		switch v.Status {
		case StatusCompleted:
			counts.Completed++
		case StatusOngoing:
			counts.Ongoing++
		case StatusScheduled:
			counts.Scheduled++
		case StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

// VisibleVisits filters scoped visits to the focused status (FocusAll or
// empty keeps everything) and sorts them ascending.
func VisibleVisits(scoped []Visit, focus VisitStatus, order SortOrder) []Visit {
	out := make([]Visit, 0, len(scoped))
	for _, v := range scoped {
		if focus == FocusAll || focus == "" || v.Status == focus {
			out = append(out, v)
		}
	}
	less := concatenatedLess
	if order == OrderNatural {
		less = naturalLess
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func concatenatedLess(a, b Visit) bool {
	return a.Time+a.ID < b.Time+b.ID
}

func naturalLess(a, b Visit) bool {
	ta, tb := ParseClock(a.Time), ParseClock(b.Time)
	if ta != tb {
		return ta < tb
	}
	na, errA := strconv.Atoi(a.ID)
	nb, errB := strconv.Atoi(b.ID)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a.ID < b.ID
}
