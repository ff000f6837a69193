package hub

import "fmt"

// Severity ranks an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// LongVisitMinutes is the runtime after which an ongoing visit raises a warning.
const LongVisitMinutes = 60

// Alert is one entry in the live alert feed.
type Alert struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Time     string   `json:"time"`
}

// AlertInput collects the views the alert feed is derived from.
type AlertInput struct {
	Attention        []HTDRow
	Visits           []Visit
	CompletedInRange []Visit
	Now              string
}

// BuildAlerts emits dispatch alerts for attention rows, warnings for ongoing
// visits running past LongVisitMinutes and critical alerts for ratings below 3.
func BuildAlerts(in AlertInput) []Alert {
	nowMins := ParseClock(in.Now)
	out := []Alert{}

	for _, row := range in.Attention {
		out = append(out, Alert{
			ID:       "htd-" + row.LeadID,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("HTD Dispatch: %s (%s). Leave in %dm.", row.CustomerName, row.Slot, row.MinutesUntilLeave(in.Now)),
			Time:     FormatClock(nowMins),
		})
	}

	for _, v := range in.Visits {
		if v.Status != StatusOngoing {
			continue
		}
		running := nowMins - ParseClock(v.Time)
		if running > LongVisitMinutes {
			out = append(out, Alert{
				ID:       "hv-" + v.ID,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Long Visit: %s running for %dm.", v.Customer, running),
				Time:     v.Time,
			})
		}
	}

	for _, v := range in.CompletedInRange {
		if !v.FeedbackRating.Rated() || v.FeedbackRating >= 3 {
			continue
		}
		rm := v.RM
		if rm == "" {
			rm = UnassignedRM
		}
		out = append(out, Alert{
			ID:       "fb-" + v.ID,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Low Rating (%d★): %s (%s).", v.FeedbackRating, v.Customer, rm),
			Time:     v.Time,
		})
	}
	return out
}
