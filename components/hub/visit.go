// Package hub holds the hub summary computations: visit, feedback, home test
// drive and relationship manager views derived from a small demo dataset.
// Everything here is a pure function of its inputs.
package hub

import (
	"context"
	"fmt"
	"strings"
)

// VisitType distinguishes showroom visits from home test drives.
type VisitType string

const (
	VisitHV  VisitType = "HV"
	VisitHTD VisitType = "HTD"
)

// VisitStatus is the lifecycle state of a visit.
type VisitStatus string

const (
	StatusScheduled VisitStatus = "SCHEDULED"
	StatusOngoing   VisitStatus = "ONGOING"
	StatusCompleted VisitStatus = "COMPLETED"
	StatusCancelled VisitStatus = "CANCELLED"
)

// VisitStatuses lists every status in display order.
var VisitStatuses = []VisitStatus{StatusCompleted, StatusOngoing, StatusScheduled, StatusCancelled}

// Rating is a 1-5 feedback score. The zero value means no feedback (NF).
type Rating int

// NoFeedback marks a completed visit without a recorded rating.
const NoFeedback Rating = 0

// Rated reports whether r is a usable 1-5 score.
func (r Rating) Rated() bool {
	return r >= 1 && r <= 5
}

// Visit is a single hub visit or home test drive.
type Visit struct {
	LeadID         string      `json:"lead_id"`
	ID             string      `json:"id"`
	Type           VisitType   `json:"type"`
	Date           string      `json:"date"`
	Time           string      `json:"time"`
	Customer       string      `json:"customer"`
	Car            string      `json:"car"`
	RM             string      `json:"rm,omitempty"`
	Status         VisitStatus `json:"status"`
	FeedbackRating Rating      `json:"feedback_rating,omitempty"`
	FeedbackText   string      `json:"feedback_text,omitempty"`
}

// EnsureLeadID keeps a non-blank lead id and otherwise derives LD-<10000+index>.
func EnsureLeadID(leadID string, index int) string {
	if raw := strings.TrimSpace(leadID); raw != "" {
		return raw
	}
	return fmt.Sprintf("LD-%d", 10000+index)
}

// NormalizeLeadIDs returns a copy of visits with every lead id populated.
func NormalizeLeadIDs(visits []Visit) []Visit {
	out := make([]Visit, len(visits))
	for i, v := range visits {
		v.LeadID = EnsureLeadID(v.LeadID, i)
		out[i] = v
	}
	return out
}

// GenerateVisits returns the demo visit log anchored at base (today), base-1
// and base-2. The same base date always yields the same records.
func GenerateVisits(base string) []Visit {
	d0 := base
	d1 := AddDays(base, -1)
	d2 := AddDays(base, -2)

	return []Visit{
		{LeadID: "LD-10101", ID: "1", Type: VisitHV, Date: d0, Time: "10:15", Customer: "Amit Kumar", Car: "Swift ZXi", RM: "Aman Sharma", Status: StatusCompleted, FeedbackRating: 4, FeedbackText: "Polite staff, good demo."},
		{LeadID: "LD-10102", ID: "2", Type: VisitHTD, Date: d0, Time: "11:30", Customer: "Sandeep R.", Car: "Baleno Alpha", RM: "Chetan Arora", Status: StatusCompleted, FeedbackRating: 5, FeedbackText: "Excellent experience!"},
		{LeadID: "LD-10103", ID: "3", Type: VisitHV, Date: d0, Time: "12:15", Customer: "Varun T.", Car: "Verna SX", RM: "Badal Rajpoot", Status: StatusCompleted, FeedbackRating: 2, FeedbackText: "Car wasn't clean."},
		{LeadID: "LD-10104", ID: "4", Type: VisitHTD, Date: d0, Time: "13:00", Customer: "Neeraj V.", Car: "Creta SX(O)", RM: "Chetan Arora", Status: StatusCompleted, FeedbackRating: 5},
		{LeadID: "LD-10105", ID: "5", Type: VisitHV, Date: d0, Time: "14:30", Customer: "Pooja M.", Car: "Grand i10", RM: "Mehul Singh", Status: StatusCancelled},
		{LeadID: "LD-10106", ID: "6", Type: VisitHV, Date: d0, Time: "13:30", Customer: "Ritika M.", Car: "City ZX", RM: "Neeraj Verma", Status: StatusCompleted, FeedbackRating: 3, FeedbackText: "Okayish."},
		{LeadID: "LD-10107", ID: "7", Type: VisitHTD, Date: d0, Time: "16:00", Customer: "Sahil Verma", Car: "Thar 4x4", RM: "Mehul Singh", Status: StatusOngoing},
		{LeadID: "LD-10108", ID: "8", Type: VisitHV, Date: d0, Time: "16:15", Customer: "Vivek S.", Car: "Brezza ZXi", RM: "Badal Rajpoot", Status: StatusOngoing},
		{LeadID: "LD-10109", ID: "9", Type: VisitHTD, Date: d0, Time: "17:00", Customer: "Priya G.", Car: "Nexon EV", RM: "Aman Sharma", Status: StatusScheduled},
		{LeadID: "LD-10110", ID: "10", Type: VisitHV, Date: d0, Time: "18:30", Customer: "Arjun B.", Car: "Scorpio-N", Status: StatusScheduled},

		{LeadID: "LD-10023", ID: "11", Type: VisitHV, Date: d1, Time: "12:30", Customer: "Nikhil P.", Car: "i20 Asta", RM: "Aman Sharma", Status: StatusCompleted, FeedbackRating: 2, FeedbackText: "Delay in arrival"},
		{LeadID: "LD-10034", ID: "12", Type: VisitHTD, Date: d1, Time: "15:40", Customer: "Diya S.", Car: "Venue SX", RM: "Neeraj Verma", Status: StatusCompleted, FeedbackRating: 5},

		{LeadID: "LD-10042", ID: "13", Type: VisitHV, Date: d2, Time: "10:45", Customer: "Rhea S.", Car: "Amaze VX", RM: "Chetan Arora", Status: StatusCompleted, FeedbackRating: 4, FeedbackText: "Smooth process"},
	}
}

// VisitRepository loads the visit log for a base date.
type VisitRepository interface {
	FetchVisits(ctx context.Context, baseDate string) ([]Visit, error)
}

// DemoVisitRepository serves GenerateVisits with normalized lead ids.
type DemoVisitRepository struct{}

// FetchVisits implements VisitRepository.
func (DemoVisitRepository) FetchVisits(_ context.Context, baseDate string) ([]Visit, error) {
	return NormalizeLeadIDs(GenerateVisits(baseDate)), nil
}
