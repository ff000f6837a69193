package hub

import (
	"context"
	"sort"
)

// HTDStage is the control-tower lane of a home test drive.
type HTDStage string

const (
	StageUpcoming  HTDStage = "upcoming"
	StageOngoing   HTDStage = "ongoing"
	StageCancelled HTDStage = "cancelled"
	StageCompleted HTDStage = "completed"
)

// HTDStages lists the stages in control-tower order.
var HTDStages = []HTDStage{StageUpcoming, StageOngoing, StageCompleted, StageCancelled}

// ParseHTDStage validates a stage selector.
func ParseHTDStage(value string) (HTDStage, bool) {
	for _, s := range HTDStages {
		if string(s) == value {
			return s, true
		}
	}
	return "", false
}

// CallStatus records whether the pre-visit confirmation call happened.
type CallStatus string

const (
	CallYes  CallStatus = "yes"
	CallNo   CallStatus = "no"
	CallLate CallStatus = "late"
	CallNA   CallStatus = "na"
)

// RMStatus is the live whereabouts of the RM assigned to a test drive.
type RMStatus string

const (
	RMIdle         RMStatus = "Idle"
	RMAtHub        RMStatus = "At Hub"
	RMDriving      RMStatus = "Driving"
	RMCheckedOut   RMStatus = "Checked-out"
	RMAtCustomer   RMStatus = "At Customer"
	RMReturning    RMStatus = "Returning"
	RMVisitRunning RMStatus = "Visit Running"
)

// Dispatched reports whether the RM has already left for the customer.
func (s RMStatus) Dispatched() bool {
	return s == RMDriving || s == RMCheckedOut
}

// TokenStatus marks whether a booking token was collected.
type TokenStatus string

const (
	TokenYes TokenStatus = "yes"
	TokenNo  TokenStatus = "no"
)

// HTDRow is a control-tower row. Pointer fields distinguish "not recorded"
// from a zero value.
type HTDRow struct {
	LeadID              string      `json:"lead_id"`
	CustomerName        string      `json:"customer_name"`
	RMName              string      `json:"rm_name"`
	RMStatus            RMStatus    `json:"rm_status,omitempty"`
	Slot                string      `json:"slot"`
	Stage               HTDStage    `json:"stage"`
	Call                CallStatus  `json:"call,omitempty"`
	TravelMins          *int        `json:"travel_mins,omitempty"`
	EstTravelMins       *int        `json:"est_travel_mins,omitempty"`
	CheckoutTime        *string     `json:"checkout_time,omitempty"`
	CheckinTime         *string     `json:"checkin_time,omitempty"`
	ReachCustomerMins   *int        `json:"reach_customer_mins,omitempty"`
	ReturnToHubMins     *int        `json:"return_to_hub_mins,omitempty"`
	VisitDurationMins   *int        `json:"visit_duration_mins,omitempty"`
	IdleButLateCheckout *bool       `json:"idle_but_late_checkout,omitempty"`
	ETABackToHub        *string     `json:"eta_back_to_hub,omitempty"`
	EstTotalMins        *int        `json:"est_total_mins,omitempty"`
	ActualMins          *int        `json:"actual_mins,omitempty"`
	Token               TokenStatus `json:"token,omitempty"`
	FeedbackRating      Rating      `json:"feedback_rating,omitempty"`
	DidFollowUp         *bool       `json:"did_follow_up,omitempty"`
	CancelReason        string      `json:"cancel_reason,omitempty"`
	Notes               string      `json:"notes,omitempty"`
}

// Travel returns the planned travel minutes, zero when unknown.
func (r HTDRow) Travel() int {
	if r.TravelMins == nil {
		return 0
	}
	return *r.TravelMins
}

// LeaveBy returns the latest safe departure as minutes since midnight.
func (r HTDRow) LeaveBy() int {
	return ParseClock(r.Slot) - r.Travel()
}

// MinutesUntilLeave is negative once the departure window has passed.
func (r HTDRow) MinutesUntilLeave(now string) int {
	return r.LeaveBy() - ParseClock(now)
}

// NeedsAttention returns upcoming drives whose latest departure time has
// arrived while the RM has not been dispatched, sorted by slot.
func NeedsAttention(rows []HTDRow, now string) []HTDRow {
	nowMins := ParseClock(now)
	out := []HTDRow{}
	for _, r := range rows {
		if r.Stage != StageUpcoming || r.Travel() <= 0 {
			continue
		}
		if nowMins >= r.LeaveBy() && !r.RMStatus.Dispatched() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return ParseClock(out[i].Slot) < ParseClock(out[j].Slot) })
	return out
}

// FilterStage keeps rows in the given stage.
func FilterStage(rows []HTDRow, stage HTDStage) []HTDRow {
	out := []HTDRow{}
	for _, r := range rows {
		if r.Stage == stage {
			out = append(out, r)
		}
	}
	return out
}

// StageCounts tallies rows per stage.
type StageCounts struct {
	Upcoming  int `json:"upcoming"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// CountStages tallies rows per stage.
func CountStages(rows []HTDRow) StageCounts {
	var c StageCounts
	for _, r := range rows {
		switch r.Stage {
		case StageUpcoming:
			c.Upcoming++
		case StageOngoing:
			c.Ongoing++
		case StageCompleted:
			c.Completed++
		case StageCancelled:
			c.Cancelled++
		}
	}
	return c
}

// HTDRepository loads the base control-tower rows.
type HTDRepository interface {
	FetchHTDRows(ctx context.Context) ([]HTDRow, error)
}

// DemoHTDRepository serves DemoHTDRows.
type DemoHTDRepository struct{}

// FetchHTDRows implements HTDRepository.
func (DemoHTDRepository) FetchHTDRows(context.Context) ([]HTDRow, error) {
	return DemoHTDRows(), nil
}

// DemoHTDRows returns a fresh copy of the demo control-tower dataset.
func DemoHTDRows() []HTDRow {
	return []HTDRow{
		{LeadID: "LD-10109", CustomerName: "Priya G.", RMName: "Aman Sharma", RMStatus: RMAtHub, Slot: "17:00", TravelMins: intPtr(35), Call: CallNA, Stage: StageUpcoming, Notes: "Customer requested EV specific demo."},
		{LeadID: "LD-2002", CustomerName: "Karan Johar", RMName: "Chetan Arora", RMStatus: RMCheckedOut, Slot: "19:00", TravelMins: intPtr(45), Call: CallYes, Stage: StageUpcoming},
		{LeadID: "LD-2003", CustomerName: "Ananya Panday", RMName: "Badal Rajpoot", RMStatus: RMIdle, Slot: "20:30", TravelMins: intPtr(25), Call: CallNA, Stage: StageUpcoming},

		{LeadID: "LD-10107", CustomerName: "Sahil Verma", RMName: "Mehul Singh", Slot: "16:00", Call: CallYes, Stage: StageOngoing, EstTravelMins: intPtr(25), CheckoutTime: strPtr("15:20"), ReachCustomerMins: intPtr(28), CheckinTime: strPtr("15:55"), VisitDurationMins: intPtr(35), IdleButLateCheckout: boolPtr(false), ETABackToHub: strPtr("17:15"), Notes: "Thar 4x4 test drive currently active."},
		{LeadID: "LD-3005", CustomerName: "Ritik Roshan", RMName: "Neeraj Verma", Slot: "15:00", Call: CallLate, Stage: StageOngoing, EstTravelMins: intPtr(30), CheckoutTime: strPtr("14:40"), ReachCustomerMins: intPtr(35), CheckinTime: strPtr("15:15"), VisitDurationMins: intPtr(75), IdleButLateCheckout: boolPtr(false), ETABackToHub: strPtr("16:45"), Notes: "Customer asking many questions; visit extended."},

		{LeadID: "LD-10104", CustomerName: "Neeraj V.", RMName: "Chetan Arora", Slot: "13:00", Call: CallYes, Stage: StageCompleted, EstTotalMins: intPtr(70), ActualMins: intPtr(65), Token: TokenYes, FeedbackRating: 5},
		{LeadID: "LD-10102", CustomerName: "Sandeep R.", RMName: "Chetan Arora", Slot: "11:30", Call: CallYes, Stage: StageCompleted, EstTotalMins: intPtr(60), ActualMins: intPtr(55), Token: TokenNo, FeedbackRating: 5, Notes: "Customer loved the car but budget constraint."},

		{LeadID: "LD-1001", CustomerName: "Nikhil", RMName: "Aman Sharma", Slot: "12:00", Call: CallNo, Stage: StageCancelled, Notes: "Phone switched off."},
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
