package hub

import (
	"context"
	"math"
	"sort"
	"time"
)

// DemoClock is the frozen time of day the demo control tower runs at.
const DemoClock = "16:30"

// DemoRMNow is the frozen instant used for RM productivity figures.
var DemoRMNow = time.Date(2026, time.February, 11, 12, 40, 0, 0, calendar)

// Activity is what an RM is doing right now.
type Activity string

const (
	ActivityHV   Activity = "HV"
	ActivityHTD  Activity = "HTD"
	ActivityIdle Activity = "IDLE"
)

// ScheduleState is the progress of a schedule entry.
type ScheduleState string

const (
	ScheduleDone     ScheduleState = "done"
	ScheduleOngoing  ScheduleState = "ongoing"
	ScheduleUpcoming ScheduleState = "upcoming"
)

// ScheduleItem is one entry on an RM's day plan.
type ScheduleItem struct {
	At             string        `json:"at"`
	Type           Activity      `json:"type"`
	State          ScheduleState `json:"state"`
	LeadID         string        `json:"lead_id"`
	DurationMin    int           `json:"duration_min,omitempty"`
	Token          TokenStatus   `json:"token,omitempty"`
	FeedbackRating Rating        `json:"feedback_rating,omitempty"`
}

// Counters groups the visit/token/delivery/feedback tallies of a period.
type Counters struct {
	Visits         int `json:"visits"`
	Tokens         int `json:"tokens"`
	Deliveries     int `json:"deliveries"`
	FeedbackFilled int `json:"feedback_filled"`
}

// Add returns the element-wise sum.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Visits:         c.Visits + o.Visits,
		Tokens:         c.Tokens + o.Tokens,
		Deliveries:     c.Deliveries + o.Deliveries,
		FeedbackFilled: c.FeedbackFilled + o.FeedbackFilled,
	}
}

// RM is a relationship manager's live record.
type RM struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Now           Activity       `json:"now"`
	Customer      string         `json:"customer,omitempty"`
	CurrentLeadID string         `json:"current_lead_id,omitempty"`
	StartedAt     Timestamp      `json:"started_at"`
	FRC           Timestamp      `json:"frc"`
	FRCAvgMTD     string         `json:"frc_avg_mtd,omitempty"`
	Location      string         `json:"location"`
	Today         Counters       `json:"today"`
	MTD           Counters       `json:"mtd"`
	Schedule      []ScheduleItem `json:"schedule"`
}

// RMProductivity is the derived productivity row for one RM.
type RMProductivity struct {
	RM
	Runtime         int           `json:"runtime"`
	RuntimeLabel    string        `json:"runtime_label"`
	MinutesSinceFRC int           `json:"minutes_since_frc"`
	BusyDone        int           `json:"busy_done"`
	BusyOngoing     int           `json:"busy_ongoing"`
	Utilization     int           `json:"utilization"`
	HVDone          int           `json:"hv_done"`
	HTDDone         int           `json:"htd_done"`
	NextHTD         *ScheduleItem `json:"next_htd,omitempty"`
}

// UtilizationRate returns round(100*busy/elapsed), or 0 when elapsed is not
// positive. Values above 100 are kept as is.
func UtilizationRate(busy, elapsed int) int {
	if elapsed <= 0 {
		return 0
	}
	rate := int(math.Round(float64(busy) * 100 / float64(elapsed)))
	if rate < 0 {
		return 0
	}
	return rate
}

// Productivity derives the productivity row for a single RM at now.
func Productivity(rm RM, now time.Time) RMProductivity {
	row := RMProductivity{RM: rm}
	row.Runtime = MinutesBetween(rm.StartedAt.Time, now)
	row.RuntimeLabel = FormatRuntime(row.Runtime)
	row.MinutesSinceFRC = MinutesBetween(rm.FRC.Time, now)
	for i, item := range rm.Schedule {
		if item.State == ScheduleDone {
			row.BusyDone += item.DurationMin
			switch item.Type {
			case ActivityHV:
				row.HVDone++
			case ActivityHTD:
				row.HTDDone++
			}
		}
		if row.NextHTD == nil && item.Type == ActivityHTD && item.State == ScheduleUpcoming {
			next := rm.Schedule[i]
			row.NextHTD = &next
		}
	}
	if rm.Now != ActivityIdle {
		row.BusyOngoing = row.Runtime
	}
	row.Utilization = UtilizationRate(row.BusyDone+row.BusyOngoing, row.MinutesSinceFRC)
	return row
}

// ComputeProductivity derives a row per RM, lowest utilization first. Ties
// keep input order.
func ComputeProductivity(rms []RM, now time.Time) []RMProductivity {
	rows := make([]RMProductivity, 0, len(rms))
	for _, rm := range rms {
		rows = append(rows, Productivity(rm, now))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Utilization < rows[j].Utilization })
	return rows
}

// HubTotals is the hub-wide rollup across every RM.
type HubTotals struct {
	RMCount   int       `json:"rm_count"`
	FRC       Timestamp `json:"frc"`
	FRCClock  string    `json:"frc_clock"`
	FRCAvgMTD string    `json:"frc_avg_mtd"`
	Today     Counters  `json:"today"`
	MTD       Counters  `json:"mtd"`
}

// HubAggregate sums counters across RMs. The hub FRC is the earliest RM FRC
// (now when none is recorded); the monthly FRC averages each RM's monthly
// figure, using the clock of its FRC when the monthly figure is missing.
func HubAggregate(rms []RM, now time.Time) HubTotals {
	totals := HubTotals{RMCount: len(rms)}
	frcs := make([]time.Time, 0, len(rms))
	monthly := make([]string, 0, len(rms))
	for _, rm := range rms {
		totals.Today = totals.Today.Add(rm.Today)
		totals.MTD = totals.MTD.Add(rm.MTD)
		frcs = append(frcs, rm.FRC.Time)
		if rm.FRCAvgMTD != "" {
			monthly = append(monthly, rm.FRCAvgMTD)
		} else {
			monthly = append(monthly, ClockOf(rm.FRC.Time))
		}
	}
	totals.FRC = At(EarliestTimestamp(frcs))
	if totals.FRC.IsZero() {
		totals.FRC = At(now)
	}
	totals.FRCClock = ClockOf(totals.FRC.Time)
	totals.FRCAvgMTD = AverageClock(monthly)
	return totals
}

// RMRepository loads the RM roster.
type RMRepository interface {
	FetchRMs(ctx context.Context) ([]RM, error)
}

// DemoRMRepository serves DemoRMs.
type DemoRMRepository struct{}

// FetchRMs implements RMRepository.
func (DemoRMRepository) FetchRMs(context.Context) ([]RM, error) {
	return DemoRMs(), nil
}

// DemoRMs returns a fresh copy of the demo roster.
func DemoRMs() []RM {
	at := func(hh, mm int) Timestamp {
		return At(time.Date(2026, time.February, 11, hh, mm, 0, 0, calendar))
	}
	return []RM{
		{
			ID: "1", Name: "Mehul Singh", Now: ActivityHTD, Customer: "Sahil Verma", CurrentLeadID: "LD-10107",
			StartedAt: at(15, 20), FRC: at(9, 45), FRCAvgMTD: "09:35", Location: "At Customer",
			Today: Counters{Visits: 2}, MTD: Counters{Visits: 26, Tokens: 8, Deliveries: 3, FeedbackFilled: 14},
			Schedule: []ScheduleItem{
				{At: "14:30", Type: ActivityHV, State: ScheduleDone, LeadID: "LD-10105", DurationMin: 45, Token: TokenNo, FeedbackRating: 4},
				{At: "16:00", Type: ActivityHTD, State: ScheduleOngoing, LeadID: "LD-10107"},
			},
		},
		{
			ID: "2", Name: "Chetan Arora", Now: ActivityIdle,
			StartedAt: at(14, 30), FRC: at(9, 5), FRCAvgMTD: "09:18", Location: "Hub",
			Today: Counters{Visits: 2, Tokens: 1, FeedbackFilled: 2}, MTD: Counters{Visits: 43, Tokens: 15, Deliveries: 6, FeedbackFilled: 28},
			Schedule: []ScheduleItem{
				{At: "11:30", Type: ActivityHTD, State: ScheduleDone, LeadID: "LD-10102", DurationMin: 55, Token: TokenYes, FeedbackRating: 5},
				{At: "13:00", Type: ActivityHTD, State: ScheduleDone, LeadID: "LD-10104", DurationMin: 65, Token: TokenNo, FeedbackRating: 5},
				{At: "19:00", Type: ActivityHTD, State: ScheduleUpcoming, LeadID: "LD-2002"},
			},
		},
		{
			ID: "3", Name: "Badal Rajpoot", Now: ActivityHV, Customer: "Vivek S.", CurrentLeadID: "LD-10108",
			StartedAt: at(15, 55), FRC: at(9, 10), FRCAvgMTD: "09:22", Location: "Driving",
			Today: Counters{Visits: 2, FeedbackFilled: 1}, MTD: Counters{Visits: 55, Tokens: 18, Deliveries: 7, FeedbackFilled: 30},
			Schedule: []ScheduleItem{
				{At: "12:15", Type: ActivityHV, State: ScheduleDone, LeadID: "LD-10103", DurationMin: 45, Token: TokenNo, FeedbackRating: 2},
				{At: "16:15", Type: ActivityHV, State: ScheduleOngoing, LeadID: "LD-10108"},
				{At: "20:30", Type: ActivityHTD, State: ScheduleUpcoming, LeadID: "LD-2003"},
			},
		},
		{
			ID: "4", Name: "Neeraj Verma", Now: ActivityHTD, Customer: "Ritik Roshan", CurrentLeadID: "LD-3005",
			StartedAt: at(14, 40), FRC: at(8, 55), FRCAvgMTD: "09:08", Location: "At Customer",
			Today: Counters{Visits: 2, Deliveries: 1, FeedbackFilled: 1}, MTD: Counters{Visits: 72, Tokens: 30, Deliveries: 15, FeedbackFilled: 40},
			Schedule: []ScheduleItem{
				{At: "13:30", Type: ActivityHV, State: ScheduleDone, LeadID: "LD-10106", DurationMin: 30, Token: TokenNo, FeedbackRating: 3},
				{At: "15:00", Type: ActivityHTD, State: ScheduleOngoing, LeadID: "LD-3005"},
			},
		},
		{
			ID: "5", Name: "Aman Sharma", Now: ActivityIdle,
			StartedAt: at(12, 5), FRC: at(9, 20), FRCAvgMTD: "09:25", Location: "Hub",
			Today: Counters{Visits: 1, FeedbackFilled: 1}, MTD: Counters{Visits: 86, Tokens: 35, Deliveries: 18, FeedbackFilled: 55},
			Schedule: []ScheduleItem{
				{At: "10:15", Type: ActivityHV, State: ScheduleDone, LeadID: "LD-10101", DurationMin: 45, Token: TokenNo, FeedbackRating: 4},
				{At: "17:00", Type: ActivityHTD, State: ScheduleUpcoming, LeadID: "LD-10109"},
			},
		},
	}
}
