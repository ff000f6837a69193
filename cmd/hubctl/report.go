package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/httpapi"
	"github.com/goliatone/go-hubsummary/components/dashboard/queries"
	"github.com/goliatone/go-hubsummary/components/hub"
)

// SelectionFlags mirror the dashboard query parameters.
type SelectionFlags struct {
	Scope  string `help:"Visit scope: ALL, HV or HTD."`
	Status string `help:"Visit status focus."`
	Range  string `help:"Feedback range: 1D, 2D, 7D or CUSTOM."`
	From   string `help:"Custom range start (YYYY-MM-DD)."`
	Rating string `help:"Rating focus: ALL, NF or 1-5."`
	Stage  string `help:"Control tower stage filter."`
	Clock  string `help:"Clock used for dispatch decisions (HH:MM)."`
	Order  string `help:"Visit order: concatenated or natural."`
	JSON   bool   `help:"Print JSON instead of tables."`
}

func (f SelectionFlags) viewer(a *app, date string) dashboard.ViewerContext {
	base := a.viewer(date)
	values := map[string]string{
		httpapi.ParamDate:        base.State.Date,
		httpapi.ParamScope:       f.Scope,
		httpapi.ParamStatus:      f.Status,
		httpapi.ParamRange:       f.Range,
		httpapi.ParamCustomStart: f.From,
		httpapi.ParamRating:      f.Rating,
		httpapi.ParamStage:       f.Stage,
		httpapi.ParamClock:       firstSet(f.Clock, base.State.Clock),
		httpapi.ParamOrder:       f.Order,
	}
	base.State = httpapi.StateFromQuery(func(key string) string { return values[key] }, base.State.Date)
	return base
}

type summaryCmd struct {
	SelectionFlags `embed:""`
}

func (cmd *summaryCmd) Run(rc *runContext) error {
	a, err := rc.app()
	if err != nil {
		return err
	}
	snap, err := queries.NewSnapshotQuery(a.service).Query(rc.ctx, cmd.viewer(a, rc.global.Date))
	if err != nil {
		return err
	}
	if cmd.JSON {
		return writeJSON(rc.out, snap)
	}
	return writeSummary(rc.out, snap)
}

type attentionCmd struct {
	SelectionFlags `embed:""`
}

func (cmd *attentionCmd) Run(rc *runContext) error {
	a, err := rc.app()
	if err != nil {
		return err
	}
	viewer := cmd.viewer(a, rc.global.Date)
	rows, err := queries.NewAttentionQuery(a.service).Query(rc.ctx, viewer)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return writeJSON(rc.out, rows)
	}
	return writeAttention(rc.out, rows, viewer.State.Clock)
}

type productivityCmd struct {
	SelectionFlags `embed:""`
}

func (cmd *productivityCmd) Run(rc *runContext) error {
	a, err := rc.app()
	if err != nil {
		return err
	}
	snap, err := queries.NewSnapshotQuery(a.service).Query(rc.ctx, cmd.viewer(a, rc.global.Date))
	if err != nil {
		return err
	}
	if cmd.JSON {
		return writeJSON(rc.out, map[string]any{"rms": snap.Productivity, "hub": snap.Hub})
	}
	return writeProductivity(rc.out, snap.Productivity, snap.Hub)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummary(w io.Writer, snap hub.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	c := snap.Visits.Counts
	fmt.Fprintf(tw, "Date\t%s\tscope %s\n", snap.State.Date, snap.State.Scope)
	fmt.Fprintf(tw, "Visits\t%d\tcompleted %d, ongoing %d, scheduled %d, cancelled %d\n",
		c.Total, c.Completed, c.Ongoing, c.Scheduled, c.Cancelled)
	buckets := make([]string, 0, 6)
	for _, b := range snap.Feedback.Histogram.Buckets() {
		buckets = append(buckets, fmt.Sprintf("%s:%d", b.Label, b.Count))
	}
	fmt.Fprintf(tw, "Feedback\t%d\t%s to %s [%s]\n", snap.Feedback.Histogram.Total(),
		snap.Feedback.RangeStart, snap.Feedback.RangeEnd, strings.Join(buckets, " "))
	t := snap.Tower.Counts
	fmt.Fprintf(tw, "HTD\t%d\tupcoming %d, ongoing %d, completed %d, cancelled %d\n",
		t.Upcoming+t.Ongoing+t.Completed+t.Cancelled, t.Upcoming, t.Ongoing, t.Completed, t.Cancelled)
	fmt.Fprintf(tw, "Attention\t%d\t\n", len(snap.Tower.Attention))
	fmt.Fprintf(tw, "Alerts\t%d\t\n", len(snap.Alerts))
	for _, alert := range snap.Alerts {
		fmt.Fprintf(tw, "\t%s\t%s %s\n", alert.Severity, alert.Time, alert.Message)
	}
	return tw.Flush()
}

func writeAttention(w io.Writer, rows []hub.HTDRow, clock string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "No drives need dispatch at %s.\n", clock)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEAD\tCUSTOMER\tRM\tSTATUS\tSLOT\tTRAVEL\tLEAVE BY\tLEAVE IN")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%dm\t%s\t%dm\n",
			row.LeadID, row.CustomerName, row.RMName, row.RMStatus, row.Slot,
			row.Travel(), hub.FormatClock(row.LeaveBy()), row.MinutesUntilLeave(clock))
	}
	return tw.Flush()
}

func writeProductivity(w io.Writer, rows []hub.RMProductivity, totals hub.HubTotals) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RM\tNOW\tRUNTIME\tUTILIZATION\tHV\tHTD\tFRC")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%d\t%d\t%s\n",
			row.Name, row.Now, row.RuntimeLabel, row.Utilization, row.HVDone, row.HTDDone, hub.ClockOf(row.FRC.Time))
	}
	fmt.Fprintf(tw, "Hub\t%d RMs\t\tMTD visits %d\t\t\t%s (avg %s)\n",
		totals.RMCount, totals.MTD.Visits, totals.FRCClock, totals.FRCAvgMTD)
	return tw.Flush()
}
