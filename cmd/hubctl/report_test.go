package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-hubsummary/components/dashboard/queries"
	"github.com/goliatone/go-hubsummary/components/hub"
)

const testDate = "2026-02-11"

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := defaultConfig()
	cfg.Dashboard.Date = testDate
	a, err := newApp(context.Background(), cfg, newLogger(io.Discard, cfg.Log))
	require.NoError(t, err)
	return a
}

func TestSelectionFlagsParseLikeQueryParams(t *testing.T) {
	a := newTestApp(t)

	viewer := SelectionFlags{Scope: "hv", Range: "7d", Stage: "ONGOING", Clock: "bogus"}.viewer(a, "")
	assert.Equal(t, testDate, viewer.State.Date)
	assert.Equal(t, hub.ScopeHV, viewer.State.Scope)
	assert.Equal(t, hub.Range7D, viewer.State.Range)
	assert.Equal(t, hub.StageOngoing, viewer.State.Stage)
	assert.Equal(t, hub.DemoClock, viewer.State.Clock, "malformed clock keeps the default")
	assert.Equal(t, "hubctl", viewer.UserID)

	viewer = SelectionFlags{Clock: "09:15"}.viewer(a, "2026-02-10")
	assert.Equal(t, "2026-02-10", viewer.State.Date)
	assert.Equal(t, "09:15", viewer.State.Clock)
}

func TestWriteSummary(t *testing.T) {
	a := newTestApp(t)
	snap, err := queries.NewSnapshotQuery(a.service).Query(context.Background(), a.viewer(testDate))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeSummary(&out, snap))
	text := out.String()
	assert.Contains(t, text, testDate)
	assert.Contains(t, text, "upcoming 3, ongoing 2, completed 2, cancelled 1")
	assert.Contains(t, text, "Attention")
}

func TestWriteAttention(t *testing.T) {
	a := newTestApp(t)
	viewer := a.viewer(testDate)
	rows, err := queries.NewAttentionQuery(a.service).Query(context.Background(), viewer)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var out bytes.Buffer
	require.NoError(t, writeAttention(&out, rows, viewer.State.Clock))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "LEAD"))
	assert.Contains(t, lines[1], "LD-10109")
	assert.Contains(t, lines[1], hub.FormatClock(rows[0].LeaveBy()))
}

func TestWriteAttentionEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeAttention(&out, nil, "09:00"))
	assert.Equal(t, "No drives need dispatch at 09:00.\n", out.String())
}

func TestWriteProductivity(t *testing.T) {
	a := newTestApp(t)
	snap, err := queries.NewSnapshotQuery(a.service).Query(context.Background(), a.viewer(testDate))
	require.NoError(t, err)
	require.Len(t, snap.Productivity, 5)

	var out bytes.Buffer
	require.NoError(t, writeProductivity(&out, snap.Productivity, snap.Hub))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "RM"))
	assert.Contains(t, lines[1], snap.Productivity[0].Name)
	assert.True(t, strings.HasPrefix(lines[6], "Hub"))
	assert.Contains(t, lines[6], "5 RMs")
}

func TestSummaryCommandJSON(t *testing.T) {
	var out bytes.Buffer
	rc := &runContext{ctx: context.Background(), out: &out, global: &cli{Date: testDate, LogLevel: "error"}}
	cmd := &summaryCmd{SelectionFlags{JSON: true}}
	require.NoError(t, cmd.Run(rc))

	var snap hub.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, testDate, snap.State.Date)
	assert.Equal(t, hub.StageCounts{Upcoming: 3, Ongoing: 2, Completed: 2, Cancelled: 1}, snap.Tower.Counts)
}

func TestAttentionCommandJSON(t *testing.T) {
	var out bytes.Buffer
	rc := &runContext{ctx: context.Background(), out: &out, global: &cli{Date: testDate, LogLevel: "error"}}
	cmd := &attentionCmd{SelectionFlags{JSON: true}}
	require.NoError(t, cmd.Run(rc))

	var rows []hub.HTDRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "LD-10109", rows[0].LeadID)
}
