package hubdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-hubsummary/components/hub"
)

func TestSourcesBuildSnapshotFromMockClient(t *testing.T) {
	client := NewMockClient(MockData{
		Visits: hub.GenerateVisits("2026-02-11"),
		HTD:    hub.DemoHTDRows(),
		RMs:    hub.DemoRMs(),
	})
	snap, err := hub.BuildSnapshot(context.Background(), hub.DefaultState("2026-02-11"), Sources(client))
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Feedback.Histogram.Total())
	assert.Equal(t, 5, snap.Hub.RMCount)
	require.Len(t, snap.Tower.Attention, 1)
	assert.Equal(t, "LD-10109", snap.Tower.Attention[0].LeadID)
}

func TestMockClientReturnsCopies(t *testing.T) {
	client := NewMockClient(MockData{RMs: hub.DemoRMs()})
	first, err := client.FetchRMs(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first[0].Schedule)
	first[0].Schedule[0].LeadID = "mutated"
	second, err := client.FetchRMs(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Schedule[0].LeadID)
}

func TestMockClientSet(t *testing.T) {
	client := NewMockClient(MockData{})
	visits, _ := client.FetchVisits(context.Background(), "2026-02-11")
	assert.Empty(t, visits)
	client.Set(MockData{Visits: []hub.Visit{{ID: "1"}}})
	visits, _ = client.FetchVisits(context.Background(), "2026-02-11")
	assert.Len(t, visits, 1)
}
