package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-hubsummary/components/hub"
)

type countingHTD struct {
	calls int
	err   error
}

func (c *countingHTD) FetchHTDRows(context.Context) ([]hub.HTDRow, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return hub.DemoHTDRows(), nil
}

func TestHubSourceMemoizesWithinScope(t *testing.T) {
	htd := &countingHTD{}
	source := NewHubSource(HubSourceOptions{HTD: htd})
	viewer := demoViewer("user-1")

	ctx := withSnapshotMemo(context.Background())
	_, err := source.Snapshot(ctx, viewer)
	require.NoError(t, err)
	_, err = source.Snapshot(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, 1, htd.calls)

	other := viewer
	other.State.Stage = hub.StageOngoing
	_, err = source.Snapshot(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, htd.calls)

	_, err = source.Snapshot(context.Background(), viewer)
	require.NoError(t, err)
	assert.Equal(t, 3, htd.calls)
}

func TestHubSourceAppliesViewerOverlay(t *testing.T) {
	source := NewHubSource(HubSourceOptions{})
	ctx := context.Background()
	status := hub.RMCheckedOut
	_, err := source.Overlays().Update(ctx, "user-1", func(o hub.Overlay) hub.Overlay {
		return o.Set("LD-10109", hub.HTDPatch{RMStatus: &status})
	})
	require.NoError(t, err)

	mine, err := source.Snapshot(ctx, demoViewer("user-1"))
	require.NoError(t, err)
	assert.Empty(t, mine.Tower.Attention)

	anonymous, err := source.Snapshot(ctx, demoViewer(""))
	require.NoError(t, err)
	assert.Len(t, anonymous.Tower.Attention, 1)
}

func TestHubSourceBaseRow(t *testing.T) {
	source := NewHubSource(HubSourceOptions{})
	row, ok, err := source.BaseRow(context.Background(), "LD-3005")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ritik Roshan", row.CustomerName)

	_, ok, err = source.BaseRow(context.Background(), "LD-0000")
	require.NoError(t, err)
	assert.False(t, ok)

	failing := NewHubSource(HubSourceOptions{HTD: &countingHTD{err: errors.New("offline")}})
	_, _, err = failing.BaseRow(context.Background(), "LD-3005")
	assert.Error(t, err)
}

func TestOverlayKey(t *testing.T) {
	assert.Equal(t, DefaultOverlayKey, OverlayKey(ViewerContext{UserID: "  "}))
	assert.Equal(t, "rm-1", OverlayKey(ViewerContext{UserID: " rm-1 "}))
}

func TestInMemoryOverlayStoreDropsEmptyOverlays(t *testing.T) {
	store := NewInMemoryOverlayStore()
	ctx := context.Background()
	notes := "late"
	overlay, err := store.Update(ctx, "k", func(o hub.Overlay) hub.Overlay {
		return o.Set("LD-2003", hub.HTDPatch{Notes: &notes})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, overlay.Len())

	_, err = store.Update(ctx, "k", func(o hub.Overlay) hub.Overlay { return o.Clear("LD-2003") })
	require.NoError(t, err)
	assert.Empty(t, store.data)

	got, err := store.Overlay(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}
