package dashboard

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// SnapshotSource derives the hub snapshot for a viewer.
type SnapshotSource interface {
	Snapshot(ctx context.Context, viewer ViewerContext) (hub.Snapshot, error)
}

// HubSourceOptions configures the repositories behind a HubSource. Nil
// repositories fall back to the demo dataset.
type HubSourceOptions struct {
	Visits   hub.VisitRepository
	HTD      hub.HTDRepository
	RMs      hub.RMRepository
	Overlays OverlayStore
}

// HubSource builds snapshots from the configured repositories and the viewer's
// overlay.
type HubSource struct {
	visits   hub.VisitRepository
	htd      hub.HTDRepository
	rms      hub.RMRepository
	overlays OverlayStore
}

var _ SnapshotSource = (*HubSource)(nil)

// NewHubSource builds a HubSource with safe defaults.
func NewHubSource(opts HubSourceOptions) *HubSource {
	demo := hub.DemoSources()
	if opts.Visits == nil {
		opts.Visits = demo.Visits
	}
	if opts.HTD == nil {
		opts.HTD = demo.HTD
	}
	if opts.RMs == nil {
		opts.RMs = demo.RMs
	}
	if opts.Overlays == nil {
		opts.Overlays = NewInMemoryOverlayStore()
	}
	return &HubSource{
		visits:   opts.Visits,
		htd:      opts.HTD,
		rms:      opts.RMs,
		overlays: opts.Overlays,
	}
}

// Overlays exposes the overlay store.
func (s *HubSource) Overlays() OverlayStore {
	return s.overlays
}

// Snapshot loads the viewer's overlay and derives every hub view. Results are
// reused for identical requests when ctx carries a snapshot memo.
func (s *HubSource) Snapshot(ctx context.Context, viewer ViewerContext) (hub.Snapshot, error) {
	key := OverlayKey(viewer)
	overlay, err := s.overlays.Overlay(ctx, key)
	if err != nil {
		return hub.Snapshot{}, err
	}
	memo := snapshotMemoFrom(ctx)
	memoKey := key + "|" + stateFingerprint(viewer.State)
	if snap, ok := memo.get(memoKey); ok {
		return snap, nil
	}
	snap, err := hub.BuildSnapshot(ctx, viewer.State, hub.Sources{
		Visits:  s.visits,
		HTD:     s.htd,
		RMs:     s.rms,
		Overlay: overlay,
	})
	if err != nil {
		return hub.Snapshot{}, err
	}
	memo.put(memoKey, snap)
	return snap, nil
}

// BaseRow returns the unpatched control-tower row for leadID.
func (s *HubSource) BaseRow(ctx context.Context, leadID string) (hub.HTDRow, bool, error) {
	rows, err := s.htd.FetchHTDRows(ctx)
	if err != nil {
		return hub.HTDRow{}, false, err
	}
	for _, row := range rows {
		if row.LeadID == leadID {
			return row, true, nil
		}
	}
	return hub.HTDRow{}, false, nil
}

type snapshotMemo struct {
	mu    sync.Mutex
	items map[string]hub.Snapshot
}

type snapshotMemoKey struct{}

// withSnapshotMemo scopes snapshot reuse to the returned context.
func withSnapshotMemo(ctx context.Context) context.Context {
	if snapshotMemoFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, snapshotMemoKey{}, &snapshotMemo{items: map[string]hub.Snapshot{}})
}

func snapshotMemoFrom(ctx context.Context) *snapshotMemo {
	if ctx == nil {
		return nil
	}
	memo, _ := ctx.Value(snapshotMemoKey{}).(*snapshotMemo)
	return memo
}

func (m *snapshotMemo) get(key string) (hub.Snapshot, bool) {
	if m == nil {
		return hub.Snapshot{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.items[key]
	return snap, ok
}

func (m *snapshotMemo) put(key string, snap hub.Snapshot) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.items[key] = snap
	m.mu.Unlock()
}

func stateFingerprint(state hub.State) string {
	b, err := json.Marshal(state)
	if err != nil {
		return "invalid"
	}
	return string(b)
}
