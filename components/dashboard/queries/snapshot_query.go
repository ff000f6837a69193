package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/hub"
)

type snapshotService interface {
	Snapshot(ctx context.Context, viewer dashboard.ViewerContext) (hub.Snapshot, error)
}

// SnapshotQuery derives every hub view for the viewer's selections,
// including the viewer's HTD overrides.
type SnapshotQuery struct {
	service snapshotService
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(service snapshotService) *SnapshotQuery {
	return &SnapshotQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, hub.Snapshot] = (*SnapshotQuery)(nil)

// Query returns the snapshot for the viewer.
func (q *SnapshotQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (hub.Snapshot, error) {
	return q.service.Snapshot(ctx, viewer)
}

// AttentionQuery lists the upcoming HTDs whose leave-by time is close.
type AttentionQuery struct {
	snapshots *SnapshotQuery
}

// NewAttentionQuery builds the query.
func NewAttentionQuery(service snapshotService) *AttentionQuery {
	return &AttentionQuery{snapshots: NewSnapshotQuery(service)}
}

var _ gocommand.Querier[dashboard.ViewerContext, []hub.HTDRow] = (*AttentionQuery)(nil)

// Query returns the attention list, most urgent first.
func (q *AttentionQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) ([]hub.HTDRow, error) {
	snap, err := q.snapshots.Query(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return snap.Tower.Attention, nil
}
