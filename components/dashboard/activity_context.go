package dashboard

import "context"

// ActivityContext captures actor/user/tenant identifiers for activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ContextWithViewer stamps the viewer as the acting user unless the context
// already names an actor.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	meta := activityContextFrom(ctx)
	if meta.ActorID == "" {
		meta.ActorID = viewer.UserID
	}
	if meta.UserID == "" {
		meta.UserID = viewer.UserID
	}
	return ContextWithActivity(ctx, meta)
}

// ActivityFromContext returns the identifiers stored by ContextWithActivity.
func ActivityFromContext(ctx context.Context) ActivityContext {
	return activityContextFrom(ctx)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}
