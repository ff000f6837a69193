package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// DefaultOverlayKey is used for viewers without a user id.
const DefaultOverlayKey = "default"

// OverlayKey derives the overlay store key for a viewer.
func OverlayKey(viewer ViewerContext) string {
	if id := strings.TrimSpace(viewer.UserID); id != "" {
		return id
	}
	return DefaultOverlayKey
}

// InMemoryOverlayStore keeps one HTD overlay per key. Updates are serialized so
// the last writer wins.
type InMemoryOverlayStore struct {
	mu   sync.RWMutex
	data map[string]hub.Overlay
}

// NewInMemoryOverlayStore creates an empty overlay store.
func NewInMemoryOverlayStore() *InMemoryOverlayStore {
	return &InMemoryOverlayStore{
		data: make(map[string]hub.Overlay),
	}
}

// Overlay returns the overlay stored for key, or an empty one.
func (s *InMemoryOverlayStore) Overlay(_ context.Context, key string) (hub.Overlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

// Update replaces the overlay for key with fn's result.
func (s *InMemoryOverlayStore) Update(_ context.Context, key string, fn func(hub.Overlay) hub.Overlay) (hub.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.data[key])
	if next.Len() == 0 {
		delete(s.data, key)
		return next, nil
	}
	s.data[key] = next
	return next, nil
}
