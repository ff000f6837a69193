package dashboard

import (
	"context"
	"fmt"
	"sync"
)

const gridColumns = 12

// InMemoryPreferenceStore provides a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]LayoutOverrides),
	}
}

// LayoutOverrides returns stored overrides or defaults.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	var overrides LayoutOverrides
	if viewer.UserID != "" {
		s.mu.RLock()
		overrides = cloneOverrides(s.data[viewer.UserID])
		s.mu.RUnlock()
	}
	normalizeOverrides(&overrides)
	return overrides, nil
}

// SaveLayoutOverrides persists overrides for a viewer.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	overrides = cloneOverrides(overrides)
	normalizeOverrides(&overrides)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = overrides
	return nil
}

func normalizeOverrides(overrides *LayoutOverrides) {
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.AreaRows == nil {
		overrides.AreaRows = map[string][]LayoutRow{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
	clampAreaRows(overrides.AreaRows)
}

// clampAreaRows keeps slot widths within the grid; zero means full width.
func clampAreaRows(rows map[string][]LayoutRow) {
	for _, list := range rows {
		for _, row := range list {
			for i := range row.Widgets {
				if row.Widgets[i].Width <= 0 || row.Widgets[i].Width > gridColumns {
					row.Widgets[i].Width = gridColumns
				}
			}
		}
	}
}

func cloneOverrides(in LayoutOverrides) LayoutOverrides {
	out := LayoutOverrides{}
	if in.AreaOrder != nil {
		out.AreaOrder = make(map[string][]string, len(in.AreaOrder))
		for area, ids := range in.AreaOrder {
			out.AreaOrder[area] = append([]string(nil), ids...)
		}
	}
	if in.AreaRows != nil {
		out.AreaRows = make(map[string][]LayoutRow, len(in.AreaRows))
		for area, rows := range in.AreaRows {
			copied := make([]LayoutRow, len(rows))
			for i, row := range rows {
				copied[i] = LayoutRow{Widgets: append([]WidgetSlot(nil), row.Widgets...)}
			}
			out.AreaRows[area] = copied
		}
	}
	if in.HiddenWidgets != nil {
		out.HiddenWidgets = make(map[string]bool, len(in.HiddenWidgets))
		for id, hidden := range in.HiddenWidgets {
			out.HiddenWidgets[id] = hidden
		}
	}
	return out
}
