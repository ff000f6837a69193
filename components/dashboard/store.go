package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryWidgetStore keeps areas, definitions and instances in process memory.
type MemoryWidgetStore struct {
	mu          sync.RWMutex
	areas       map[string]WidgetAreaDefinition
	definitions map[string]WidgetDefinition
	instances   map[string]storedInstance
	assignments map[string][]string
	newID       func() string
}

type storedInstance struct {
	instance   WidgetInstance
	visibility WidgetVisibility
}

var _ WidgetStore = (*MemoryWidgetStore)(nil)

// NewMemoryWidgetStore creates an empty store that issues uuid instance ids.
func NewMemoryWidgetStore() *MemoryWidgetStore {
	return &MemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]storedInstance{},
		assignments: map[string][]string{},
		newID:       func() string { return uuid.NewString() },
	}
}

// EnsureArea stores the area and reports whether it was new.
func (s *MemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition stores the definition and reports whether it was new.
func (s *MemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidDefinition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance stores a new widget instance for a known definition.
func (s *MemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[input.DefinitionID]; !ok {
		return WidgetInstance{}, fmt.Errorf("dashboard: widget definition %s not found", input.DefinitionID)
	}
	instance := WidgetInstance{
		ID:            s.newID(),
		DefinitionID:  input.DefinitionID,
		Configuration: cloneMap(input.Configuration),
		Metadata:      cloneMap(input.Metadata),
	}
	s.instances[instance.ID] = storedInstance{instance: instance, visibility: input.Visibility}
	return instance, nil
}

// AssignInstance places an instance in an area, at Position when given.
func (s *MemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[input.AreaCode]; !ok {
		return fmt.Errorf("dashboard: area %s not found", input.AreaCode)
	}
	if _, ok := s.instances[input.InstanceID]; !ok {
		return fmt.Errorf("dashboard: widget instance %s not found", input.InstanceID)
	}
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		idx := *input.Position
		order = append(order[:idx], append([]string{input.InstanceID}, order[idx:]...)...)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	return nil
}

// DeleteInstance removes the instance from the store and from its area.
func (s *MemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrWidgetNotFound, instanceID)
	}
	delete(s.instances, instanceID)
	removed := stored.instance
	for area, ids := range s.assignments {
		kept := ids[:0]
		for _, id := range ids {
			if id == instanceID {
				removed.AreaCode = area
				continue
			}
			kept = append(kept, id)
		}
		s.assignments[area] = kept
	}
	return removed, nil
}

// ResolveArea returns the instances assigned to an area that are visible to
// the audience at input.At.
func (s *MemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		stored, ok := s.instances[id]
		if !ok || !stored.visibility.allows(input.Audience, input.At) {
			continue
		}
		inst := stored.instance
		inst.Configuration = cloneMap(inst.Configuration)
		inst.Metadata = cloneMap(inst.Metadata)
		widgets = append(widgets, inst)
	}
	return ResolvedArea{
		AreaCode: input.AreaCode,
		Widgets:  widgets,
	}, nil
}

func (v WidgetVisibility) allows(audience []string, at time.Time) bool {
	if !at.IsZero() {
		if v.StartAt != nil && at.Before(*v.StartAt) {
			return false
		}
		if v.EndAt != nil && !at.Before(*v.EndAt) {
			return false
		}
	}
	if len(v.Roles) == 0 {
		return true
	}
	for _, role := range v.Roles {
		for _, have := range audience {
			if role == have {
				return true
			}
		}
	}
	return false
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
