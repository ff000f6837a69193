// Package activity defines the activity events emitted when dashboard state
// changes, plus the hooks that forward them to external sinks.
package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultChannel tags events that did not name a channel.
const DefaultChannel = "dashboard"

// Event is a single activity entry.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify implements Hook.
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Hooks fans an event out to every hook, joining their errors.
type Hooks []Hook

// Notify normalizes evt and forwards it. Events without a verb are dropped.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	evt = NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, evt); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// NormalizeEvent trims identifiers and clones the metadata map and the
// recipient list so hooks cannot mutate the caller's copies.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.UserID = strings.TrimSpace(evt.UserID)
	evt.TenantID = strings.TrimSpace(evt.TenantID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	if evt.Metadata != nil {
		meta := make(map[string]any, len(evt.Metadata))
		for k, v := range evt.Metadata {
			meta[k] = v
		}
		evt.Metadata = meta
	}
	if evt.Recipients != nil {
		evt.Recipients = append([]string(nil), evt.Recipients...)
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}

// CaptureHook records every event it receives. Handy in tests.
type CaptureHook struct {
	Events []Event
}

// Notify implements Hook.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.Events = append(c.Events, evt)
	return nil
}
