// Package usersink forwards activity events to a go-users activity sink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-hubsummary/pkg/activity"
)

// Sink is the subset of the go-users activity sink the hook needs.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook converts activity events into go-users activity records.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify implements activity.Hook.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}
	return h.Sink.Log(ctx, toRecord(evt))
}

func toRecord(evt activity.Event) types.ActivityRecord {
	data := make(map[string]any, len(evt.Metadata)+2)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	return types.ActivityRecord{
		ActorID:    parseUUID(evt.ActorID),
		UserID:     parseUUID(evt.UserID),
		TenantID:   parseUUID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	}
}

// parseUUID returns uuid.Nil for blank or non-uuid identifiers such as emails.
func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
