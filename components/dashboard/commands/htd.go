package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/hub"
)

// ErrInvalidInput wraps validation failures of command payloads.
var ErrInvalidInput = errors.New("commands: invalid input")

var validate = validator.New()

// UpdateHTDInput is a sparse edit of one control-tower row. Nil fields are
// left untouched; a field cannot be cleared back to "not recorded".
type UpdateHTDInput struct {
	Viewer   dashboard.ViewerContext `json:"-"`
	LeadID   string                  `json:"lead_id" validate:"required"`
	ActorID  string                  `json:"-"`
	TenantID string                  `json:"-"`

	RMStatus            *string `json:"rm_status,omitempty" validate:"omitempty,oneof=Idle 'At Hub' Driving Checked-out 'At Customer' Returning 'Visit Running'"`
	Slot                *string `json:"slot,omitempty" validate:"omitempty,datetime=15:04"`
	Stage               *string `json:"stage,omitempty" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	Call                *string `json:"call,omitempty" validate:"omitempty,oneof=yes no late na"`
	TravelMins          *int    `json:"travel_mins,omitempty" validate:"omitempty,min=0,max=600"`
	CheckoutTime        *string `json:"checkout_time,omitempty" validate:"omitempty,datetime=15:04"`
	CheckinTime         *string `json:"checkin_time,omitempty" validate:"omitempty,datetime=15:04"`
	ETABackToHub        *string `json:"eta_back_to_hub,omitempty" validate:"omitempty,datetime=15:04"`
	IdleButLateCheckout *bool   `json:"idle_but_late_checkout,omitempty"`
	Token               *string `json:"token,omitempty" validate:"omitempty,oneof=yes no"`
	FeedbackRating      *int    `json:"feedback_rating,omitempty" validate:"omitempty,min=1,max=5"`
	DidFollowUp         *bool   `json:"did_follow_up,omitempty"`
	CancelReason        *string `json:"cancel_reason,omitempty" validate:"omitempty,max=280"`
	Notes               *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Patch converts the input into the hub patch type.
func (in UpdateHTDInput) Patch() hub.HTDPatch {
	var patch hub.HTDPatch
	if in.RMStatus != nil {
		v := hub.RMStatus(*in.RMStatus)
		patch.RMStatus = &v
	}
	if in.Stage != nil {
		v := hub.HTDStage(*in.Stage)
		patch.Stage = &v
	}
	if in.Call != nil {
		v := hub.CallStatus(*in.Call)
		patch.Call = &v
	}
	if in.Token != nil {
		v := hub.TokenStatus(*in.Token)
		patch.Token = &v
	}
	if in.FeedbackRating != nil {
		v := hub.Rating(*in.FeedbackRating)
		patch.FeedbackRating = &v
	}
	patch.Slot = in.Slot
	patch.TravelMins = in.TravelMins
	patch.CheckoutTime = in.CheckoutTime
	patch.CheckinTime = in.CheckinTime
	patch.ETABackToHub = in.ETABackToHub
	patch.IdleButLateCheckout = in.IdleButLateCheckout
	patch.DidFollowUp = in.DidFollowUp
	patch.CancelReason = in.CancelReason
	patch.Notes = in.Notes
	return patch
}

type htdService interface {
	UpdateHTD(ctx context.Context, viewer dashboard.ViewerContext, leadID string, patch hub.HTDPatch) (hub.HTDRow, error)
	ClearHTD(ctx context.Context, viewer dashboard.ViewerContext, leadID string) (hub.HTDRow, error)
}

// UpdateHTDCommand validates and applies an HTD override edit. The effective
// row is handed to the optional result callback.
type UpdateHTDCommand struct {
	service   htdService
	telemetry Telemetry
	onResult  func(hub.HTDRow)
}

// NewUpdateHTDCommand creates the command.
func NewUpdateHTDCommand(service htdService, telemetry Telemetry) *UpdateHTDCommand {
	return &UpdateHTDCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

// OnResult registers a callback that receives the effective row.
func (c *UpdateHTDCommand) OnResult(fn func(hub.HTDRow)) *UpdateHTDCommand {
	c.onResult = fn
	return c
}

var _ gocommand.Commander[UpdateHTDInput] = (*UpdateHTDCommand)(nil)

// Execute validates msg and merges it onto the viewer's overlay.
func (c *UpdateHTDCommand) Execute(ctx context.Context, msg UpdateHTDInput) error {
	if c.service == nil {
		return errors.New("htd update command requires service")
	}
	msg.LeadID = strings.TrimSpace(msg.LeadID)
	if err := validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ctx = withActor(ctx, msg.Viewer, msg.ActorID, msg.TenantID)
	row, err := c.service.UpdateHTD(ctx, msg.Viewer, msg.LeadID, msg.Patch())
	if err != nil {
		return err
	}
	if c.onResult != nil {
		c.onResult(row)
	}
	c.telemetry.Record(ctx, "hub.command.htd_update", map[string]any{
		"lead_id": msg.LeadID,
		"stage":   string(row.Stage),
	})
	return nil
}

// ClearHTDInput names the row whose override is dropped.
type ClearHTDInput struct {
	Viewer   dashboard.ViewerContext `json:"-"`
	LeadID   string                  `json:"lead_id" validate:"required"`
	ActorID  string                  `json:"-"`
	TenantID string                  `json:"-"`
}

// ClearHTDCommand reverts a control-tower row to its base values.
type ClearHTDCommand struct {
	service   htdService
	telemetry Telemetry
	onResult  func(hub.HTDRow)
}

// NewClearHTDCommand creates the command.
func NewClearHTDCommand(service htdService, telemetry Telemetry) *ClearHTDCommand {
	return &ClearHTDCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

// OnResult registers a callback that receives the restored base row.
func (c *ClearHTDCommand) OnResult(fn func(hub.HTDRow)) *ClearHTDCommand {
	c.onResult = fn
	return c
}

var _ gocommand.Commander[ClearHTDInput] = (*ClearHTDCommand)(nil)

// Execute drops the viewer's override for the lead.
func (c *ClearHTDCommand) Execute(ctx context.Context, msg ClearHTDInput) error {
	if c.service == nil {
		return errors.New("htd clear command requires service")
	}
	msg.LeadID = strings.TrimSpace(msg.LeadID)
	if err := validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ctx = withActor(ctx, msg.Viewer, msg.ActorID, msg.TenantID)
	row, err := c.service.ClearHTD(ctx, msg.Viewer, msg.LeadID)
	if err != nil {
		return err
	}
	if c.onResult != nil {
		c.onResult(row)
	}
	c.telemetry.Record(ctx, "hub.command.htd_clear", map[string]any{"lead_id": msg.LeadID})
	return nil
}

func withActor(ctx context.Context, viewer dashboard.ViewerContext, actorID, tenantID string) context.Context {
	if actorID != "" || tenantID != "" {
		ctx = dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
			ActorID:  actorID,
			UserID:   viewer.UserID,
			TenantID: tenantID,
		})
	}
	return dashboard.ContextWithViewer(ctx, viewer)
}
