package hub

import "sort"

// HTDPatch is a sparse edit of an HTDRow. Nil fields leave the base value
// untouched.
type HTDPatch struct {
	RMStatus            *RMStatus    `json:"rm_status,omitempty"`
	Slot                *string      `json:"slot,omitempty"`
	Stage               *HTDStage    `json:"stage,omitempty"`
	Call                *CallStatus  `json:"call,omitempty"`
	TravelMins          *int         `json:"travel_mins,omitempty"`
	CheckoutTime        *string      `json:"checkout_time,omitempty"`
	CheckinTime         *string      `json:"checkin_time,omitempty"`
	ETABackToHub        *string      `json:"eta_back_to_hub,omitempty"`
	IdleButLateCheckout *bool        `json:"idle_but_late_checkout,omitempty"`
	Token               *TokenStatus `json:"token,omitempty"`
	FeedbackRating      *Rating      `json:"feedback_rating,omitempty"`
	DidFollowUp         *bool        `json:"did_follow_up,omitempty"`
	CancelReason        *string      `json:"cancel_reason,omitempty"`
	Notes               *string      `json:"notes,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p HTDPatch) IsZero() bool {
	return p == HTDPatch{}
}

// Merge layers next on top of p, field by field.
func (p HTDPatch) Merge(next HTDPatch) HTDPatch {
	out := p
	if next.RMStatus != nil {
		out.RMStatus = next.RMStatus
	}
	if next.Slot != nil {
		out.Slot = next.Slot
	}
	if next.Stage != nil {
		out.Stage = next.Stage
	}
	if next.Call != nil {
		out.Call = next.Call
	}
	if next.TravelMins != nil {
		out.TravelMins = next.TravelMins
	}
	if next.CheckoutTime != nil {
		out.CheckoutTime = next.CheckoutTime
	}
	if next.CheckinTime != nil {
		out.CheckinTime = next.CheckinTime
	}
	if next.ETABackToHub != nil {
		out.ETABackToHub = next.ETABackToHub
	}
	if next.IdleButLateCheckout != nil {
		out.IdleButLateCheckout = next.IdleButLateCheckout
	}
	if next.Token != nil {
		out.Token = next.Token
	}
	if next.FeedbackRating != nil {
		out.FeedbackRating = next.FeedbackRating
	}
	if next.DidFollowUp != nil {
		out.DidFollowUp = next.DidFollowUp
	}
	if next.CancelReason != nil {
		out.CancelReason = next.CancelReason
	}
	if next.Notes != nil {
		out.Notes = next.Notes
	}
	return out
}

// ApplyTo returns row with the patch applied. row itself is not modified;
// patched pointer fields receive fresh copies.
func (p HTDPatch) ApplyTo(row HTDRow) HTDRow {
	if p.RMStatus != nil {
		row.RMStatus = *p.RMStatus
	}
	if p.Slot != nil {
		row.Slot = *p.Slot
	}
	if p.Stage != nil {
		row.Stage = *p.Stage
	}
	if p.Call != nil {
		row.Call = *p.Call
	}
	if p.TravelMins != nil {
		row.TravelMins = intPtr(*p.TravelMins)
	}
	if p.CheckoutTime != nil {
		row.CheckoutTime = strPtr(*p.CheckoutTime)
	}
	if p.CheckinTime != nil {
		row.CheckinTime = strPtr(*p.CheckinTime)
	}
	if p.ETABackToHub != nil {
		row.ETABackToHub = strPtr(*p.ETABackToHub)
	}
	if p.IdleButLateCheckout != nil {
		row.IdleButLateCheckout = boolPtr(*p.IdleButLateCheckout)
	}
	if p.Token != nil {
		row.Token = *p.Token
	}
	if p.FeedbackRating != nil {
		row.FeedbackRating = *p.FeedbackRating
	}
	if p.DidFollowUp != nil {
		row.DidFollowUp = boolPtr(*p.DidFollowUp)
	}
	if p.CancelReason != nil {
		row.CancelReason = *p.CancelReason
	}
	if p.Notes != nil {
		row.Notes = *p.Notes
	}
	return row
}

// Overlay maps lead ids to patches. It is immutable: Set and Clear return a
// new overlay and never touch the receiver. The zero value is an empty overlay.
type Overlay struct {
	patches map[string]HTDPatch
}

// NewOverlay builds an overlay from an initial set of patches.
func NewOverlay(patches map[string]HTDPatch) Overlay {
	o := Overlay{patches: make(map[string]HTDPatch, len(patches))}
	for k, v := range patches {
		o.patches[k] = v
	}
	return o
}

// Len returns the number of patched lead ids.
func (o Overlay) Len() int {
	return len(o.patches)
}

// Get returns the stored patch for leadID.
func (o Overlay) Get(leadID string) (HTDPatch, bool) {
	p, ok := o.patches[leadID]
	return p, ok
}

// Keys returns the patched lead ids in sorted order.
func (o Overlay) Keys() []string {
	keys := make([]string, 0, len(o.patches))
	for k := range o.patches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set merges patch onto any patch already stored for leadID.
func (o Overlay) Set(leadID string, patch HTDPatch) Overlay {
	next := NewOverlay(o.patches)
	existing := next.patches[leadID]
	next.patches[leadID] = existing.Merge(patch)
	return next
}

// Clear drops the patch for leadID.
func (o Overlay) Clear(leadID string) Overlay {
	next := NewOverlay(o.patches)
	delete(next.patches, leadID)
	return next
}

// Effective returns the row with its patch applied, if any.
func (o Overlay) Effective(row HTDRow) HTDRow {
	if p, ok := o.patches[row.LeadID]; ok {
		return p.ApplyTo(row)
	}
	return row
}

// Apply returns the effective rows. The input slice is not modified.
func (o Overlay) Apply(rows []HTDRow) []HTDRow {
	out := make([]HTDRow, len(rows))
	for i, r := range rows {
		out[i] = o.Effective(r)
	}
	return out
}
