package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/hub"
)

// Query parameter names understood by StateFromQuery.
const (
	ParamDate        = "date"
	ParamScope       = "scope"
	ParamStatus      = "status"
	ParamRange       = "range"
	ParamCustomStart = "custom_start"
	ParamView        = "view"
	ParamRating      = "rating"
	ParamStage       = "stage"
	ParamClock       = "clock"
	ParamOrder       = "order"
)

// StateFromQuery builds hub selections from request parameters. get returns
// the raw value of a parameter. Values that fail to parse keep their default.
func StateFromQuery(get func(string) string, fallbackDate string) hub.State {
	value := func(key string) string {
		if get == nil {
			return ""
		}
		return strings.TrimSpace(get(key))
	}
	date := fallbackDate
	if d := value(ParamDate); validDate(d) {
		date = d
	}
	state := hub.DefaultState(date)
	if v, ok := hub.ParseScope(strings.ToUpper(value(ParamScope))); ok {
		state.Scope = v
	}
	if v, ok := hub.ParseFocusStatus(strings.ToUpper(value(ParamStatus))); ok {
		state.FocusStatus = v
	}
	if v, ok := hub.ParseRangeKey(strings.ToUpper(value(ParamRange))); ok {
		state.Range = v
	}
	if d := value(ParamCustomStart); validDate(d) {
		state.CustomStart = d
	}
	switch hub.FeedbackView(strings.ToUpper(value(ParamView))) {
	case hub.FeedbackHub:
		state.View = hub.FeedbackHub
	case hub.FeedbackRM:
		state.View = hub.FeedbackRM
	}
	if v, ok := hub.ParseRatingFocus(strings.ToUpper(value(ParamRating))); ok {
		state.FocusRating = v
	}
	if v, ok := hub.ParseHTDStage(strings.ToLower(value(ParamStage))); ok {
		state.Stage = v
	}
	if c := value(ParamClock); ValidClock(c) {
		state.Clock = c
	}
	if v, ok := hub.ParseSortOrder(strings.ToLower(value(ParamOrder))); ok {
		state.Order = v
	}
	return state
}

// ValidClock reports whether value is an HH:MM time of day.
func ValidClock(value string) bool {
	if value == "" {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

func validDate(value string) bool {
	if value == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// ViewerFromRequest resolves the viewer from the X-User-ID and X-User-Roles
// headers and the hub selections from the query string.
func ViewerFromRequest(r *http.Request, fallbackDate string) dashboard.ViewerContext {
	viewer := dashboard.ViewerContext{
		UserID: strings.TrimSpace(r.Header.Get(HeaderUserID)),
		State:  StateFromQuery(r.URL.Query().Get, fallbackDate),
	}
	if roles := r.Header.Get(HeaderUserRoles); roles != "" {
		for _, role := range strings.Split(roles, ",") {
			if role = strings.TrimSpace(role); role != "" {
				viewer.Roles = append(viewer.Roles, role)
			}
		}
	}
	return viewer
}
