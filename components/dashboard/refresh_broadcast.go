package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultSubscriberBuffer = 16
	writeWait               = 10 * time.Second
)

// RefreshMessage is the wire form of a widget event pushed to live clients.
type RefreshMessage struct {
	Type     string    `json:"type"`
	AreaCode string    `json:"area_code"`
	WidgetID string    `json:"widget_id,omitempty"`
	Widget   string    `json:"widget,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	LeadID   string    `json:"lead_id,omitempty"`
	At       time.Time `json:"at"`
}

// NewRefreshMessage converts an event into its wire form.
func NewRefreshMessage(event WidgetEvent, at time.Time) RefreshMessage {
	return RefreshMessage{
		Type:     "refresh",
		AreaCode: event.AreaCode,
		WidgetID: event.Instance.ID,
		Widget:   event.Instance.DefinitionID,
		Reason:   event.Reason,
		LeadID:   event.LeadID,
		At:       at.UTC(),
	}
}

// BroadcastHook fans out widget events to in-process subscribers. Slow
// subscribers miss events instead of blocking the publisher.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]chan RefreshMessage
	next   int
	buffer int
	closed bool
	now    func() time.Time
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs:   make(map[int]chan RefreshMessage),
		buffer: defaultSubscriberBuffer,
		now:    time.Now,
	}
}

// WidgetUpdated satisfies the RefreshHook interface and broadcasts events.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	msg := NewRefreshMessage(event, h.now())
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of refresh messages and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan RefreshMessage, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan RefreshMessage, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *BroadcastHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// RefreshFilter narrows a refresh stream to one area or one lead. Empty
// fields match everything.
type RefreshFilter struct {
	AreaCode string
	LeadID   string
}

// RefreshFilterFromQuery reads the "area" and "lead" parameters. Area short
// names are expanded.
func RefreshFilterFromQuery(value func(string) string) RefreshFilter {
	filter := RefreshFilter{LeadID: strings.TrimSpace(value("lead"))}
	if area := value("area"); area != "" {
		filter.AreaCode = NormalizeAreaCode(area)
	}
	return filter
}

// Match reports whether msg passes the filter. Area-less messages match
// every area.
func (f RefreshFilter) Match(msg RefreshMessage) bool {
	if f.AreaCode != "" && msg.AreaCode != "" && msg.AreaCode != f.AreaCode {
		return false
	}
	if f.LeadID != "" && msg.LeadID != f.LeadID {
		return false
	}
	return true
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket streams refresh messages matching the request's area and
// lead parameters as JSON frames.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	filter := RefreshFilterFromQuery(r.URL.Query().Get)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case msg, ok := <-events:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "hub shutting down"))
				return
			}
			if !filter.Match(msg) {
				continue
			}
			_ = conn.SetWriteDeadline(h.now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams matching refresh messages as server-sent events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	filter := RefreshFilterFromQuery(r.URL.Query().Get)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	flush()

	seq := 0
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if !filter.Match(msg) {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return
			}
			seq++
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, msg.Type, data); err != nil {
				return
			}
			flush()
		}
	}
}
