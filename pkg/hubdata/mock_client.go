package hubdata

import (
	"context"
	"sync"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// MockData seeds deterministic datasets for tests or local demos.
type MockData struct {
	Visits []hub.Visit
	HTD    []hub.HTDRow
	RMs    []hub.RM
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

var _ Client = (*MockClient)(nil)

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// Set replaces the fixtures.
func (c *MockClient) Set(data MockData) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
}

// FetchVisits returns the configured visits ignoring the base date.
func (c *MockClient) FetchVisits(context.Context, string) ([]hub.Visit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]hub.Visit(nil), c.data.Visits...), nil
}

// FetchHTDRows returns the configured rows.
func (c *MockClient) FetchHTDRows(context.Context) ([]hub.HTDRow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]hub.HTDRow(nil), c.data.HTD...), nil
}

// FetchRMs returns the configured roster. Schedules are copied.
func (c *MockClient) FetchRMs(context.Context) ([]hub.RM, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]hub.RM, len(c.data.RMs))
	for i, rm := range c.data.RMs {
		rm.Schedule = append([]hub.ScheduleItem(nil), rm.Schedule...)
		out[i] = rm
	}
	return out, nil
}
