package hubdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// HTTPConfig configures the HTTP dataset client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient reads hub datasets from REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for a hub data service.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("hubdata: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchVisits implements VisitClient via GET /visits?date=.
func (c *HTTPClient) FetchVisits(ctx context.Context, baseDate string) ([]hub.Visit, error) {
	var resp visitsResponse
	path := "/visits?" + url.Values{"date": {baseDate}}.Encode()
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Visits, nil
}

// FetchHTDRows implements HTDClient via GET /htd.
func (c *HTTPClient) FetchHTDRows(ctx context.Context) ([]hub.HTDRow, error) {
	var resp htdResponse
	if err := c.get(ctx, "/htd", &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// FetchRMs implements RMClient via GET /rms.
func (c *HTTPClient) FetchRMs(ctx context.Context) ([]hub.RM, error) {
	var resp rmResponse
	if err := c.get(ctx, "/rms", &resp); err != nil {
		return nil, err
	}
	return resp.RMs, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("hubdata: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hubdata: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("hubdata: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("hubdata: decode response: %w", err)
	}
	return nil
}

type visitsResponse struct {
	Date   string      `json:"date"`
	Visits []hub.Visit `json:"visits"`
}

type htdResponse struct {
	Rows []hub.HTDRow `json:"rows"`
}

type rmResponse struct {
	RMs []hub.RM `json:"rms"`
}
