// Package client talks to a running dashboard server over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blockedby/sales-dashboard/internal/dashboard"
	"github.com/blockedby/sales-dashboard/internal/models"
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

const defaultTimeout = 30 * time.Second

// Client is an HTTP client for the dashboard API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient gets a
// client with a 30s timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: u, http: httpClient}, nil
}

// URL resolves a server-relative target such as "/api/kpis?start=2024-01-01".
func (c *Client) URL(target string) string {
	return c.base.String() + target
}

// WebsocketURL returns the push endpoint of the server.
func (c *Client) WebsocketURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// FetchKPIs requests /api/kpis with the present fields of r.
func (c *Client) FetchKPIs(ctx context.Context, r dashboard.DateRange) (*models.KpiResponse, error) {
	var resp models.KpiResponse
	if err := c.getJSON(ctx, r.Target(dashboard.KPIPath), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SalesByMonth requests /api/sales_by_month.
func (c *Client) SalesByMonth(ctx context.Context, r dashboard.DateRange) ([]models.MonthPoint, error) {
	var points []models.MonthPoint
	if err := c.getJSON(ctx, r.Target("/api/sales_by_month"), &points); err != nil {
		return nil, err
	}
	return points, nil
}

// DatasetStatus mirrors the dataset endpoints' response.
type DatasetStatus struct {
	Rows     int        `json:"rows"`
	Orders   int        `json:"orders"`
	Dropped  int        `json:"dropped"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

// DatasetStatus reports what the server has loaded.
func (c *Client) DatasetStatus(ctx context.Context) (*DatasetStatus, error) {
	var status DatasetStatus
	if err := c.getJSON(ctx, "/api/dataset", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ReloadDataset asks the server to re-read its dataset.
func (c *Client) ReloadDataset(ctx context.Context) (*DatasetStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL("/api/dataset/reload"), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var status DatasetStatus
	if err := c.doJSON(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(target), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
}
