// Package client is the HTTP client for the control daemon's API, used by
// the CLI and by engine-side reporters.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediaproxy/internal/api"
	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/deliver"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/queue"
)

// ErrDaemonUnavailable marks connection-level failures so callers can
// distinguish "daemon not running" from API errors.
var ErrDaemonUnavailable = errors.New("control daemon unavailable")

// APIError is a non-2xx response from the daemon, message passed through
// verbatim. Fields is populated for validation failures.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []deliver.FieldError
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("control api returned status %d", e.StatusCode)
}

// Client talks to one control daemon.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	caps  *capabilities.Detector
}

// New builds a client for the given bind address ("host:port" or a full
// URL). An empty bind yields a nil client; method calls on a nil client
// report the daemon unavailable.
func New(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse control api address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	// Fetch failures surface on the Capabilities return value, so the
	// detector itself logs nowhere.
	caps, err := capabilities.NewDetector(bind, logging.NewNop())
	if err != nil {
		return nil, err
	}

	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
		caps:  caps,
	}, nil
}

// Health fetches the daemon liveness payload.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var health api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &health)
	return health, err
}

// Capabilities refreshes the client's capability detector and returns the
// resulting snapshot. Overlapping refreshes resolve in favor of the most
// recently issued request, so a slow response never reports stale data.
func (c *Client) Capabilities(ctx context.Context) (capabilities.Capabilities, error) {
	if c == nil {
		return capabilities.Capabilities{}, ErrDaemonUnavailable
	}
	if err := c.caps.Refresh(ctx); err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return capabilities.Capabilities{}, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
		}
		return capabilities.Capabilities{}, err
	}
	snapshot, ok := c.caps.Snapshot()
	if !ok {
		return capabilities.Capabilities{}, errors.New("capability snapshot not loaded")
	}
	return snapshot, nil
}

// Routing asks the daemon for a routing decision on one path.
func (c *Client) Routing(ctx context.Context, path string) (api.RoutingResponse, error) {
	var routing api.RoutingResponse
	endpoint := "/api/routing?path=" + url.QueryEscape(path)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &routing)
	return routing, err
}

// CreateJob submits a job request and returns the new job id.
func (c *Client) CreateJob(ctx context.Context, req api.CreateJobRequest) (string, error) {
	var created api.CreateJobResponse
	if err := c.do(ctx, http.MethodPost, "/control/jobs/create", req, &created); err != nil {
		return "", err
	}
	return created.JobID, nil
}

// StartJob hands a pending job to the engine.
func (c *Client) StartJob(ctx context.Context, jobUUID string) (api.JobView, error) {
	var resp api.JobResponse
	err := c.do(ctx, http.MethodPost, "/control/jobs/"+url.PathEscape(jobUUID)+"/start", struct{}{}, &resp)
	return resp.Job, err
}

// CancelJob requests best-effort cancellation.
func (c *Client) CancelJob(ctx context.Context, jobUUID string) (api.JobView, error) {
	var resp api.JobResponse
	err := c.do(ctx, http.MethodPost, "/control/jobs/"+url.PathEscape(jobUUID)+"/cancel", struct{}{}, &resp)
	return resp.Job, err
}

// ReportStatus posts an engine progress or terminal report.
func (c *Client) ReportStatus(ctx context.Context, jobUUID string, report api.StatusReportRequest) (api.JobView, error) {
	var resp api.JobResponse
	err := c.do(ctx, http.MethodPost, "/control/jobs/"+url.PathEscape(jobUUID)+"/status", report, &resp)
	return resp.Job, err
}

// GetJob fetches one job.
func (c *Client) GetJob(ctx context.Context, jobUUID string) (api.JobView, error) {
	var resp api.JobResponse
	err := c.do(ctx, http.MethodGet, "/control/jobs/"+url.PathEscape(jobUUID), nil, &resp)
	return resp.Job, err
}

// ListQueue fetches jobs, optionally filtered by status.
func (c *Client) ListQueue(ctx context.Context, statuses ...queue.Status) ([]api.JobView, error) {
	endpoint := "/control/queue"
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", string(status))
		}
		endpoint += "?" + values.Encode()
	}
	var list api.QueueListResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}
	return list.Jobs, nil
}

// ResetQueue clears the daemon's queue.
func (c *Client) ResetQueue(ctx context.Context) (int64, error) {
	var reset api.ResetResponse
	if err := c.do(ctx, http.MethodPost, "/control/queue/reset", struct{}{}, &reset); err != nil {
		return 0, err
	}
	return reset.Removed, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	if c == nil {
		return ErrDaemonUnavailable
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded struct {
			Error  string               `json:"error"`
			Fields []deliver.FieldError `json:"fields"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil {
			apiErr.Message = decoded.Error
			apiErr.Fields = decoded.Fields
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsUnavailable reports whether the error means the daemon is not
// reachable.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrDaemonUnavailable) || errors.As(err, &opErr)
}
