// Package backend implements the HTTP client for the dispatch backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rmaia/dispatchboard/config"
	corebackend "github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/model"
)

// HTTPClient talks JSON over HTTP to the dispatch backend.
type HTTPClient struct {
	base   string
	client *http.Client
}

// New creates a client from the backend configuration.
func New(cfg config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		base:   cfg.BaseURL,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

var _ corebackend.Client = (*HTTPClient)(nil)

// statusEnvelope is the success/message wrapper the backend uses on
// mutating endpoints.
type statusEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &corebackend.APIError{StatusCode: resp.StatusCode}
		var env statusEnvelope
		if json.Unmarshal(data, &env) == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// doMutate performs a mutating call and converts success:false envelopes
// into APIError with the backend message.
func (c *HTTPClient) doMutate(ctx context.Context, method, path string, body, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, body, &raw); err != nil {
		return err
	}
	var env statusEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if !env.Success {
		return &corebackend.APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// PrioritizedCalls returns the ranked emergency queue.
func (c *HTTPClient) PrioritizedCalls(ctx context.Context) ([]model.Emergency, error) {
	var out []model.Emergency
	if err := c.do(ctx, http.MethodGet, "/api/dispatch/prioritized", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Calls returns emergencies in insertion order.
func (c *HTTPClient) Calls(ctx context.Context) ([]model.Emergency, error) {
	var out []model.Emergency
	if err := c.do(ctx, http.MethodGet, "/api/dispatch/calls", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCall submits a new emergency call.
func (c *HTTPClient) CreateCall(ctx context.Context, req model.NewEmergencyRequest) (model.Emergency, error) {
	if err := req.Validate(); err != nil {
		return model.Emergency{}, err
	}
	var out struct {
		Emergency model.Emergency `json:"emergency"`
	}
	if err := c.doMutate(ctx, http.MethodPost, "/api/dispatch/calls", req, &out); err != nil {
		return model.Emergency{}, err
	}
	return out.Emergency, nil
}

// Teams returns the team roster.
func (c *HTTPClient) Teams(ctx context.Context) ([]model.Team, error) {
	var out []model.Team
	if err := c.do(ctx, http.MethodGet, "/api/dispatch/teams", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamActions returns a team's action history, most recent first.
func (c *HTTPClient) TeamActions(ctx context.Context, teamID int) ([]model.ActionHistoryEntry, error) {
	var out []model.ActionHistoryEntry
	path := fmt.Sprintf("/api/dispatch/teams/%d/actions", teamID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTeamStatus mutates a team's status.
func (c *HTTPClient) UpdateTeamStatus(ctx context.Context, teamID int, status string) error {
	path := fmt.Sprintf("/api/dispatch/teams/%d", teamID)
	body := map[string]string{"status": status}
	return c.doMutate(ctx, http.MethodPut, path, body, nil)
}

// AssignTeam commits an assignment.
func (c *HTTPClient) AssignTeam(ctx context.Context, req model.AssignmentRequest) (model.AssignmentResult, error) {
	var out model.AssignmentResult
	if err := c.doMutate(ctx, http.MethodPost, "/api/dispatch/assign", req, &out); err != nil {
		return model.AssignmentResult{}, err
	}
	return out, nil
}

// Areas returns the affected-area snapshot.
func (c *HTTPClient) Areas(ctx context.Context) ([]model.AffectedArea, error) {
	var out []model.AffectedArea
	if err := c.do(ctx, http.MethodGet, "/api/dispatch/areas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAreaStatus mutates one affected area's status.
func (c *HTTPClient) UpdateAreaStatus(ctx context.Context, emergencyID int, status string) error {
	if err := model.ValidAreaStatus(status); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/dispatch/areas/%d", emergencyID)
	body := map[string]string{"status": status}
	return c.doMutate(ctx, http.MethodPut, path, body, nil)
}

// Regions returns the root of the region hierarchy.
func (c *HTTPClient) Regions(ctx context.Context) (model.Region, error) {
	var out model.Region
	if err := c.do(ctx, http.MethodGet, "/api/dispatch/regions", nil, &out); err != nil {
		return model.Region{}, err
	}
	return out, nil
}

// ZonePath returns the hierarchy path down to the named zone.
func (c *HTTPClient) ZonePath(ctx context.Context, zone string) ([]string, error) {
	var out struct {
		statusEnvelope
		Path []string `json:"path"`
	}
	path := "/api/dispatch/regions/" + url.PathEscape(zone)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &corebackend.APIError{StatusCode: http.StatusOK, Message: out.Message}
	}
	return out.Path, nil
}

// ComputeRoute asks the backend for the shortest path between two locations.
func (c *HTTPClient) ComputeRoute(ctx context.Context, origin, destination string) (model.Route, error) {
	var out model.Route
	q := url.Values{}
	q.Set("origem", origin)
	q.Set("destino", destination)
	if err := c.do(ctx, http.MethodGet, "/api/dispatch/route?"+q.Encode(), nil, &out); err != nil {
		return model.Route{}, err
	}
	return out, nil
}
