// Package backend defines the contract with the dispatch backend. The
// backend owns all entity state; every call here is a plain request/response
// round trip and every returned value is a snapshot.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmaia/dispatchboard/core/model"
)

// Client is the full surface of the dispatch backend consumed by the
// dashboard.
type Client interface {
	// PrioritizedCalls returns emergencies ranked by the backend.
	PrioritizedCalls(ctx context.Context) ([]model.Emergency, error)
	// Calls returns emergencies in insertion order.
	Calls(ctx context.Context) ([]model.Emergency, error)
	// CreateCall submits a new emergency call.
	CreateCall(ctx context.Context, req model.NewEmergencyRequest) (model.Emergency, error)

	Teams(ctx context.Context) ([]model.Team, error)
	TeamActions(ctx context.Context, teamID int) ([]model.ActionHistoryEntry, error)
	UpdateTeamStatus(ctx context.Context, teamID int, status string) error

	// AssignTeam commits an assignment with the selected actions.
	AssignTeam(ctx context.Context, req model.AssignmentRequest) (model.AssignmentResult, error)

	Areas(ctx context.Context) ([]model.AffectedArea, error)
	UpdateAreaStatus(ctx context.Context, emergencyID int, status string) error

	Regions(ctx context.Context) (model.Region, error)
	// ZonePath returns the hierarchical path from the root region down to
	// the named zone.
	ZonePath(ctx context.Context, zone string) ([]string, error)

	ComputeRoute(ctx context.Context, origin, destination string) (model.Route, error)
}

// APIError is a logical failure reported by the backend in a well-formed
// response. Message carries the backend's own wording and is shown to the
// operator verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
}

// UserMessage extracts the operator-facing message from an error: the
// backend's own message when present, a generic fallback otherwise.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "request failed, try again"
}
