package navigation

import (
	"errors"
	"fmt"

	"agent-pathfinder/internal/astar"
	"agent-pathfinder/internal/waypoint"
)

// RequesterID identifies an agent that asks for paths.
type RequesterID int

// Status is a requester's position in the request lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason explains a failed result.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidEndpoint
	ReasonNoPathFound
	ReasonSearchAborted
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidEndpoint:
		return "invalid_endpoint"
	case ReasonNoPathFound:
		return "no_path_found"
	case ReasonSearchAborted:
		return "search_aborted"
	default:
		return "unknown"
	}
}

// MarshalText lets reasons appear by name in JSON and logs.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// MarshalText lets statuses appear by name in JSON and logs.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a name written by MarshalText.
func (r *Reason) UnmarshalText(text []byte) error {
	for v := ReasonNone; v <= ReasonSearchAborted; v++ {
		if v.String() == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}

// UnmarshalText parses a name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for v := StatusIdle; v <= StatusFailed; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// ReasonFor maps an engine error to a failure reason. Errors that are not
// path failures map to ReasonNone.
func ReasonFor(err error) Reason {
	switch {
	case errors.Is(err, astar.ErrInvalidEndpoint):
		return ReasonInvalidEndpoint
	case errors.Is(err, astar.ErrNoPathFound):
		return ReasonNoPathFound
	case errors.Is(err, astar.ErrSearchAborted):
		return ReasonSearchAborted
	default:
		return ReasonNone
	}
}

// Result is a requester's state as seen by Poll.
type Result struct {
	Status Status
	// Reason is set when Status is StatusFailed.
	Reason Reason
	// Path is a copy of the held path when Status is StatusSuccess.
	Path *Path
	// Goal is the requested goal in world space. Failed requesters can move
	// straight toward it.
	Goal waypoint.Vec3
	// ExpandedNodes is the work done by the last search.
	ExpandedNodes int
	// Err is the engine error behind a failure.
	Err error
}
