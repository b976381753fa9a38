package astar

import "errors"

// Expected search failures. Callers treat them as ordinary outcomes and may
// fall back to direct movement or retry on a later step.
var (
	// ErrInvalidEndpoint is returned before any search work when the start or
	// goal is not walkable or cannot be resolved to a waypoint.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrNoPathFound is returned when the open set is exhausted without
	// reaching the goal.
	ErrNoPathFound = errors.New("no path found")
	// ErrSearchAborted is returned when the expansion cap is exceeded.
	ErrSearchAborted = errors.New("search aborted: expansion limit exceeded")
)

// IsPathFailure reports whether err is one of the expected search failures
// rather than a contract violation.
func IsPathFailure(err error) bool {
	return errors.Is(err, ErrInvalidEndpoint) ||
		errors.Is(err, ErrNoPathFound) ||
		errors.Is(err, ErrSearchAborted)
}
