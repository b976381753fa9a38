package astar

import (
	"fmt"

	"agent-pathfinder/internal/waypoint"
)

// DefaultGraphIterationFactor sizes the graph expansion cap as a multiple of
// MaxNeighbors times the waypoint count.
const DefaultGraphIterationFactor = 1

// GraphEngine finds waypoint paths on a waypoint graph.
type GraphEngine struct {
	Graph *waypoint.Graph

	// IterationFactor multiplies MaxNeighbors*waypointCount to give the
	// expansion cap. Zero means DefaultGraphIterationFactor.
	IterationFactor int
	// MaxExpansions overrides the computed cap when positive.
	MaxExpansions int
	// MaxSnapDistance rejects world positions farther than this from their
	// nearest waypoint. Zero disables the check.
	MaxSnapDistance float64
	// Observer, when set, sees every expansion.
	Observer Observer[int]
}

// FindPath returns the shortest waypoint path between two waypoint indices.
// Calling it on an empty graph is a contract violation and returns
// waypoint.ErrEmptyGraph.
func (e GraphEngine) FindPath(start, goal int) (Result[int], error) {
	if e.Graph == nil || e.Graph.Len() == 0 {
		return Result[int]{}, waypoint.ErrEmptyGraph
	}
	if _, err := e.Graph.Waypoint(start); err != nil {
		return Result[int]{}, fmt.Errorf("%w: start: %w", ErrInvalidEndpoint, err)
	}
	if _, err := e.Graph.Waypoint(goal); err != nil {
		return Result[int]{}, fmt.Errorf("%w: goal: %w", ErrInvalidEndpoint, err)
	}

	heuristic := func(a, b int) float64 {
		return e.Graph.Position(a).Distance(e.Graph.Position(b))
	}
	return Search[int](waypointGraph{e.Graph}, start, goal, heuristic, e.ExpansionLimit(), e.Observer)
}

// FindPathBetween resolves both world positions to their nearest waypoints
// and searches between them.
func (e GraphEngine) FindPathBetween(from, to waypoint.Vec3) (Result[int], error) {
	if e.Graph == nil || e.Graph.Len() == 0 {
		return Result[int]{}, waypoint.ErrEmptyGraph
	}
	start, err := e.resolve(from)
	if err != nil {
		return Result[int]{}, fmt.Errorf("start: %w", err)
	}
	goal, err := e.resolve(to)
	if err != nil {
		return Result[int]{}, fmt.Errorf("goal: %w", err)
	}
	return e.FindPath(start, goal)
}

func (e GraphEngine) resolve(p waypoint.Vec3) (int, error) {
	id, dist, err := e.Graph.Nearest(p)
	if err != nil {
		return -1, err
	}
	if e.MaxSnapDistance > 0 && dist > e.MaxSnapDistance {
		return -1, fmt.Errorf("%w: nearest waypoint %d is %.3f away", ErrInvalidEndpoint, id, dist)
	}
	return id, nil
}

// ExpansionLimit returns the cap applied to each search.
func (e GraphEngine) ExpansionLimit() int {
	if e.MaxExpansions > 0 {
		return e.MaxExpansions
	}
	factor := e.IterationFactor
	if factor <= 0 {
		factor = DefaultGraphIterationFactor
	}
	return scaledLimit(factor, waypoint.MaxNeighbors*e.Graph.Len())
}

// Positions maps a waypoint path to world positions.
func (e GraphEngine) Positions(path []int) []waypoint.Vec3 {
	out := make([]waypoint.Vec3, len(path))
	for i, id := range path {
		out[i] = e.Graph.Position(id)
	}
	return out
}

// waypointGraph adapts a waypoint graph to Graph with exact Euclidean edge costs.
type waypointGraph struct {
	graph *waypoint.Graph
}

func (g waypointGraph) Neighbors(id int) []Neighbor[int] {
	from := g.graph.Position(id)
	links := g.graph.Neighbors(id)
	out := make([]Neighbor[int], 0, len(links))
	for _, n := range links {
		out = append(out, Neighbor[int]{ID: n, Cost: from.Distance(g.graph.Position(n))})
	}
	return out
}
