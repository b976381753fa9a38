// Package astar implements bounded A* search over the occupancy grid and
// the waypoint graph.
//
// Both engines share one search loop: an indexed min-heap open set keyed by
// f = g + h, a closed set of expanded nodes and an expansion cap that turns
// pathological inputs into ErrSearchAborted instead of an unbounded stall.
// Every call owns its scratch state, so independent searches never share
// mutable data.
package astar

import (
	"agent-pathfinder/internal/pqueue"
)

// Graph is generic over node type N.
// N must be comparable so it can be used in maps.
type Graph[N comparable] interface {
	Neighbors(node N) []Neighbor[N]
}

// Neighbor represents a reachable node with the cost of the step to it.
type Neighbor[N comparable] struct {
	ID   N
	Cost float64
}

// Heuristic returns the estimated cost from node a to node b.
type Heuristic[N comparable] func(from, to N) float64

// Expansion describes one node taken off the open set.
type Expansion[N comparable] struct {
	Node  N
	G     float64
	F     float64
	Index int // 1-based expansion count
}

// Observer is called for every expansion, in order.
type Observer[N comparable] func(Expansion[N])

// Result contains the outcome of a search.
type Result[N comparable] struct {
	Path          []N
	TotalCost     float64
	ExpandedNodes int
	HeapOps       int
}

// Search runs A* from start to goal. maxExpansions > 0 aborts the search with
// ErrSearchAborted when more than maxExpansions nodes would be expanded.
// The returned Result carries statistics even when err is non-nil.
func Search[N comparable](
	graph Graph[N],
	start, goal N,
	heuristic Heuristic[N],
	maxExpansions int,
	observe Observer[N],
) (Result[N], error) {
	openSet := pqueue.New[N, float64](64)
	cameFrom := make(map[N]N)
	gScore := map[N]float64{start: 0}
	closedSet := make(map[N]struct{})

	openSet.Upsert(start, heuristic(start, goal))

	result := Result[N]{}
	for {
		if openSet.IsEmpty() {
			result.HeapOps = openSet.Ops()
			return result, ErrNoPathFound
		}

		if maxExpansions > 0 && result.ExpandedNodes >= maxExpansions {
			result.HeapOps = openSet.Ops()
			return result, ErrSearchAborted
		}

		current, f, err := openSet.ExtractMin()
		if err != nil {
			result.HeapOps = openSet.Ops()
			return result, err
		}
		closedSet[current] = struct{}{}
		result.ExpandedNodes++

		if observe != nil {
			observe(Expansion[N]{Node: current, G: gScore[current], F: f, Index: result.ExpandedNodes})
		}

		if current == goal {
			result.Path = reconstructPath(cameFrom, current, start)
			result.TotalCost = gScore[current]
			result.HeapOps = openSet.Ops()
			return result, nil
		}

		for _, neighbor := range graph.Neighbors(current) {
			if _, closed := closedSet[neighbor.ID]; closed {
				continue
			}

			tentativeG := gScore[current] + neighbor.Cost
			if known, seen := gScore[neighbor.ID]; seen && tentativeG >= known {
				continue
			}

			cameFrom[neighbor.ID] = current
			gScore[neighbor.ID] = tentativeG
			openSet.Upsert(neighbor.ID, tentativeG+heuristic(neighbor.ID, goal))
		}
	}
}

// reconstructPath walks cameFrom back from current to start and returns the
// nodes in start-to-current order, both ends included.
func reconstructPath[N comparable](cameFrom map[N]N, current, start N) []N {
	path := []N{current}
	for current != start {
		previous, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, previous)
		current = previous
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
