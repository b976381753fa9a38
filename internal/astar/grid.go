package astar

import (
	"fmt"
	"math"

	"agent-pathfinder/internal/grid"
)

// DefaultGridIterationFactor sizes the grid expansion cap as a multiple of
// the grid area.
const DefaultGridIterationFactor = 4

// Connectivity selects the grid neighborhood.
type Connectivity int

const (
	// Connectivity4 moves along the four cardinal directions at unit cost.
	Connectivity4 Connectivity = 4
	// Connectivity8 also allows diagonal moves at cost √2, never cutting a
	// blocked corner.
	Connectivity8 Connectivity = 8
)

// cardinalOffsets are visited in this order, which fixes tie-breaking.
var cardinalOffsets = [4]grid.Cell{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}, {X: 1, Y: 0}}

var diagonalOffsets = [4]grid.Cell{{X: -1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1}}

// GridEngine finds cell paths on an occupancy grid.
type GridEngine struct {
	Grid *grid.Occupancy

	// IterationFactor multiplies the grid area to give the expansion cap.
	// Zero means DefaultGridIterationFactor.
	IterationFactor int
	// MaxExpansions overrides the area-based cap when positive.
	MaxExpansions int
	// Connectivity defaults to Connectivity4.
	Connectivity Connectivity
	// Observer, when set, sees every expansion.
	Observer Observer[grid.Cell]
}

// FindPath returns the shortest cell path from start to goal, both included.
// Start and goal must be walkable; otherwise ErrInvalidEndpoint is returned
// without touching the open set.
func (e GridEngine) FindPath(start, goal grid.Cell) (Result[grid.Cell], error) {
	if !e.Grid.Walkable(start) {
		return Result[grid.Cell]{}, fmt.Errorf("%w: start %v is not walkable", ErrInvalidEndpoint, start)
	}
	if !e.Grid.Walkable(goal) {
		return Result[grid.Cell]{}, fmt.Errorf("%w: goal %v is not walkable", ErrInvalidEndpoint, goal)
	}

	g := gridGraph{grid: e.Grid, diagonal: e.Connectivity == Connectivity8}
	heuristic := manhattan
	if g.diagonal {
		heuristic = octile
	}

	return Search[grid.Cell](g, start, goal, heuristic, e.ExpansionLimit(), e.Observer)
}

// ExpansionLimit returns the cap applied to each search.
func (e GridEngine) ExpansionLimit() int {
	if e.MaxExpansions > 0 {
		return e.MaxExpansions
	}
	factor := e.IterationFactor
	if factor <= 0 {
		factor = DefaultGridIterationFactor
	}
	return scaledLimit(factor, e.Grid.Area())
}

// scaledLimit returns factor*size, saturating at math.MaxInt.
func scaledLimit(factor, size int) int {
	if size > 0 && factor > math.MaxInt/size {
		return math.MaxInt
	}
	return factor * size
}

// gridGraph adapts an occupancy grid to Graph.
type gridGraph struct {
	grid     *grid.Occupancy
	diagonal bool
}

func (g gridGraph) Neighbors(c grid.Cell) []Neighbor[grid.Cell] {
	out := make([]Neighbor[grid.Cell], 0, 8)
	for _, d := range cardinalOffsets {
		if g.grid.IsWalkable(c.X+d.X, c.Y+d.Y) {
			out = append(out, Neighbor[grid.Cell]{ID: grid.Cell{X: c.X + d.X, Y: c.Y + d.Y}, Cost: 1.0})
		}
	}
	if !g.diagonal {
		return out
	}
	for _, d := range diagonalOffsets {
		if !g.grid.IsWalkable(c.X+d.X, c.Y+d.Y) {
			continue
		}
		// No corner cutting: both orthogonal cells must be open.
		if !g.grid.IsWalkable(c.X+d.X, c.Y) || !g.grid.IsWalkable(c.X, c.Y+d.Y) {
			continue
		}
		out = append(out, Neighbor[grid.Cell]{ID: grid.Cell{X: c.X + d.X, Y: c.Y + d.Y}, Cost: math.Sqrt2})
	}
	return out
}

// manhattan is admissible for unit-cost cardinal moves.
func manhattan(a, b grid.Cell) float64 {
	return float64(abs(a.X-b.X) + abs(a.Y-b.Y))
}

// octile is admissible for unit cardinal and √2 diagonal moves.
func octile(a, b grid.Cell) float64 {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	return float64(dx+dy) + (math.Sqrt2-2)*float64(min(dx, dy))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
