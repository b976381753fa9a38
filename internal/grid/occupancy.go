// Package grid holds the occupancy grid searched by the cell A* engine.
package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a grid is created with a non-positive dimension.
var ErrInvalidSize = errors.New("grid dimensions must be positive")

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Occupancy is a fixed-size walkability map. Cell (x, y) lives at
// occupied[x+y*width]. Coordinates outside the grid are never walkable.
type Occupancy struct {
	width    int
	height   int
	occupied []bool
}

// New creates an all-walkable grid of the given size.
func New(width, height int) (*Occupancy, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Occupancy{
		width:    width,
		height:   height,
		occupied: make([]bool, width*height),
	}, nil
}

// Width returns the number of columns.
func (g *Occupancy) Width() int { return g.width }

// Height returns the number of rows.
func (g *Occupancy) Height() int { return g.height }

// Area returns width*height.
func (g *Occupancy) Area() int { return g.width * g.height }

// InBounds reports whether (x, y) lies inside the grid.
func (g *Occupancy) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Reset marks every cell walkable.
func (g *Occupancy) Reset() {
	clear(g.occupied)
}

// MarkBlocked blocks (x, y) and every cell within margin (Chebyshev distance)
// of it, clamped to the grid. Obstacles whose margin square falls entirely
// outside the grid have no effect.
func (g *Occupancy) MarkBlocked(x, y, margin int) {
	margin = min(max(margin, 0), max(g.width, g.height))
	minX := max(x-margin, 0)
	maxX := min(x+margin, g.width-1)
	minY := max(y-margin, 0)
	maxY := min(y+margin, g.height-1)

	for cy := minY; cy <= maxY; cy++ {
		row := cy * g.width
		for cx := minX; cx <= maxX; cx++ {
			g.occupied[cx+row] = true
		}
	}
}

// IsWalkable reports whether (x, y) is inside the grid and not blocked.
func (g *Occupancy) IsWalkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return !g.occupied[x+y*g.width]
}

// Walkable is IsWalkable for a Cell.
func (g *Occupancy) Walkable(c Cell) bool {
	return g.IsWalkable(c.X, c.Y)
}

// Rebuild recomputes occupancy from scratch: every cell is reset, then each
// obstacle and its safety margin are blocked. It must finish before any
// search reads the grid in the same step.
func (g *Occupancy) Rebuild(obstacles []Cell, margin int) *Occupancy {
	g.Reset()
	for _, o := range obstacles {
		g.MarkBlocked(o.X, o.Y, margin)
	}
	return g
}

// BlockedCount returns the number of blocked cells.
func (g *Occupancy) BlockedCount() int {
	n := 0
	for _, b := range g.occupied {
		if b {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the grid.
func (g *Occupancy) Clone() *Occupancy {
	c := &Occupancy{width: g.width, height: g.height, occupied: make([]bool, len(g.occupied))}
	copy(c.occupied, g.occupied)
	return c
}
