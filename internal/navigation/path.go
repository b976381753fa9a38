package navigation

import (
	"github.com/paulmach/orb/planar"

	"agent-pathfinder/internal/grid"
	"agent-pathfinder/internal/waypoint"
)

// DefaultArriveRadius is the planar distance at which a path point counts as
// reached.
const DefaultArriveRadius = 0.5

// Path is an ordered list of world points from start to goal that a requester
// consumes front to back. Exactly one of Cells and Waypoints is set, matching
// the engine that produced it.
type Path struct {
	Points    []waypoint.Vec3
	Cells     []grid.Cell
	Waypoints []int

	next int
}

// Next returns the first unreached point.
func (p *Path) Next() (waypoint.Vec3, bool) {
	if p == nil || p.next >= len(p.Points) {
		return waypoint.Vec3{}, false
	}
	return p.Points[p.next], true
}

// Remaining returns the number of unreached points.
func (p *Path) Remaining() int {
	if p == nil {
		return 0
	}
	return len(p.Points) - p.next
}

// Done reports whether every point has been reached.
func (p *Path) Done() bool { return p.Remaining() == 0 }

// Advance pops every leading point closer than radius to position on the XZ
// plane and returns how many were popped. A non-positive radius uses
// DefaultArriveRadius.
func (p *Path) Advance(position waypoint.Vec3, radius float64) int {
	if p == nil {
		return 0
	}
	if radius <= 0 {
		radius = DefaultArriveRadius
	}
	popped := 0
	for p.next < len(p.Points) && planar.Distance(position.XZ(), p.Points[p.next].XZ()) < radius {
		p.next++
		popped++
	}
	return popped
}

// RemainingPoints returns the unreached points.
func (p *Path) RemainingPoints() []waypoint.Vec3 {
	if p == nil || p.next >= len(p.Points) {
		return nil
	}
	return p.Points[p.next:]
}

// RemainingCells returns the unreached cells of a grid path.
func (p *Path) RemainingCells() []grid.Cell {
	if p == nil || p.next >= len(p.Cells) {
		return nil
	}
	return p.Cells[p.next:]
}

// blockedOn reports whether any unreached cell is no longer walkable.
func (p *Path) blockedOn(occ *grid.Occupancy) bool {
	for _, c := range p.RemainingCells() {
		if !occ.Walkable(c) {
			return true
		}
	}
	return false
}

func (p *Path) clone() *Path {
	if p == nil {
		return nil
	}
	return &Path{
		Points:    append([]waypoint.Vec3(nil), p.Points...),
		Cells:     append([]grid.Cell(nil), p.Cells...),
		Waypoints: append([]int(nil), p.Waypoints...),
		next:      p.next,
	}
}
