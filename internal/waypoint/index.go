package waypoint

import (
	"github.com/dhconnelly/rtreego"
)

// pointTolerance is the half-size of the box stored for each waypoint.
const pointTolerance = 1e-9

// waypointEntry wraps a waypoint for R-tree storage
type waypointEntry struct {
	id   int
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *waypointEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// spatialIndex answers nearest-waypoint queries
type spatialIndex struct {
	tree *rtreego.Rtree
}

// newSpatialIndex creates a 3-D R-tree over waypoint positions
func newSpatialIndex(waypoints []Waypoint) *spatialIndex {
	tree := rtreego.NewTree(3, 25, 50) // 3D, min 25, max 50 entries per node

	for _, w := range waypoints {
		tree.Insert(&waypointEntry{
			id:   w.ID,
			bbox: toPoint(w.Position).ToRect(pointTolerance),
		})
	}

	return &spatialIndex{tree: tree}
}

// nearest returns the index of the waypoint closest to p. The R-tree gives a
// candidate; a box query around p at the candidate's distance then collects
// every waypoint at least as close so exact distance and insertion order
// decide the winner.
func (si *spatialIndex) nearest(p Vec3, waypoints []Waypoint) int {
	candidate, ok := si.tree.NearestNeighbor(toPoint(p)).(*waypointEntry)
	if !ok {
		return -1
	}

	reach := p.Distance(waypoints[candidate.id].Position) + pointTolerance
	bbox, err := rtreego.NewRect(
		rtreego.Point{p.X - reach, p.Y - reach, p.Z - reach},
		[]float64{2 * reach, 2 * reach, 2 * reach},
	)
	if err != nil {
		return candidate.id
	}

	best := candidate.id
	bestDist := p.Distance(waypoints[best].Position)
	for _, item := range si.tree.SearchIntersect(bbox) {
		id := item.(*waypointEntry).id
		d := p.Distance(waypoints[id].Position)
		if d < bestDist || (d == bestDist && id < best) {
			best = id
			bestDist = d
		}
	}

	return best
}

func toPoint(v Vec3) rtreego.Point {
	return rtreego.Point{v.X, v.Y, v.Z}
}
