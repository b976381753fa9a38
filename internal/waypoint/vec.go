package waypoint

import (
	"math"

	"github.com/paulmach/orb"
)

// Vec3 is a world-space position. Y is up; the ground plane is XZ.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance calculates the Euclidean distance between two positions.
func (v Vec3) Distance(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// XZ projects v onto the ground plane.
func (v Vec3) XZ() orb.Point {
	return orb.Point{v.X, v.Z}
}
