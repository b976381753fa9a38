// Package waypoint builds and queries the sparse waypoint graph searched by
// the graph A* engine.
package waypoint

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// MaxNeighbors bounds each waypoint's neighbor list. It matches the
// 8-directional sampling pattern used by Build.
const MaxNeighbors = 8

var (
	// ErrEmptyGraph is returned when querying a graph without waypoints.
	ErrEmptyGraph = errors.New("waypoint graph is empty")
	// ErrUnknownWaypoint is returned for an index outside the graph.
	ErrUnknownWaypoint = errors.New("unknown waypoint")
	// ErrTooManyNeighbors is returned when a waypoint lists more than MaxNeighbors links.
	ErrTooManyNeighbors = errors.New("waypoint has too many neighbors")
	// ErrInvalidLayout is returned by Build for a non-positive sampling layout.
	ErrInvalidLayout = errors.New("invalid sampling layout")
)

// connectionOffsets is the sampling-grid neighborhood used to link waypoints.
// The order fixes neighbor list order and with it search tie-breaking.
var connectionOffsets = [MaxNeighbors][2]int{
	{1, 0}, {-1, 0},
	{0, 1}, {0, -1},
	{1, 1}, {-1, -1},
	{1, -1}, {-1, 1},
}

// Waypoint is a terrain-validated navigable point. Neighbors holds indices
// into the owning graph.
type Waypoint struct {
	ID        int    `json:"id"`
	Position  Vec3   `json:"position"`
	Sample    [2]int `json:"sample"`
	Neighbors []int  `json:"neighbors"`
}

// GroundTestFunc samples the terrain column at world (x, z). It returns the
// ground hit position and whether the column has walkable ground at all.
type GroundTestFunc func(x, z float64) (Vec3, bool)

// Layout describes the regular sampling grid used by Build.
type Layout struct {
	Origin       Vec3    // X and Z give the world position of sample (0, 0)
	Width        int     // samples along X
	Depth        int     // samples along Z
	Spacing      float64 // world distance between adjacent samples
	GroundOffset float64 // height added above each ground hit
}

// Graph is an immutable arena of waypoints. It is safe for concurrent reads.
type Graph struct {
	waypoints []Waypoint
	index     *spatialIndex
}

// Build samples layout against groundTest and links every pair of samples
// whose sampling coordinates differ by one of the 8 neighborhood offsets.
// Columns without ground produce no waypoint and no links.
func Build(layout Layout, groundTest GroundTestFunc, logger *slog.Logger) (*Graph, error) {
	if layout.Width <= 0 || layout.Depth <= 0 || layout.Spacing <= 0 {
		return nil, fmt.Errorf("%w: %dx%d spacing %v", ErrInvalidLayout, layout.Width, layout.Depth, layout.Spacing)
	}
	if logger == nil {
		logger = slog.Default()
	}
	startTime := time.Now()

	waypoints := make([]Waypoint, 0, layout.Width*layout.Depth)
	bySample := make(map[[2]int]int, layout.Width*layout.Depth)

	for x := 0; x < layout.Width; x++ {
		for z := 0; z < layout.Depth; z++ {
			wx := layout.Origin.X + float64(x)*layout.Spacing
			wz := layout.Origin.Z + float64(z)*layout.Spacing
			hit, ok := groundTest(wx, wz)
			if !ok {
				continue
			}
			hit.Y += layout.GroundOffset

			id := len(waypoints)
			sample := [2]int{x, z}
			waypoints = append(waypoints, Waypoint{ID: id, Position: hit, Sample: sample})
			bySample[sample] = id
		}
	}

	edgeCount := 0
	for i := range waypoints {
		sample := waypoints[i].Sample
		for _, offset := range connectionOffsets {
			neighbor, ok := bySample[[2]int{sample[0] + offset[0], sample[1] + offset[1]}]
			if !ok {
				continue
			}
			waypoints[i].Neighbors = append(waypoints[i].Neighbors, neighbor)
			edgeCount++
		}
	}

	logger.Info("waypoint graph built",
		"samples", layout.Width*layout.Depth,
		"waypoints", len(waypoints),
		"links", edgeCount,
		"elapsed", time.Since(startTime))

	return &Graph{waypoints: waypoints, index: newSpatialIndex(waypoints)}, nil
}

// NewGraph wraps an explicit waypoint list. IDs are reassigned to slice
// positions; neighbor indices must refer to waypoints in the list.
func NewGraph(waypoints []Waypoint) (*Graph, error) {
	owned := make([]Waypoint, len(waypoints))
	for i, w := range waypoints {
		if len(w.Neighbors) > MaxNeighbors {
			return nil, fmt.Errorf("%w: waypoint %d has %d", ErrTooManyNeighbors, i, len(w.Neighbors))
		}
		for _, n := range w.Neighbors {
			if n < 0 || n >= len(waypoints) {
				return nil, fmt.Errorf("%w: waypoint %d links to %d", ErrUnknownWaypoint, i, n)
			}
		}
		w.ID = i
		w.Neighbors = append([]int(nil), w.Neighbors...)
		owned[i] = w
	}
	return &Graph{waypoints: owned, index: newSpatialIndex(owned)}, nil
}

// Len returns the number of waypoints.
func (g *Graph) Len() int { return len(g.waypoints) }

// Waypoint returns the waypoint at index id.
func (g *Graph) Waypoint(id int) (Waypoint, error) {
	if id < 0 || id >= len(g.waypoints) {
		return Waypoint{}, fmt.Errorf("%w: %d", ErrUnknownWaypoint, id)
	}
	return g.waypoints[id], nil
}

// Position returns the position of waypoint id. id must be valid.
func (g *Graph) Position(id int) Vec3 { return g.waypoints[id].Position }

// Neighbors returns the neighbor indices of waypoint id. id must be valid.
// The returned slice must not be modified.
func (g *Graph) Neighbors(id int) []int { return g.waypoints[id].Neighbors }

// EdgeCount returns the number of directed links.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, w := range g.waypoints {
		n += len(w.Neighbors)
	}
	return n
}

// Nearest finds the waypoint closest to p by Euclidean distance. Ties go to
// the waypoint inserted first.
func (g *Graph) Nearest(p Vec3) (int, float64, error) {
	if len(g.waypoints) == 0 {
		return -1, 0, ErrEmptyGraph
	}
	id := g.index.nearest(p, g.waypoints)
	return id, p.Distance(g.waypoints[id].Position), nil
}
