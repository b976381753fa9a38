package astar

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-pathfinder/internal/waypoint"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func flat(x, z float64) (waypoint.Vec3, bool) {
	return waypoint.Vec3{X: x, Z: z}, true
}

func buildGraph(t *testing.T, layout waypoint.Layout, ground waypoint.GroundTestFunc) *waypoint.Graph {
	t.Helper()
	g, err := waypoint.Build(layout, ground, quiet)
	require.NoError(t, err)
	return g
}

// dijkstra returns the shortest distance between two waypoints, or -1.
func dijkstra(g *waypoint.Graph, start, goal int) float64 {
	dist := make([]float64, g.Len())
	done := make([]bool, g.Len())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[start] = 0
	for {
		u := -1
		for i := range dist {
			if !done[i] && !math.IsInf(dist[i], 1) && (u == -1 || dist[i] < dist[u]) {
				u = i
			}
		}
		if u == -1 {
			return -1
		}
		if u == goal {
			return dist[u]
		}
		done[u] = true
		for _, n := range g.Neighbors(u) {
			if d := dist[u] + g.Position(u).Distance(g.Position(n)); d < dist[n] {
				dist[n] = d
			}
		}
	}
}

func TestGraphDiagonalAcrossLattice(t *testing.T) {
	g := buildGraph(t, waypoint.Layout{Width: 5, Depth: 5, Spacing: 1}, flat)
	engine := GraphEngine{Graph: g}

	// Sample (x, z) sits at index x*depth+z.
	res, err := engine.FindPath(0, 24)
	require.NoError(t, err)
	assert.Len(t, res.Path, 5)
	assert.InDelta(t, 4*math.Sqrt2, res.TotalCost, 1e-9)
	for i := 1; i < len(res.Path); i++ {
		assert.Contains(t, g.Neighbors(res.Path[i-1]), res.Path[i])
	}

	positions := engine.Positions(res.Path)
	assert.Equal(t, waypoint.Vec3{}, positions[0])
	assert.Equal(t, waypoint.Vec3{X: 4, Z: 4}, positions[4])
}

func TestGraphMatchesDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ground := func(x, z float64) (waypoint.Vec3, bool) {
		if rng.Float64() < 0.25 {
			return waypoint.Vec3{}, false
		}
		return waypoint.Vec3{X: x, Y: rng.Float64() * 2, Z: z}, true
	}
	g := buildGraph(t, waypoint.Layout{Width: 10, Depth: 10, Spacing: 1}, ground)
	engine := GraphEngine{Graph: g}

	for trial := 0; trial < 40; trial++ {
		start, goal := rng.Intn(g.Len()), rng.Intn(g.Len())
		want := dijkstra(g, start, goal)

		res, err := engine.FindPath(start, goal)
		if want < 0 {
			assert.ErrorIs(t, err, ErrNoPathFound, "trial %d", trial)
			continue
		}
		require.NoError(t, err, "trial %d", trial)
		assert.InDelta(t, want, res.TotalCost, 1e-9, "trial %d", trial)
		assert.Equal(t, start, res.Path[0])
		assert.Equal(t, goal, res.Path[len(res.Path)-1])
	}
}

func TestGraphDisconnectedIslands(t *testing.T) {
	island := func(x, z float64) (waypoint.Vec3, bool) {
		if x == 2 {
			return waypoint.Vec3{}, false
		}
		return waypoint.Vec3{X: x, Z: z}, true
	}
	g := buildGraph(t, waypoint.Layout{Width: 5, Depth: 3, Spacing: 1}, island)

	start, _, err := g.Nearest(waypoint.Vec3{})
	require.NoError(t, err)
	goal, _, err := g.Nearest(waypoint.Vec3{X: 4, Z: 2})
	require.NoError(t, err)

	res, err := GraphEngine{Graph: g}.FindPath(start, goal)
	assert.ErrorIs(t, err, ErrNoPathFound)
	assert.Equal(t, 6, res.ExpandedNodes)
}

func TestGraphEmptyIsContractViolation(t *testing.T) {
	g, err := waypoint.NewGraph(nil)
	require.NoError(t, err)

	_, err = GraphEngine{Graph: g}.FindPath(0, 0)
	assert.ErrorIs(t, err, waypoint.ErrEmptyGraph)
	assert.False(t, IsPathFailure(err))

	_, err = GraphEngine{Graph: g}.FindPathBetween(waypoint.Vec3{}, waypoint.Vec3{X: 1})
	assert.ErrorIs(t, err, waypoint.ErrEmptyGraph)
}

func TestGraphUnknownEndpoint(t *testing.T) {
	g := buildGraph(t, waypoint.Layout{Width: 2, Depth: 2, Spacing: 1}, flat)

	res, err := GraphEngine{Graph: g}.FindPath(0, 17)
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
	assert.ErrorIs(t, err, waypoint.ErrUnknownWaypoint)
	assert.True(t, IsPathFailure(err))
	assert.Zero(t, res.HeapOps)
}

func TestGraphFindPathBetweenSnapsToNearest(t *testing.T) {
	g := buildGraph(t, waypoint.Layout{Width: 4, Depth: 4, Spacing: 1}, flat)
	engine := GraphEngine{Graph: g}

	res, err := engine.FindPathBetween(waypoint.Vec3{X: 0.1, Z: -0.2}, waypoint.Vec3{X: 3.3, Z: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Path[0])
	assert.Equal(t, 12, res.Path[len(res.Path)-1])
	assert.InDelta(t, 3.0, res.TotalCost, 1e-9)

	engine.MaxSnapDistance = 1
	_, err = engine.FindPathBetween(waypoint.Vec3{X: -5}, waypoint.Vec3{X: 3})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestGraphExpansionCap(t *testing.T) {
	g := buildGraph(t, waypoint.Layout{Width: 6, Depth: 6, Spacing: 1}, flat)

	assert.Equal(t, waypoint.MaxNeighbors*36, GraphEngine{Graph: g}.ExpansionLimit())

	_, err := GraphEngine{Graph: g, MaxExpansions: 2}.FindPath(0, 35)
	assert.ErrorIs(t, err, ErrSearchAborted)
}

func TestGraphIsDeterministic(t *testing.T) {
	g := buildGraph(t, waypoint.Layout{Width: 7, Depth: 7, Spacing: 1}, flat)
	engine := GraphEngine{Graph: g}

	first, err := engine.FindPath(3, 45)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.FindPath(3, 45)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
