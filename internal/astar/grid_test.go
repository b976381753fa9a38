package astar

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-pathfinder/internal/grid"
)

func openGrid(t *testing.T, w, h int) *grid.Occupancy {
	t.Helper()
	g, err := grid.New(w, h)
	require.NoError(t, err)
	return g
}

// bfsLength returns the cell count of the shortest 4-connected path, or 0.
func bfsLength(g *grid.Occupancy, start, goal grid.Cell) int {
	if !g.Walkable(start) || !g.Walkable(goal) {
		return 0
	}
	dist := map[grid.Cell]int{start: 1}
	queue := []grid.Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == goal {
			return dist[c]
		}
		for _, d := range cardinalOffsets {
			n := grid.Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if _, seen := dist[n]; seen || !g.Walkable(n) {
				continue
			}
			dist[n] = dist[c] + 1
			queue = append(queue, n)
		}
	}
	return 0
}

func assertContiguous(t *testing.T, g *grid.Occupancy, path []grid.Cell) {
	t.Helper()
	for i, c := range path {
		assert.True(t, g.Walkable(c), "cell %v on path is blocked", c)
		if i == 0 {
			continue
		}
		prev := path[i-1]
		assert.Equal(t, 1, abs(c.X-prev.X)+abs(c.Y-prev.Y), "step %v -> %v is not a cardinal move", prev, c)
	}
}

func TestGridOpenCornerToCorner(t *testing.T) {
	g := openGrid(t, 10, 10)

	var trace []Expansion[grid.Cell]
	engine := GridEngine{Grid: g, Observer: func(e Expansion[grid.Cell]) { trace = append(trace, e) }}

	res, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 9, Y: 9})
	require.NoError(t, err)
	require.Len(t, res.Path, 19)
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, res.Path[0])
	assert.Equal(t, grid.Cell{X: 9, Y: 9}, res.Path[18])
	assert.Equal(t, 18.0, res.TotalCost)
	assertContiguous(t, g, res.Path)

	require.NotEmpty(t, trace)
	assert.Equal(t, res.ExpandedNodes, len(trace))
	for i := 1; i < len(trace); i++ {
		assert.GreaterOrEqual(t, trace[i].F, trace[i-1].F, "f decreased at expansion %d", trace[i].Index)
	}
	seen := map[grid.Cell]bool{}
	for _, e := range trace {
		assert.False(t, seen[e.Node], "%v expanded twice", e.Node)
		seen[e.Node] = true
	}
}

func TestGridStartEqualsGoal(t *testing.T) {
	g := openGrid(t, 4, 4)

	res, err := GridEngine{Grid: g}.FindPath(grid.Cell{X: 2, Y: 1}, grid.Cell{X: 2, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, []grid.Cell{{X: 2, Y: 1}}, res.Path)
	assert.Equal(t, 0.0, res.TotalCost)
	assert.Equal(t, 1, res.ExpandedNodes)
}

func TestGridBlockedEndpointIsInvalid(t *testing.T) {
	g := openGrid(t, 5, 5)
	g.MarkBlocked(0, 0, 0)
	engine := GridEngine{Grid: g}

	res, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 4})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
	assert.Zero(t, res.HeapOps)
	assert.Zero(t, res.ExpandedNodes)

	_, err = engine.FindPath(grid.Cell{X: 4, Y: 4}, grid.Cell{X: 7, Y: 0})
	assert.ErrorIs(t, err, ErrInvalidEndpoint, "out of bounds goal")
}

func TestGridWallWithGap(t *testing.T) {
	g := openGrid(t, 5, 5)
	for y := 0; y < 5; y++ {
		if y != 4 {
			g.MarkBlocked(2, y, 0)
		}
	}
	engine := GridEngine{Grid: g}

	res, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 0})
	require.NoError(t, err)
	assert.Len(t, res.Path, bfsLength(g, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 0}))
	assert.Contains(t, res.Path, grid.Cell{X: 2, Y: 4})
	assertContiguous(t, g, res.Path)

	g.MarkBlocked(2, 4, 0)
	res, err = engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 0})
	assert.ErrorIs(t, err, ErrNoPathFound)
	assert.Nil(t, res.Path)
	assert.Positive(t, res.ExpandedNodes)
}

func TestGridMatchesBreadthFirstSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		g := openGrid(t, 12, 9)
		for i := 0; i < 35; i++ {
			g.MarkBlocked(rng.Intn(12), rng.Intn(9), 0)
		}
		start := grid.Cell{X: rng.Intn(12), Y: rng.Intn(9)}
		goal := grid.Cell{X: rng.Intn(12), Y: rng.Intn(9)}

		res, err := GridEngine{Grid: g}.FindPath(start, goal)
		want := bfsLength(g, start, goal)
		switch {
		case !g.Walkable(start) || !g.Walkable(goal):
			assert.ErrorIs(t, err, ErrInvalidEndpoint)
		case want == 0:
			assert.ErrorIs(t, err, ErrNoPathFound, "trial %d", trial)
		default:
			require.NoError(t, err, "trial %d", trial)
			assert.Len(t, res.Path, want, "trial %d", trial)
			assert.Equal(t, float64(want-1), res.TotalCost)
			assertContiguous(t, g, res.Path)
		}
	}
}

func TestGridIsDeterministic(t *testing.T) {
	g := openGrid(t, 8, 8)
	g.MarkBlocked(3, 3, 1)
	engine := GridEngine{Grid: g}

	first, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 7, Y: 7})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 7, Y: 7})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGridExpansionCapAborts(t *testing.T) {
	g := openGrid(t, 10, 10)
	engine := GridEngine{Grid: g, MaxExpansions: 5}

	res, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 9, Y: 9})
	assert.ErrorIs(t, err, ErrSearchAborted)
	assert.Equal(t, 5, res.ExpandedNodes)
	assert.Nil(t, res.Path)

	assert.Equal(t, 400, GridEngine{Grid: g}.ExpansionLimit())
	assert.Equal(t, 200, GridEngine{Grid: g, IterationFactor: 2}.ExpansionLimit())
	assert.Equal(t, math.MaxInt, GridEngine{Grid: g, IterationFactor: math.MaxInt / 10}.ExpansionLimit())
}

func TestGridEightConnectivity(t *testing.T) {
	g := openGrid(t, 6, 6)
	engine := GridEngine{Grid: g, Connectivity: Connectivity8}

	res, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Len(t, res.Path, 6)
	assert.InDelta(t, 5*math.Sqrt2, res.TotalCost, 1e-9)
}

func TestGridEightConnectivityDoesNotCutCorners(t *testing.T) {
	g := openGrid(t, 3, 3)
	g.MarkBlocked(1, 0, 0)
	engine := GridEngine{Grid: g, Connectivity: Connectivity8}

	res, err := engine.FindPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 2, Y: 1})
	require.NoError(t, err)
	assert.NotEqual(t, grid.Cell{X: 1, Y: 1}, res.Path[1], "diagonal past a blocked corner")
	assert.Equal(t, grid.Cell{X: 0, Y: 1}, res.Path[1])
}
