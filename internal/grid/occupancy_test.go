package grid

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{0, 3}, {3, 0}, {-1, 4}} {
		_, err := New(tc.w, tc.h)
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
}

func TestOutOfBoundsIsNeverWalkable(t *testing.T) {
	g, err := New(4, 3)
	require.NoError(t, err)

	assert.True(t, g.IsWalkable(0, 0))
	assert.True(t, g.IsWalkable(3, 2))
	assert.False(t, g.IsWalkable(-1, 0))
	assert.False(t, g.IsWalkable(4, 0))
	assert.False(t, g.IsWalkable(0, 3))
	assert.False(t, g.IsWalkable(0, -1))
}

func TestMarkBlockedAppliesChebyshevMargin(t *testing.T) {
	g, err := New(7, 7)
	require.NoError(t, err)

	g.MarkBlocked(3, 3, 1)

	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			inside := x >= 2 && x <= 4 && y >= 2 && y <= 4
			assert.Equal(t, !inside, g.IsWalkable(x, y), "cell (%d,%d)", x, y)
		}
	}
	assert.Equal(t, 9, g.BlockedCount())
}

func TestMarkBlockedClampsToBounds(t *testing.T) {
	g, err := New(5, 5)
	require.NoError(t, err)

	g.MarkBlocked(0, 0, 2)
	assert.Equal(t, 9, g.BlockedCount())

	g.MarkBlocked(-4, -4, 1)
	assert.Equal(t, 9, g.BlockedCount(), "obstacle fully outside must not block anything")

	g.MarkBlocked(5, 2, 1)
	assert.False(t, g.IsWalkable(4, 1))
	assert.False(t, g.IsWalkable(4, 3))
	assert.Equal(t, 12, g.BlockedCount())
}

func TestMarkBlockedHugeMarginCoversGrid(t *testing.T) {
	g, err := New(4, 3)
	require.NoError(t, err)

	g.MarkBlocked(1, 1, math.MaxInt)
	assert.Equal(t, g.Area(), g.BlockedCount())
}

func TestRebuildResetsPreviousObstacles(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)

	g.Rebuild([]Cell{{1, 1}}, 0)
	assert.False(t, g.IsWalkable(1, 1))

	g.Rebuild([]Cell{{4, 4}}, 1)
	assert.True(t, g.IsWalkable(1, 1))
	assert.False(t, g.IsWalkable(5, 5))
	assert.Equal(t, 9, g.BlockedCount())
}

func TestCloneIsIndependent(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)
	c := g.Clone()

	g.MarkBlocked(1, 1, 0)
	assert.True(t, c.IsWalkable(1, 1))
}

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Origin: orb.Point{-5, 10}, CellSize: 2}

	c := f.ToCell(orb.Point{-0.5, 13.9})
	assert.Equal(t, Cell{X: 2, Y: 1}, c)
	assert.Equal(t, orb.Point{0, 13}, f.ToWorld(c))
	assert.Equal(t, c, f.ToCell(f.ToWorld(c)))

	assert.Equal(t, Cell{X: -1, Y: -1}, f.ToCell(orb.Point{-5.1, 9.9}), "floor, not truncation")
}

func TestFrameBounds(t *testing.T) {
	f := Frame{Origin: orb.Point{1, 1}, CellSize: 0.5}

	b := f.CellBound(Cell{X: 2, Y: 0})
	assert.Equal(t, orb.Point{2, 1}, b.Min)
	assert.Equal(t, orb.Point{2.5, 1.5}, b.Max)

	assert.Equal(t, orb.Point{6, 3}, f.Bound(10, 4).Max)
}
