package grid

import (
	"math"

	"github.com/paulmach/orb"
)

// Frame places a grid in world space on the XZ plane. orb.Point is used as
// (X, Z): index 0 is world X, index 1 is world Z.
type Frame struct {
	Origin   orb.Point
	CellSize float64
}

// ToCell converts a world position to the cell containing it.
func (f Frame) ToCell(p orb.Point) Cell {
	size := f.cellSize()
	return Cell{
		X: int(math.Floor((p.X() - f.Origin.X()) / size)),
		Y: int(math.Floor((p.Y() - f.Origin.Y()) / size)),
	}
}

// ToWorld returns the world position of the centre of c.
func (f Frame) ToWorld(c Cell) orb.Point {
	size := f.cellSize()
	return orb.Point{
		f.Origin.X() + (float64(c.X)+0.5)*size,
		f.Origin.Y() + (float64(c.Y)+0.5)*size,
	}
}

// CellBound returns the world-space square covered by c.
func (f Frame) CellBound(c Cell) orb.Bound {
	size := f.cellSize()
	lo := orb.Point{f.Origin.X() + float64(c.X)*size, f.Origin.Y() + float64(c.Y)*size}
	return orb.Bound{Min: lo, Max: orb.Point{lo.X() + size, lo.Y() + size}}
}

// Bound returns the world-space extent of a width x height grid.
func (f Frame) Bound(width, height int) orb.Bound {
	size := f.cellSize()
	return orb.Bound{
		Min: f.Origin,
		Max: orb.Point{f.Origin.X() + float64(width)*size, f.Origin.Y() + float64(height)*size},
	}
}

func (f Frame) cellSize() float64 {
	if f.CellSize <= 0 {
		return 1
	}
	return f.CellSize
}
