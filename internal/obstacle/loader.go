// Package obstacle loads obstacle footprints from GeoJSON and rasterises
// them onto the occupancy grid.
package obstacle

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"agent-pathfinder/internal/grid"
)

// ErrNoObstacleFiles is returned when a directory holds no .geojson files.
var ErrNoObstacleFiles = errors.New("no obstacle files found")

// Set holds obstacle footprints on the XZ plane. orb.Point is (X, Z).
type Set struct {
	Points   []orb.Point
	Polygons []orb.Polygon
}

// Len returns the number of footprints.
func (s Set) Len() int { return len(s.Points) + len(s.Polygons) }

// Parse reads a GeoJSON FeatureCollection. Point and MultiPoint geometries
// become point obstacles; Polygon and MultiPolygon become area obstacles.
// Other geometry types are ignored.
func Parse(data []byte) (Set, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Set{}, fmt.Errorf("parse obstacle collection: %w", err)
	}

	var set Set
	for _, feature := range fc.Features {
		set.add(feature.Geometry)
	}
	return set, nil
}

func (s *Set) add(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.Point:
		s.Points = append(s.Points, g)
	case orb.MultiPoint:
		s.Points = append(s.Points, g...)
	case orb.Polygon:
		s.Polygons = append(s.Polygons, g)
	case orb.MultiPolygon:
		s.Polygons = append(s.Polygons, g...)
	case orb.Collection:
		for _, child := range g {
			s.add(child)
		}
	}
}

// Load reads obstacles from a .geojson file, or from every .geojson file in
// a directory. Unreadable files in a directory are logged and skipped.
func Load(path string, logger *slog.Logger) (Set, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return Set{}, fmt.Errorf("stat obstacle path: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return Set{}, fmt.Errorf("read obstacle file: %w", err)
		}
		set, err := Parse(data)
		if err != nil {
			return Set{}, err
		}
		logger.Info("obstacles loaded", "file", filepath.Base(path), "points", len(set.Points), "polygons", len(set.Polygons))
		return set, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.geojson"))
	if err != nil {
		return Set{}, err
	}
	if len(files) == 0 {
		return Set{}, fmt.Errorf("%w in %s", ErrNoObstacleFiles, path)
	}

	logger.Info("loading obstacles", "dir", path, "files", len(files))

	var all Set
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("failed to read obstacle file", "file", file, "error", err)
			continue
		}
		set, err := Parse(data)
		if err != nil {
			logger.Warn("failed to parse obstacle file", "file", file, "error", err)
			continue
		}
		all.Points = append(all.Points, set.Points...)
		all.Polygons = append(all.Polygons, set.Polygons...)
		logger.Debug("obstacle file loaded", "file", filepath.Base(file), "footprints", set.Len())
	}

	logger.Info("obstacles loaded", "points", len(all.Points), "polygons", len(all.Polygons))
	return all, nil
}

// Cells rasterises the set onto a width x height grid placed by frame. A
// point marks the cell containing it; a polygon marks every cell whose centre
// it contains, or the cell under its bounding-box centre when it is smaller
// than a cell. Cells outside the grid are dropped. The result is sorted by
// row then column and holds no duplicates.
func (s Set) Cells(frame grid.Frame, width, height int) []grid.Cell {
	seen := make(map[grid.Cell]struct{})
	inBounds := func(c grid.Cell) bool {
		return c.X >= 0 && c.Y >= 0 && c.X < width && c.Y < height
	}
	mark := func(c grid.Cell) {
		if inBounds(c) {
			seen[c] = struct{}{}
		}
	}

	for _, p := range s.Points {
		mark(frame.ToCell(p))
	}

	for _, poly := range s.Polygons {
		if len(poly) == 0 {
			continue
		}
		bound := poly.Bound()
		lo := frame.ToCell(bound.Min)
		hi := frame.ToCell(bound.Max)

		hit := false
		for y := max(lo.Y, 0); y <= min(hi.Y, height-1); y++ {
			for x := max(lo.X, 0); x <= min(hi.X, width-1); x++ {
				c := grid.Cell{X: x, Y: y}
				if planar.PolygonContains(poly, frame.ToWorld(c)) {
					mark(c)
					hit = true
				}
			}
		}
		if !hit {
			mark(frame.ToCell(bound.Center()))
		}
	}

	cells := make([]grid.Cell, 0, len(seen))
	for c := range seen {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b grid.Cell) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return cells
}
