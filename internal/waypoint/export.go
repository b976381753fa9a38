package waypoint

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LineStrings returns every undirected link once, projected onto the XZ plane.
func (g *Graph) LineStrings() []orb.LineString {
	lines := make([]orb.LineString, 0, g.EdgeCount()/2)

	for _, w := range g.waypoints {
		for _, neighborID := range w.Neighbors {
			// Links are stored in both directions; keep the one from the lower ID.
			// A one-way link from the higher ID is kept as well.
			if w.ID > neighborID && g.hasLink(neighborID, w.ID) {
				continue
			}
			lines = append(lines, orb.LineString{w.Position.XZ(), g.waypoints[neighborID].Position.XZ()})
		}
	}

	return lines
}

func (g *Graph) hasLink(from, to int) bool {
	for _, n := range g.waypoints[from].Neighbors {
		if n == to {
			return true
		}
	}
	return false
}

// FeatureCollection exports waypoints as Point features and links as
// LineString features. Each point carries its id, height and neighbor ids.
func (g *Graph) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, w := range g.waypoints {
		f := geojson.NewFeature(w.Position.XZ())
		f.Properties["id"] = w.ID
		f.Properties["height"] = w.Position.Y
		f.Properties["neighbors"] = w.Neighbors
		fc.Append(f)
	}
	for _, line := range g.LineStrings() {
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "link"
		fc.Append(f)
	}

	return fc
}

// PathFeature converts an ordered list of positions into a LineString feature.
func PathFeature(points []Vec3) *geojson.Feature {
	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, p.XZ())
	}
	f := geojson.NewFeature(line)
	f.Properties["kind"] = "path"
	f.Properties["waypoints"] = len(points)
	return f
}
