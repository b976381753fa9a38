package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-pathfinder/internal/grid"
	"agent-pathfinder/internal/navigation"
	"agent-pathfinder/internal/waypoint"
)

func TestParsePoints(t *testing.T) {
	points, err := parsePoints([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []orb.Point{{1, 2}, {3, 4}}, points)

	_, err = parsePoints([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestFlatGroundSkipsBlockedColumns(t *testing.T) {
	terrain, err := grid.New(4, 4)
	require.NoError(t, err)
	terrain.MarkBlocked(2, 1, 0)

	ground := flatGround(grid.Frame{CellSize: 1}, terrain)

	hit, ok := ground(0.5, 0.5)
	assert.True(t, ok)
	assert.Equal(t, 0.0, hit.Y)

	_, ok = ground(2.2, 1.9)
	assert.False(t, ok)

	_, ok = ground(-3, 10)
	assert.True(t, ok, "outside the grid the plane continues")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "pathfinder.json")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`{
		"logLevel": "error",
		"grid": {"width": 6, "height": 6},
		"waypoints": {"width": 3, "depth": 3, "spacing": 1}
	}`), 0644))
	out := filepath.Join(dir, "graph.geojson")

	rootCmd.SetArgs([]string{"export", "--config", cfgFile, "--out", out})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 9+20)
}

func TestLoadWorldWithObstacles(t *testing.T) {
	dir := t.TempDir()
	obstacles := filepath.Join(dir, "obstacles.geojson")
	require.NoError(t, os.WriteFile(obstacles, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1.5,1.5]}}
	]}`), 0644))
	cfgFile := filepath.Join(dir, "pathfinder.json")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`{
		"logLevel": "error",
		"grid": {"width": 5, "height": 5},
		"obstacles": {"margin": 0},
		"waypoints": {"width": 5, "depth": 5, "spacing": 1, "originX": 0.5, "originZ": 0.5}
	}`), 0644))

	rootCmd.SetArgs([]string{"export", "--config", cfgFile, "--obstacles", obstacles, "--out", filepath.Join(dir, "g.json")})
	require.NoError(t, rootCmd.Execute())

	w, err := loadWorld(exportCmd)
	require.NoError(t, err)
	assert.Equal(t, []grid.Cell{{X: 1, Y: 1}}, w.obstacles)
	assert.Equal(t, 24, w.graph.Len(), "the column over the obstacle has no waypoint")
}

func TestGridCommandRejectsUnevenEndpoints(t *testing.T) {
	rootCmd.SetArgs([]string{"grid", "--from", "1", "--to", "2,3,4"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one x,z pair")
}

func TestPrintResultGeoJSON(t *testing.T) {
	res := navigation.Result{
		Status: navigation.StatusSuccess,
		Path:   &navigation.Path{Points: []waypoint.Vec3{{X: 0.5, Z: 0.5}, {X: 1.5, Z: 0.5}, {X: 1.5, Z: 1.5}}},
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, res, "geojson"))

	f, err := geojson.UnmarshalFeature(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{0.5, 0.5}, {1.5, 0.5}, {1.5, 1.5}}, f.Geometry)
	assert.Equal(t, "success", f.Properties["status"])

	buf.Reset()
	failed := navigation.Result{Status: navigation.StatusFailed, Reason: navigation.ReasonNoPathFound}
	require.NoError(t, printResult(&buf, failed, "geojson"))
	f, err = geojson.UnmarshalFeature(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "no_path_found", f.Properties["reason"])

	assert.Error(t, printResult(&buf, res, "xml"))
}
