package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"agent-pathfinder/internal/astar"
	"agent-pathfinder/internal/config"
	"agent-pathfinder/internal/grid"
	"agent-pathfinder/internal/logging"
	"agent-pathfinder/internal/navigation"
	"agent-pathfinder/internal/obstacle"
	"agent-pathfinder/internal/waypoint"
)

// world is everything a command needs, built from configuration.
type world struct {
	cfg       config.Config
	logger    *slog.Logger
	static    obstacle.Set
	obstacles []grid.Cell
	graph     *waypoint.Graph
	registry  *prometheus.Registry
	planner   *navigation.Planner
}

func loadWorld(cmd *cobra.Command) (*world, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.LogFormat = format
	}
	if file, _ := cmd.Flags().GetString("obstacles"); file != "" {
		cfg.Obstacles.File = file
	}

	w := &world{
		cfg:      cfg,
		logger:   logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat),
		registry: prometheus.NewRegistry(),
	}
	w.registry.MustRegister(collectors.NewGoCollector())

	if cfg.Obstacles.File != "" {
		w.static, err = obstacle.Load(cfg.Obstacles.File, w.logger)
		if err != nil {
			return nil, fmt.Errorf("load obstacles: %w", err)
		}
	}
	w.obstacles = w.static.Cells(cfg.Frame(), cfg.Grid.Width, cfg.Grid.Height)

	occ, err := grid.New(cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return nil, err
	}

	w.graph, err = w.loadGraph(occ)
	if err != nil {
		return nil, err
	}

	w.planner = navigation.NewPlanner(occ, w.graph, navigation.Options{
		Frame:                cfg.Frame(),
		Margin:               cfg.Obstacles.Margin,
		GridIterationFactor:  cfg.Search.GridIterationFactor,
		GraphIterationFactor: cfg.Search.GraphIterationFactor,
		Connectivity:         astar.Connectivity(cfg.Grid.Connectivity),
		MaxSnapDistance:      cfg.Search.MaxSnapDistance,
		Logger:               w.logger,
		Metrics:              navigation.NewMetrics(w.registry),
	})
	return w, nil
}

// loadGraph reads the saved waypoint graph when waypoints.file exists and
// samples a new one otherwise.
func (w *world) loadGraph(occ *grid.Occupancy) (*waypoint.Graph, error) {
	if file := w.cfg.Waypoints.File; file != "" {
		if _, err := os.Stat(file); err == nil {
			g, err := waypoint.Load(file)
			if err != nil {
				return nil, fmt.Errorf("load waypoint graph: %w", err)
			}
			w.logger.Info("waypoint graph loaded", "file", file, "waypoints", g.Len())
			return g, nil
		}
		w.logger.Info("no saved waypoint graph, sampling a new one", "file", file)
	}

	// Static obstacles also remove terrain columns from the waypoint graph.
	terrain := occ.Clone().Rebuild(w.obstacles, w.cfg.Obstacles.Margin)
	g, err := waypoint.Build(w.cfg.Layout(), flatGround(w.cfg.Frame(), terrain), w.logger)
	if err != nil {
		return nil, fmt.Errorf("build waypoint graph: %w", err)
	}
	return g, nil
}

// flatGround is a ground test over a level plane at height 0. Columns that
// fall on a blocked cell have no ground.
func flatGround(frame grid.Frame, terrain *grid.Occupancy) waypoint.GroundTestFunc {
	return func(x, z float64) (waypoint.Vec3, bool) {
		c := frame.ToCell(orb.Point{x, z})
		if terrain.InBounds(c.X, c.Y) && !terrain.Walkable(c) {
			return waypoint.Vec3{}, false
		}
		return waypoint.Vec3{X: x, Z: z}, true
	}
}

// withExtra appends extra obstacle positions to the static obstacle cells.
func (w *world) withExtra(points []orb.Point) []grid.Cell {
	if len(points) == 0 {
		return w.obstacles
	}
	set := obstacle.Set{Points: append(append([]orb.Point(nil), w.static.Points...), points...), Polygons: w.static.Polygons}
	return set.Cells(w.cfg.Frame(), w.cfg.Grid.Width, w.cfg.Grid.Height)
}

// parsePoints converts flat "x,z" pairs into points.
func parsePoints(values []float64) ([]orb.Point, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("expected x,z pairs, got %d values", len(values))
	}
	points := make([]orb.Point, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		points = append(points, orb.Point{values[i], values[i+1]})
	}
	return points, nil
}
