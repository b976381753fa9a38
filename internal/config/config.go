package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/viper"

	"agent-pathfinder/internal/grid"
	"agent-pathfinder/internal/waypoint"
)

// EnvPrefix prefixes environment overrides, e.g. PATHFINDER_GRID_WIDTH.
const EnvPrefix = "PATHFINDER"

// MaxIterationFactor bounds the search iteration factors.
const MaxIterationFactor = 1024

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full pathfinder configuration.
type Config struct {
	LogLevel  string         `json:"logLevel" mapstructure:"logLevel"`
	LogFormat string         `json:"logFormat" mapstructure:"logFormat"`
	Grid      GridConfig     `json:"grid" mapstructure:"grid"`
	Obstacles ObstacleConfig `json:"obstacles" mapstructure:"obstacles"`
	Search    SearchConfig   `json:"search" mapstructure:"search"`
	Waypoints WaypointConfig `json:"waypoints" mapstructure:"waypoints"`
	Server    ServerConfig   `json:"server" mapstructure:"server"`
}

// GridConfig places the occupancy grid in world space.
type GridConfig struct {
	Width        int     `json:"width" mapstructure:"width"`
	Height       int     `json:"height" mapstructure:"height"`
	CellSize     float64 `json:"cellSize" mapstructure:"cellSize"`
	OriginX      float64 `json:"originX" mapstructure:"originX"`
	OriginZ      float64 `json:"originZ" mapstructure:"originZ"`
	Connectivity int     `json:"connectivity" mapstructure:"connectivity"`
}

// ObstacleConfig holds obstacle rasterisation settings
type ObstacleConfig struct {
	Margin int    `json:"margin" mapstructure:"margin"`
	File   string `json:"file" mapstructure:"file"`
}

// SearchConfig holds the engine iteration caps
type SearchConfig struct {
	GridIterationFactor  int     `json:"gridIterationFactor" mapstructure:"gridIterationFactor"`
	GraphIterationFactor int     `json:"graphIterationFactor" mapstructure:"graphIterationFactor"`
	MaxSnapDistance      float64 `json:"maxSnapDistance" mapstructure:"maxSnapDistance"`
}

// WaypointConfig describes the waypoint sampling layout.
type WaypointConfig struct {
	Width        int     `json:"width" mapstructure:"width"`
	Depth        int     `json:"depth" mapstructure:"depth"`
	Spacing      float64 `json:"spacing" mapstructure:"spacing"`
	OriginX      float64 `json:"originX" mapstructure:"originX"`
	OriginZ      float64 `json:"originZ" mapstructure:"originZ"`
	GroundOffset float64 `json:"groundOffset" mapstructure:"groundOffset"`
	File         string  `json:"file" mapstructure:"file"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "text")

	v.SetDefault("grid.width", 30)
	v.SetDefault("grid.height", 30)
	v.SetDefault("grid.cellSize", 1.0)
	v.SetDefault("grid.originX", 0.0)
	v.SetDefault("grid.originZ", 0.0)
	v.SetDefault("grid.connectivity", 4)

	v.SetDefault("obstacles.margin", 1)
	v.SetDefault("obstacles.file", "")

	v.SetDefault("search.gridIterationFactor", 4)
	v.SetDefault("search.graphIterationFactor", 1)
	v.SetDefault("search.maxSnapDistance", 0.0)

	v.SetDefault("waypoints.width", 30)
	v.SetDefault("waypoints.depth", 30)
	v.SetDefault("waypoints.spacing", 1.0)
	v.SetDefault("waypoints.originX", 0.0)
	v.SetDefault("waypoints.originZ", 0.0)
	v.SetDefault("waypoints.groundOffset", 0.5)
	v.SetDefault("waypoints.file", "")

	v.SetDefault("server.addr", ":8080")
}

// Load reads configuration defaults, then the optional file at path (JSON or
// YAML by extension), then PATHFINDER_* environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects sizes and factors that cannot produce a usable planner.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", c.Grid.Width, c.Grid.Height))
	}
	if c.Grid.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("grid cell size %v must be positive", c.Grid.CellSize))
	}
	if c.Grid.Connectivity != 4 && c.Grid.Connectivity != 8 {
		errs = append(errs, fmt.Errorf("grid connectivity %d must be 4 or 8", c.Grid.Connectivity))
	}
	if c.Obstacles.Margin < 0 || c.Obstacles.Margin > max(c.Grid.Width, c.Grid.Height) {
		errs = append(errs, fmt.Errorf("obstacle margin %d must be between 0 and the larger grid side", c.Obstacles.Margin))
	}
	for _, factor := range []int{c.Search.GridIterationFactor, c.Search.GraphIterationFactor} {
		if factor <= 0 || factor > MaxIterationFactor {
			errs = append(errs, fmt.Errorf("search iteration factor %d must be in 1..%d", factor, MaxIterationFactor))
		}
	}
	if c.Search.MaxSnapDistance < 0 {
		errs = append(errs, errors.New("search max snap distance must not be negative"))
	}
	if c.Waypoints.Width <= 0 || c.Waypoints.Depth <= 0 || c.Waypoints.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("waypoint layout %dx%d spacing %v must be positive",
			c.Waypoints.Width, c.Waypoints.Depth, c.Waypoints.Spacing))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Frame returns the world frame of the occupancy grid.
func (c Config) Frame() grid.Frame {
	return grid.Frame{Origin: orb.Point{c.Grid.OriginX, c.Grid.OriginZ}, CellSize: c.Grid.CellSize}
}

// Layout returns the waypoint sampling layout.
func (c Config) Layout() waypoint.Layout {
	return waypoint.Layout{
		Origin:       waypoint.Vec3{X: c.Waypoints.OriginX, Z: c.Waypoints.OriginZ},
		Width:        c.Waypoints.Width,
		Depth:        c.Waypoints.Depth,
		Spacing:      c.Waypoints.Spacing,
		GroundOffset: c.Waypoints.GroundOffset,
	}
}
