package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"agent-pathfinder/internal/navigation"
	"agent-pathfinder/internal/waypoint"
)

// gridCmd plans one path on the occupancy grid
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Plan a path on the occupancy grid",
	Long: `Rebuilds the occupancy grid from the configured obstacles plus any --obstacle
positions, runs one planner step and prints the result as JSON, or as a
GeoJSON path feature with --format geojson.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetFloat64Slice("from")
		to, _ := cmd.Flags().GetFloat64Slice("to")
		extra, _ := cmd.Flags().GetFloat64Slice("obstacle")
		format, _ := cmd.Flags().GetString("format")

		if len(from) != 2 || len(to) != 2 {
			return fmt.Errorf("--from and --to each take one x,z pair")
		}
		points, err := parsePoints(extra)
		if err != nil {
			return fmt.Errorf("--obstacle: %w", err)
		}

		w, err := loadWorld(cmd)
		if err != nil {
			return err
		}
		res := planGrid(w, orb.Point{from[0], from[1]}, orb.Point{to[0], to[1]}, points)
		return printResult(cmd.OutOrStdout(), res, format)
	},
}

func planGrid(w *world, from, to orb.Point, extra []orb.Point) navigation.Result {
	const id navigation.RequesterID = 1

	w.planner.RequestGridPathWorld(id, from, to)
	stats := w.planner.Step(w.withExtra(extra))
	res := w.planner.Poll(id)

	w.logger.Info("grid plan finished",
		"status", res.Status.String(),
		"reason", res.Reason.String(),
		"blocked", stats.Blocked,
		"expanded", res.ExpandedNodes)
	return res
}

// printResult writes res as a JSON object, or as a GeoJSON LineString
// feature when format is "geojson".
func printResult(dst io.Writer, res navigation.Result, format string) error {
	switch format {
	case "", "json":
	case "geojson":
		return printFeature(dst, res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	out := map[string]any{
		"status":   res.Status,
		"goal":     res.Goal,
		"expanded": res.ExpandedNodes,
	}
	if res.Status == navigation.StatusFailed {
		out["reason"] = res.Reason
	}
	if res.Err != nil {
		out["message"] = res.Err.Error()
	}
	if res.Path != nil {
		out["path"] = res.Path.Points
		if res.Path.Cells != nil {
			out["cells"] = res.Path.Cells
		}
		if res.Path.Waypoints != nil {
			out["waypoints"] = res.Path.Waypoints
		}
	}

	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printFeature(dst io.Writer, res navigation.Result) error {
	var points []waypoint.Vec3
	if res.Path != nil {
		points = res.Path.Points
	}
	f := waypoint.PathFeature(points)
	f.Properties["status"] = res.Status.String()
	if res.Status == navigation.StatusFailed {
		f.Properties["reason"] = res.Reason.String()
	}

	data, err := f.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	_, err = fmt.Fprintln(dst, string(data))
	return err
}

func init() {
	rootCmd.AddCommand(gridCmd)
	gridCmd.Flags().Float64Slice("from", nil, "Start position as x,z")
	gridCmd.Flags().Float64Slice("to", nil, "Goal position as x,z")
	gridCmd.Flags().Float64Slice("obstacle", nil, "Extra obstacle positions as x,z pairs (repeatable)")
	gridCmd.Flags().String("format", "json", "Output format: json or geojson")
	gridCmd.MarkFlagRequired("from")
	gridCmd.MarkFlagRequired("to")
}
