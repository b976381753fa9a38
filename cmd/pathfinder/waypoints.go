package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agent-pathfinder/internal/navigation"
	"agent-pathfinder/internal/waypoint"
)

var waypointsCmd = &cobra.Command{
	Use:   "waypoints",
	Short: "Plan a path on the waypoint graph",
	Long: `Samples the waypoint graph from the configured layout, snaps both positions
to their nearest waypoints and prints the A* result as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetFloat64Slice("from")
		to, _ := cmd.Flags().GetFloat64Slice("to")
		format, _ := cmd.Flags().GetString("format")
		if len(from) != 3 || len(to) != 3 {
			return fmt.Errorf("--from and --to each take one x,y,z triple")
		}

		w, err := loadWorld(cmd)
		if err != nil {
			return err
		}

		const id navigation.RequesterID = 1
		start := waypoint.Vec3{X: from[0], Y: from[1], Z: from[2]}
		goal := waypoint.Vec3{X: to[0], Y: to[1], Z: to[2]}
		if _, err := w.planner.RequestWaypointPath(id, start, goal); err != nil {
			return err
		}
		w.planner.Step(w.obstacles)
		res := w.planner.Poll(id)

		w.logger.Info("waypoint plan finished",
			"status", res.Status.String(),
			"waypoints", w.graph.Len(),
			"expanded", res.ExpandedNodes)
		return printResult(cmd.OutOrStdout(), res, format)
	},
}

func init() {
	rootCmd.AddCommand(waypointsCmd)
	waypointsCmd.Flags().Float64Slice("from", nil, "Start position as x,y,z")
	waypointsCmd.Flags().Float64Slice("to", nil, "Goal position as x,y,z")
	waypointsCmd.Flags().String("format", "json", "Output format: json or geojson")
	waypointsCmd.MarkFlagRequired("from")
	waypointsCmd.MarkFlagRequired("to")
}
