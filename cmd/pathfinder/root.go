package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathfinder",
	Short: "Grid and waypoint path planning for moving agents",
	Long: `Pathfinder plans agent paths with A* over an occupancy grid rebuilt from
dynamic obstacles, or over a sparse waypoint graph sampled from the terrain.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format override (text, json)")
	rootCmd.PersistentFlags().String("obstacles", "", "GeoJSON obstacle file or directory (overrides obstacles.file)")
}
