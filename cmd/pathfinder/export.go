package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"agent-pathfinder/internal/waypoint"
)

// exportCmd writes the waypoint graph
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the waypoint graph as GeoJSON",
	Long: `Builds the waypoint graph and writes waypoints and links as a GeoJSON
FeatureCollection, or saves the graph as JSON for waypoints.file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")

		w, err := loadWorld(cmd)
		if err != nil {
			return err
		}

		if format == "json" {
			if out == "" {
				return fmt.Errorf("--format json needs --out")
			}
			if err := waypoint.Save(w.graph, out); err != nil {
				return err
			}
			w.logger.Info("waypoint graph saved", "waypoints", w.graph.Len(), "out", out)
			return nil
		}

		data, err := w.graph.FeatureCollection().MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode graph: %w", err)
		}

		var dst io.Writer = os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			dst = f
		}
		if _, err := dst.Write(data); err != nil {
			return err
		}

		w.logger.Info("waypoint graph exported",
			"waypoints", w.graph.Len(),
			"links", len(w.graph.LineStrings()),
			"out", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().String("format", "geojson", "Output format (geojson, json)")
}
