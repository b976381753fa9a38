package waypoint

import (
	"encoding/json"
	"fmt"
	"os"
)

// graphFile is the on-disk form of a graph.
type graphFile struct {
	Waypoints []Waypoint `json:"waypoints"`
}

// Save writes the graph to filename as indented JSON.
func Save(g *Graph, filename string) error {
	data, err := json.MarshalIndent(graphFile{Waypoints: g.waypoints}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a graph written by Save. Links are validated as in NewGraph.
func Load(filename string) (*Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file graphFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return NewGraph(file.Waypoints)
}
