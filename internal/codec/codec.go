// Package codec serializes the analysis artifacts: the topology graph
// for visualization and the structured run summary.
package codec

import (
	"io"

	"netspawn/internal/graph"
)

// Exporter writes a topology graph to a stream in one format.
type Exporter interface {
	Export(g *graph.Graph, w io.Writer) error
	Format() string
}

// ForFormat returns the graph exporter for a format name, or false when
// the format is not supported.
func ForFormat(format string) (Exporter, bool) {
	switch format {
	case "json":
		return NewJSONExporter(), true
	case "yaml":
		return NewYAMLExporter(), true
	default:
		return nil, false
	}
}
