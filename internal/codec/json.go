package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"netspawn/internal/graph"
)

// JSONExporter writes the topology graph as indented JSON, the shape the
// visualization front end consumes.
type JSONExporter struct{}

// NewJSONExporter creates a JSON graph exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns the exporter format identifier.
func (e *JSONExporter) Format() string {
	return "json"
}

// Export writes the graph to w.
func (e *JSONExporter) Export(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}
