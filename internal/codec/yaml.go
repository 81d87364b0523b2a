package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"netspawn/internal/graph"
)

// YAMLExporter writes the topology graph as YAML.
type YAMLExporter struct{}

// NewYAMLExporter creates a YAML graph exporter.
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Format returns the exporter format identifier.
func (e *YAMLExporter) Format() string {
	return "yaml"
}

// Export writes the graph to w.
func (e *YAMLExporter) Export(g *graph.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}
