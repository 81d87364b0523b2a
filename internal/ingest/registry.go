package ingest

import (
	"fmt"
	"io"
	"os"
)

// sniffLen bounds how much of a source the registry reads for content
// detection.
const sniffLen = 4096

// Registry holds the registered parsers in registration order. Detection
// tries them in that order, so more specific formats register first.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry with the built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewJSONLParser())
	r.Register(NewCSVParser())
	return r
}

// Register appends a parser.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// Parsers returns the registered parsers.
func (r *Registry) Parsers() []Parser {
	return r.parsers
}

// Lookup returns the parser with the given format name.
func (r *Registry) Lookup(name string) (Parser, error) {
	for _, p := range r.parsers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no parser named %q", ErrUnknownFormat, name)
}

// Detect picks the parser for a source by extension and content sniff.
func (r *Registry) Detect(path string) (Parser, error) {
	sample, err := readSample(path)
	if err != nil {
		return nil, err
	}
	for _, p := range r.parsers {
		if p.Detect(path, sample) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func readSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sample := make([]byte, sniffLen)
	n, err := f.Read(sample)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return sample[:n], nil
}
