// Package ingest turns captured-traffic exports into canonical records
// and feeds them to a model. Every format is an implementation of one
// narrow Parser capability; the registry picks the parser by format
// detection, never by type switches inside the pipeline.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"netspawn/internal/model"
)

// ErrUnknownFormat is returned when no registered parser recognizes a
// source.
var ErrUnknownFormat = errors.New("unknown source format")

// Parser is the uniform ingestion capability. Parse reads one source and
// populates m with canonical records. A Parse error means the source
// contributed nothing: callers stage into a fresh model and merge only
// on success.
type Parser interface {
	// Name returns the format identifier.
	Name() string
	// Detect reports whether this parser handles the given source, based
	// on its path and a content sample.
	Detect(path string, sample []byte) bool
	// Parse consumes the source and populates the model.
	Parse(r io.Reader, m *model.Model) error
}

// SourceError wraps a parse failure with the source it came from, so a
// failed run reports which input broke and why.
type SourceError struct {
	Source string
	Format string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("source %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source %s (%s): %v", e.Source, e.Format, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IngestFile detects the source format, parses it into a staging model,
// and merges the staged contributions into m only on full success. A
// failing source never leaves partial data in m.
func IngestFile(reg *Registry, path string, m *model.Model) (string, error) {
	parser, err := reg.Detect(path)
	if err != nil {
		return "", &SourceError{Source: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return parser.Name(), &SourceError{Source: path, Format: parser.Name(), Err: err}
	}
	defer f.Close()

	staged := model.New()
	if err := parser.Parse(f, staged); err != nil {
		return parser.Name(), &SourceError{Source: path, Format: parser.Name(), Err: err}
	}

	m.Merge(staged)
	return parser.Name(), nil
}
