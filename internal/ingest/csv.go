package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"netspawn/internal/model"
)

// CSVParser ingests tabular flow exports. The first row is a header; the
// parser maps columns by name, accepting the aliases different export
// tools use.
type CSVParser struct{}

// NewCSVParser creates a CSV flow-export parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Name returns the format identifier.
func (p *CSVParser) Name() string {
	return "csv-flow"
}

// Detect accepts .csv paths whose first line looks like a flow header.
func (p *CSVParser) Detect(path string, sample []byte) bool {
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return false
	}
	header := strings.ToLower(firstLine(sample))
	return strings.Contains(header, "src") && strings.Contains(header, "dst")
}

// Column aliases accepted per canonical field.
var csvColumns = map[string][]string{
	"src":      {"src", "src_addr", "src_ip", "source", "saddr", "ip.src"},
	"dst":      {"dst", "dst_addr", "dst_ip", "destination", "daddr", "ip.dst"},
	"proto":    {"proto", "protocol", "ip_proto", "transport"},
	"src_port": {"src_port", "sport", "source_port", "tcp.srcport"},
	"dst_port": {"dst_port", "dport", "dest_port", "destination_port", "tcp.dstport"},
}

// Parse reads the whole export. Any malformed row fails the source; the
// staged model the caller passed in is discarded on error, so a bad file
// cannot half-populate a run.
func (p *CSVParser) Parse(r io.Reader, m *model.Model) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index, err := mapColumns(header)
	if err != nil {
		return err
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		if blankRow(row) {
			continue
		}

		rec, err := recordFromRow(row, index)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		m.Observe(rec)
	}
}

func mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for field, aliases := range csvColumns {
			for _, alias := range aliases {
				if name == alias {
					index[field] = i
				}
			}
		}
	}
	for _, required := range []string{"src", "dst", "proto"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return index, nil
}

func recordFromRow(row []string, index map[string]int) (model.Record, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	src := field("src")
	dst := field("dst")
	if src == "" || dst == "" {
		return model.Record{}, fmt.Errorf("empty src or dst address")
	}

	rec := model.NewRecord(src, dst, model.ParseProtocol(field("proto")))
	if v := field("src_port"); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return model.Record{}, fmt.Errorf("src_port: %w", err)
		}
		rec.SrcPort = port
	}
	if v := field("dst_port"); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return model.Record{}, fmt.Errorf("dst_port: %w", err)
		}
		rec.DstPort = port
	}
	return rec, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func firstLine(sample []byte) string {
	if i := strings.IndexByte(string(sample), '\n'); i >= 0 {
		return string(sample[:i])
	}
	return string(sample)
}
