package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"netspawn/internal/model"
)

// JSONLParser ingests flow-record exports with one JSON object per line,
// the shape NetFlow/IPFIX collectors commonly dump.
type JSONLParser struct{}

// NewJSONLParser creates a JSON-lines flow-record parser.
func NewJSONLParser() *JSONLParser {
	return &JSONLParser{}
}

// Name returns the format identifier.
func (p *JSONLParser) Name() string {
	return "jsonl-flow"
}

// Detect accepts .jsonl/.ndjson paths, or .json whose content starts
// with an object on the first line.
func (p *JSONLParser) Detect(path string, sample []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return true
	case ".json":
		return strings.HasPrefix(strings.TrimSpace(firstLine(sample)), "{")
	default:
		return false
	}
}

// jsonlRecord mirrors the canonical record contract with the field
// aliases seen in collector dumps.
type jsonlRecord struct {
	SrcAddr  string `json:"src_addr"`
	SrcIP    string `json:"src_ip"`
	DstAddr  string `json:"dst_addr"`
	DstIP    string `json:"dst_ip"`
	Protocol string `json:"protocol"`
	Proto    string `json:"proto"`
	SrcPort  *int   `json:"src_port"`
	DstPort  *int   `json:"dst_port"`
}

// Parse reads one flow record per line. Blank lines are skipped; any
// malformed line fails the whole source.
func (p *JSONLParser) Parse(r io.Reader, m *model.Model) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var raw jsonlRecord
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := raw.canonical()
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		m.Observe(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return nil
}

func (j jsonlRecord) canonical() (model.Record, error) {
	src := j.SrcAddr
	if src == "" {
		src = j.SrcIP
	}
	dst := j.DstAddr
	if dst == "" {
		dst = j.DstIP
	}
	if src == "" || dst == "" {
		return model.Record{}, fmt.Errorf("missing src or dst address")
	}

	proto := j.Protocol
	if proto == "" {
		proto = j.Proto
	}

	rec := model.NewRecord(src, dst, model.ParseProtocol(proto))
	if j.SrcPort != nil {
		if *j.SrcPort < 0 || *j.SrcPort > 65535 {
			return model.Record{}, fmt.Errorf("src_port %d out of range", *j.SrcPort)
		}
		rec.SrcPort = *j.SrcPort
	}
	if j.DstPort != nil {
		if *j.DstPort < 0 || *j.DstPort > 65535 {
			return model.Record{}, fmt.Errorf("dst_port %d out of range", *j.DstPort)
		}
		rec.DstPort = *j.DstPort
	}
	return rec, nil
}
