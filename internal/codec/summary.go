package codec

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"netspawn/internal/model"
	"netspawn/internal/subnet"
)

// Summary is the structured document describing one analysis run:
// hosts with their inferred attributes, pairwise connections, the
// protocol distribution, and the subnet partition.
type Summary struct {
	HostCount       int             `yaml:"host_count"`
	ConnectionCount int             `yaml:"connection_count"`
	Roles           map[string]int  `yaml:"roles"`
	Protocols       map[string]int  `yaml:"protocols"`
	Hosts           []HostSummary   `yaml:"hosts"`
	Connections     []ConnSummary   `yaml:"connections"`
	Subnets         []SubnetSummary `yaml:"subnets"`
	SkippedAddrs    []string        `yaml:"skipped_addresses,omitempty"`
}

// HostSummary describes one host.
type HostSummary struct {
	Addr         string   `yaml:"addr"`
	Role         string   `yaml:"role"`
	Subnet       string   `yaml:"subnet,omitempty"`
	DistinctIn   int      `yaml:"distinct_in"`
	DistinctOut  int      `yaml:"distinct_out"`
	ServicePorts []string `yaml:"service_ports,omitempty"`
}

// ConnSummary describes one observed pair.
type ConnSummary struct {
	Src       string   `yaml:"src"`
	Dst       string   `yaml:"dst"`
	Count     int      `yaml:"count"`
	Protocols []string `yaml:"protocols"`
}

// SubnetSummary describes one inferred subnet.
type SubnetSummary struct {
	Prefix string   `yaml:"prefix"`
	Hosts  []string `yaml:"hosts"`
}

// BuildSummary assembles the summary document from a finalized model and
// its subnet plan. Output ordering is deterministic.
func BuildSummary(m *model.Model, plan *subnet.Plan) *Summary {
	s := &Summary{
		HostCount: m.HostCount(),
		Roles:     make(map[string]int),
		Protocols: make(map[string]int),
	}

	for proto, count := range m.ProtocolDistribution() {
		s.Protocols[string(proto)] = count
	}

	for _, addr := range m.SortedAddrs() {
		h := m.Host(addr)
		stats := m.Stats(addr)
		s.Roles[string(h.Role)]++

		var ports []string
		for _, obs := range stats.IncomingPorts {
			ports = append(ports, fmt.Sprintf("%s/%d", obs.Proto, obs.Port))
		}
		s.Hosts = append(s.Hosts, HostSummary{
			Addr:         addr,
			Role:         string(h.Role),
			Subnet:       h.Subnet,
			DistinctIn:   stats.DistinctIn,
			DistinctOut:  stats.DistinctOut,
			ServicePorts: ports,
		})
	}

	for _, conn := range m.Connections() {
		var protos []string
		for _, p := range conn.ProtocolList() {
			protos = append(protos, string(p))
		}
		s.Connections = append(s.Connections, ConnSummary{
			Src:       conn.Src,
			Dst:       conn.Dst,
			Count:     conn.Count,
			Protocols: protos,
		})
	}
	s.ConnectionCount = len(s.Connections)

	if plan != nil {
		for _, prefix := range plan.Order {
			s.Subnets = append(s.Subnets, SubnetSummary{
				Prefix: prefix,
				Hosts:  plan.Members(prefix),
			})
		}
		s.SkippedAddrs = append([]string(nil), plan.Skipped...)
		sort.Strings(s.SkippedAddrs)
	}

	return s
}

// WriteSummary serializes the summary as YAML.
func WriteSummary(s *Summary, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
