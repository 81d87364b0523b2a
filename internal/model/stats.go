package model

import (
	"fmt"
	"strings"
)

// HostStats carries the aggregate figures the role classifier and the
// graph builder read for one host. Distinct counts are numbers of
// distinct peer pairs; weights are total occurrence counts.
type HostStats struct {
	Addr        string
	DistinctIn  int
	DistinctOut int
	WeightIn    int
	WeightOut   int
	// IncomingPorts and OutgoingPorts are deduplicated and sorted.
	IncomingPorts []PortObservation
	OutgoingPorts []PortObservation
}

// Stats computes aggregate statistics for addr. Unknown addresses yield
// zero-valued stats.
func (m *Model) Stats(addr string) HostStats {
	s := HostStats{Addr: addr}
	for _, conn := range m.conns {
		if conn.Dst == addr {
			s.DistinctIn++
			s.WeightIn += conn.Count
		}
		if conn.Src == addr {
			s.DistinctOut++
			s.WeightOut += conn.Count
		}
	}
	if h, ok := m.hosts[addr]; ok {
		s.IncomingPorts = h.PortsByDirection(DirectionIncoming)
		s.OutgoingPorts = h.PortsByDirection(DirectionOutgoing)
	}
	return s
}

// ProtocolDistribution returns, per protocol, the total number of
// observed connection occurrences using it.
func (m *Model) ProtocolDistribution() map[Protocol]int {
	dist := make(map[Protocol]int)
	for _, conn := range m.conns {
		for proto := range conn.Protocols {
			dist[proto] += conn.Count
		}
	}
	return dist
}

// Fingerprint returns a stable textual digest of the model's hosts, port
// observation sets, connection counts, and protocol sets. Two models
// built from the same records in any order produce identical
// fingerprints.
func (m *Model) Fingerprint() string {
	var b strings.Builder
	for _, addr := range m.SortedAddrs() {
		fmt.Fprintf(&b, "host %s\n", addr)
		h := m.hosts[addr]
		for _, obs := range h.PortsByDirection(DirectionIncoming) {
			fmt.Fprintf(&b, "  in %s/%d\n", obs.Proto, obs.Port)
		}
		for _, obs := range h.PortsByDirection(DirectionOutgoing) {
			fmt.Fprintf(&b, "  out %s/%d\n", obs.Proto, obs.Port)
		}
	}
	for _, conn := range m.Connections() {
		fmt.Fprintf(&b, "conn %s->%s x%d", conn.Src, conn.Dst, conn.Count)
		for _, proto := range conn.ProtocolList() {
			fmt.Fprintf(&b, " %s", proto)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
