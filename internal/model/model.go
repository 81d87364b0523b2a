// Package model holds the order-independent traffic aggregate every
// ingestion adapter feeds: the host inventory, per-pair connection
// statistics, and per-host port observations. Subnet and role inference
// run over a finalized model; the model itself never interprets traffic.
package model

import "sort"

type pairKey struct {
	src string
	dst string
}

// Model accumulates canonical records into hosts and connections. It is
// not safe for concurrent mutation; the intended usage is sequential,
// single-writer accumulation, with one instance per analysis run.
type Model struct {
	hosts map[string]*Host
	order []string // host addresses in first-seen order
	conns map[pairKey]*Connection
}

// New creates an empty model.
func New() *Model {
	return &Model{
		hosts: make(map[string]*Host),
		conns: make(map[pairKey]*Connection),
	}
}

// RegisterHost ensures a host exists for addr. Idempotent.
func (m *Model) RegisterHost(addr string) *Host {
	if h, ok := m.hosts[addr]; ok {
		return h
	}
	h := &Host{Addr: addr}
	m.hosts[addr] = h
	m.order = append(m.order, addr)
	return h
}

// RecordConnection creates the (src, dst) pair on first observation,
// otherwise increments its count, and adds proto to the pair's protocol
// set. Both endpoints are registered as hosts.
func (m *Model) RecordConnection(src, dst string, proto Protocol) {
	m.RegisterHost(src)
	m.RegisterHost(dst)

	key := pairKey{src: src, dst: dst}
	conn, ok := m.conns[key]
	if !ok {
		conn = newConnection(src, dst)
		m.conns[key] = conn
	}
	conn.observe(proto)
}

// RecordPort appends a port observation to addr's host, registering the
// host if needed. Prior observations are never dropped or reordered.
func (m *Model) RecordPort(addr string, port int, proto Protocol, dir Direction) {
	m.RegisterHost(addr).addPort(PortObservation{Port: port, Proto: proto, Direction: dir})
}

// Observe applies one canonical record: both endpoints are registered,
// the pair is counted, and the destination port (when present) is
// attributed to the destination as an incoming service port and to the
// source as the service port of an egress connection. Source ports are
// deliberately not attributed to any host; they are ephemeral and would
// only add noise to service-port inference.
func (m *Model) Observe(rec Record) {
	m.RecordConnection(rec.SrcAddr, rec.DstAddr, rec.Proto)
	if rec.HasDstPort() {
		m.RecordPort(rec.DstAddr, rec.DstPort, rec.Proto, DirectionIncoming)
		m.RecordPort(rec.SrcAddr, rec.DstPort, rec.Proto, DirectionOutgoing)
	}
}

// Merge folds other into m. Merging is commutative and associative over
// counts, protocol sets, and port observation sets, so the same group of
// staged sources produces identical aggregates in any merge order.
func (m *Model) Merge(other *Model) {
	for _, addr := range other.order {
		dst := m.RegisterHost(addr)
		dst.Ports = append(dst.Ports, other.hosts[addr].Ports...)
	}
	for key, conn := range other.conns {
		target, ok := m.conns[key]
		if !ok {
			target = newConnection(key.src, key.dst)
			m.conns[key] = target
		}
		target.Count += conn.Count
		for proto := range conn.Protocols {
			target.Protocols[proto] = struct{}{}
		}
	}
}

// Host returns the host for addr, or nil when unknown.
func (m *Model) Host(addr string) *Host {
	return m.hosts[addr]
}

// HostCount returns the number of registered hosts.
func (m *Model) HostCount() int {
	return len(m.hosts)
}

// Addrs returns host addresses in first-seen order. The subnet inferencer
// consumes this order so address-block allocation follows discovery.
func (m *Model) Addrs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// SortedAddrs returns host addresses in lexical order, for deterministic
// artifact emission.
func (m *Model) SortedAddrs() []string {
	out := m.Addrs()
	sort.Strings(out)
	return out
}

// Connections returns every connection sorted by (src, dst).
func (m *Model) Connections() []*Connection {
	out := make([]*Connection, 0, len(m.conns))
	for _, conn := range m.conns {
		out = append(out, conn)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}

// Connection returns the aggregate for the ordered (src, dst) pair, or
// nil when the pair was never observed.
func (m *Model) Connection(src, dst string) *Connection {
	return m.conns[pairKey{src: src, dst: dst}]
}
