// Package graph projects a finalized model into a directed, weighted
// topology graph annotated with role, subnet, and service-port
// attributes. The graph is a pure derived view; it is built once and
// never mutated independently of the model.
package graph

import (
	"netspawn/internal/model"
)

// Style is the visual treatment a node receives in the graph artifact.
// It never influences inference or generation.
type Style struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Shape string `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// PortRef identifies one service port on a node or edge.
type PortRef struct {
	Port  int            `json:"port" yaml:"port"`
	Proto model.Protocol `json:"protocol" yaml:"protocol"`
}

// Node carries one host with its inferred attributes.
type Node struct {
	ID           string     `json:"id" yaml:"id"`
	Role         model.Role `json:"role" yaml:"role"`
	Subnet       string     `json:"subnet,omitempty" yaml:"subnet,omitempty"`
	ServicePorts []PortRef  `json:"service_ports,omitempty" yaml:"service_ports,omitempty"`
	Style        Style      `json:"style,omitempty" yaml:"style,omitempty"`
}

// Edge carries one directed connection. Weight is the pair's occurrence
// count. ServicePorts holds destination-side ports only, so downstream
// firewall inference never sees ephemeral client source ports.
type Edge struct {
	From         string           `json:"from" yaml:"from"`
	To           string           `json:"to" yaml:"to"`
	Weight       int              `json:"weight" yaml:"weight"`
	Protocols    []model.Protocol `json:"protocols" yaml:"protocols"`
	ServicePorts []PortRef        `json:"service_ports,omitempty" yaml:"service_ports,omitempty"`
}

// Graph is the serializable topology projection.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Build constructs the graph from a finalized model: one node per host,
// one edge per connection, all in deterministic sorted order. styles maps
// role labels to visual styles and may be nil.
func Build(m *model.Model, styles map[model.Role]Style) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, m.HostCount()),
	}

	for _, addr := range m.SortedAddrs() {
		h := m.Host(addr)
		g.Nodes = append(g.Nodes, Node{
			ID:           addr,
			Role:         h.Role,
			Subnet:       h.Subnet,
			ServicePorts: portRefs(h.PortsByDirection(model.DirectionIncoming)),
			Style:        styles[h.Role],
		})
	}

	for _, conn := range m.Connections() {
		dst := m.Host(conn.Dst)
		g.Edges = append(g.Edges, Edge{
			From:         conn.Src,
			To:           conn.Dst,
			Weight:       conn.Count,
			Protocols:    conn.ProtocolList(),
			ServicePorts: edgePorts(dst, conn),
		})
	}

	return g
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// OutWeight sums the weights of the node's outgoing edges. For every
// node this equals the host's outgoing occurrence count in the model.
func (g *Graph) OutWeight(id string) int {
	total := 0
	for _, e := range g.Edges {
		if e.From == id {
			total += e.Weight
		}
	}
	return total
}

// IncomingEdges returns the edges terminating at id.
func (g *Graph) IncomingEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

func portRefs(obs []model.PortObservation) []PortRef {
	out := make([]PortRef, 0, len(obs))
	for _, o := range obs {
		out = append(out, PortRef{Port: o.Port, Proto: o.Proto})
	}
	return out
}

// edgePorts restricts the destination host's incoming service ports to
// the protocols actually observed on this pair.
func edgePorts(dst *model.Host, conn *model.Connection) []PortRef {
	if dst == nil {
		return nil
	}
	var out []PortRef
	for _, o := range dst.PortsByDirection(model.DirectionIncoming) {
		if conn.HasProtocol(o.Proto) {
			out = append(out, PortRef{Port: o.Port, Proto: o.Proto})
		}
	}
	return out
}
