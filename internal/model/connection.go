package model

import "sort"

// Connection aggregates every observation of one ordered (source,
// destination) address pair: how often the pair was seen and which
// transport protocols it used.
type Connection struct {
	Src       string
	Dst       string
	Count     int
	Protocols map[Protocol]struct{}
}

func newConnection(src, dst string) *Connection {
	return &Connection{
		Src:       src,
		Dst:       dst,
		Protocols: make(map[Protocol]struct{}),
	}
}

// observe increments the occurrence count and adds the protocol to the
// pair's set. Both operations are commutative, so merge order never
// changes the final state.
func (c *Connection) observe(proto Protocol) {
	c.Count++
	c.Protocols[proto] = struct{}{}
}

// HasProtocol reports whether the pair was ever seen using proto.
func (c *Connection) HasProtocol(proto Protocol) bool {
	_, ok := c.Protocols[proto]
	return ok
}

// ProtocolList returns the pair's protocols in sorted order.
func (c *Connection) ProtocolList() []Protocol {
	out := make([]Protocol, 0, len(c.Protocols))
	for p := range c.Protocols {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
