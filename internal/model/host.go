package model

import "sort"

// PortObservation records a single port seen on a host's traffic, tagged
// with the transport protocol and the direction it was observed in.
type PortObservation struct {
	Port      int       `json:"port"`
	Proto     Protocol  `json:"protocol"`
	Direction Direction `json:"direction"`
}

// Host represents a network host discovered during ingestion. Identity is
// the address string. Subnet and Role stay empty until the inference
// phases run over the fully populated model.
type Host struct {
	Addr   string            `json:"addr"`
	Ports  []PortObservation `json:"ports,omitempty"`
	Subnet string            `json:"subnet,omitempty"`
	Role   Role              `json:"role,omitempty"`
}

// addPort appends an observation. Appending never replaces or reorders
// prior observations.
func (h *Host) addPort(obs PortObservation) {
	h.Ports = append(h.Ports, obs)
}

// PortsByDirection returns the host's distinct port observations in the
// given direction, sorted by protocol then port number.
func (h *Host) PortsByDirection(dir Direction) []PortObservation {
	seen := make(map[PortObservation]struct{})
	var out []PortObservation
	for _, obs := range h.Ports {
		if obs.Direction != dir {
			continue
		}
		key := PortObservation{Port: obs.Port, Proto: obs.Proto, Direction: dir}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Proto != out[j].Proto {
			return out[i].Proto < out[j].Proto
		}
		return out[i].Port < out[j].Port
	})
	return out
}

// HasPort reports whether the host has an observation matching the given
// port, protocol, and direction.
func (h *Host) HasPort(port int, proto Protocol, dir Direction) bool {
	for _, obs := range h.Ports {
		if obs.Port == port && obs.Proto == proto && obs.Direction == dir {
			return true
		}
	}
	return false
}
