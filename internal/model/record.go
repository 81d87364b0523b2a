package model

import "strings"

// Protocol identifies the transport protocol of a canonical record.
type Protocol string

const (
	ProtocolTCP   Protocol = "tcp"
	ProtocolUDP   Protocol = "udp"
	ProtocolOther Protocol = "other"
)

// ParseProtocol normalizes a free-form protocol string from an ingestion
// source. Anything that is not TCP or UDP collapses to ProtocolOther.
func ParseProtocol(s string) Protocol {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp", "6":
		return ProtocolTCP
	case "udp", "17":
		return ProtocolUDP
	default:
		return ProtocolOther
	}
}

// Direction indicates whether a port observation was seen on traffic
// arriving at a host or leaving it.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// NoPort marks an absent port field on a canonical record.
const NoPort = -1

// Record is the canonical connection observation every ingestion adapter
// produces, independent of the original capture format.
type Record struct {
	SrcAddr string   `json:"src_addr"`
	DstAddr string   `json:"dst_addr"`
	Proto   Protocol `json:"protocol"`
	SrcPort int      `json:"src_port"`
	DstPort int      `json:"dst_port"`
}

// NewRecord creates a record with both port fields unset.
func NewRecord(src, dst string, proto Protocol) Record {
	return Record{
		SrcAddr: src,
		DstAddr: dst,
		Proto:   proto,
		SrcPort: NoPort,
		DstPort: NoPort,
	}
}

// HasSrcPort reports whether the source port field is present.
func (r Record) HasSrcPort() bool {
	return r.SrcPort >= 0
}

// HasDstPort reports whether the destination port field is present.
func (r Record) HasDstPort() bool {
	return r.DstPort >= 0
}
