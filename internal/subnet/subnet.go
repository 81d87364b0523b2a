// Package subnet partitions observed host addresses into subnets by
// masking each address at a set of candidate prefix lengths. The most
// specific candidate becomes the host's subnet label.
package subnet

import (
	"fmt"
	"net/netip"
	"sort"
)

// DefaultPrefixLengths are the candidate prefix lengths applied when no
// configuration overrides them.
var DefaultPrefixLengths = []int{8, 16, 24}

// Config holds the tunable candidate prefix lengths.
type Config struct {
	PrefixLengths []int
}

// Plan is the result of subnet inference over one host address set.
type Plan struct {
	// Assignments maps each parseable host address to its most specific
	// containing prefix.
	Assignments map[string]string
	// Groups holds, per candidate prefix length, the containing prefix
	// and its member addresses.
	Groups map[int]map[string][]string
	// Order lists the distinct most-specific prefixes in the order they
	// were first discovered, for downstream address-block allocation.
	Order []string
	// Skipped lists addresses that failed to parse; they keep no subnet
	// assignment and the run continues.
	Skipped []string
}

// Subnet returns the assigned prefix for addr, or "" when the address was
// skipped or never seen.
func (p *Plan) Subnet(addr string) string {
	return p.Assignments[addr]
}

// Members returns the sorted member addresses of a most-specific prefix.
func (p *Plan) Members(prefix string) []string {
	lengths := make([]int, 0, len(p.Groups))
	for l := range p.Groups {
		lengths = append(lengths, l)
	}
	if len(lengths) == 0 {
		return nil
	}
	sort.Ints(lengths)
	most := lengths[len(lengths)-1]
	members := append([]string(nil), p.Groups[most][prefix]...)
	sort.Strings(members)
	return members
}

// Infer computes the subnet partition of addrs. Identical address sets in
// identical order always yield identical plans; the caller passes
// addresses in model discovery order so that Order is stable for a given
// input. Unparseable addresses are skipped, never fatal.
func Infer(addrs []string, cfg Config) (*Plan, error) {
	lengths := cfg.PrefixLengths
	if len(lengths) == 0 {
		lengths = DefaultPrefixLengths
	}
	for _, l := range lengths {
		if l <= 0 || l > 128 {
			return nil, fmt.Errorf("invalid candidate prefix length %d", l)
		}
	}
	lengths = append([]int(nil), lengths...)
	sort.Ints(lengths)
	mostSpecific := lengths[len(lengths)-1]

	plan := &Plan{
		Assignments: make(map[string]string),
		Groups:      make(map[int]map[string][]string),
	}
	for _, l := range lengths {
		plan.Groups[l] = make(map[string][]string)
	}

	seen := make(map[string]struct{})
	for _, addr := range addrs {
		ip, err := netip.ParseAddr(addr)
		if err != nil {
			plan.Skipped = append(plan.Skipped, addr)
			continue
		}
		for _, l := range lengths {
			bits := l
			if ip.Is4() && bits > 32 {
				bits = 32
			}
			prefix, err := ip.Prefix(bits)
			if err != nil {
				plan.Skipped = append(plan.Skipped, addr)
				continue
			}
			label := prefix.String()
			plan.Groups[l][label] = append(plan.Groups[l][label], addr)
			if l == mostSpecific {
				plan.Assignments[addr] = label
				if _, ok := seen[label]; !ok {
					seen[label] = struct{}{}
					plan.Order = append(plan.Order, label)
				}
			}
		}
	}
	return plan, nil
}
