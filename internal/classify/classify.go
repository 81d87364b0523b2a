// Package classify assigns one functional role label per host from
// aggregate traffic statistics and service-port evidence. The decision
// procedure is an explicit ordered table of rules; the first rule that
// matches a host wins, so ordering and overrides stay independently
// testable.
package classify

import (
	"slices"

	"netspawn/internal/model"
)

// Default thresholds. Their specific values come from observed practice,
// not a documented derivation, so both stay configurable.
const (
	DefaultDominanceRatio = 3.0
	DefaultActivityFloor  = 10
)

// Params are the tunable classifier thresholds.
type Params struct {
	// DominanceRatio is the factor by which one direction's distinct
	// connection count must exceed the other before a host counts as
	// server- or client-dominant.
	DominanceRatio float64
	// ActivityFloor is the minimum distinct connection count both
	// directions must exceed for the gateway rule.
	ActivityFloor int
}

// DefaultParams returns the built-in thresholds.
func DefaultParams() Params {
	return Params{DominanceRatio: DefaultDominanceRatio, ActivityFloor: DefaultActivityFloor}
}

// Rule is one entry of the ordered decision table. Evaluate returns the
// assigned role and whether the rule matched.
type Rule struct {
	Name     string
	Evaluate func(s model.HostStats) (model.Role, bool)
}

// Classifier applies the rule chain to every host of a finalized model.
type Classifier struct {
	params Params
	table  PortTable
	rules  []Rule
}

// New builds a classifier from thresholds and a service-port table.
// Zero-valued params fall back to the defaults.
func New(params Params, table PortTable) *Classifier {
	if params.DominanceRatio <= 0 {
		params.DominanceRatio = DefaultDominanceRatio
	}
	if params.ActivityFloor <= 0 {
		params.ActivityFloor = DefaultActivityFloor
	}
	if len(table) == 0 {
		table = DefaultPortTable()
	}
	c := &Classifier{params: params, table: table}
	c.rules = []Rule{
		{Name: "server-dominant", Evaluate: c.serverDominant},
		{Name: "web-client", Evaluate: c.webClient},
		{Name: "gateway-floor", Evaluate: c.gatewayFloor},
		{Name: "active-client", Evaluate: c.activeClient},
	}
	return c
}

// Rules exposes the ordered rule chain, mainly for audit output and
// tests that pin the evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// ClassifyHost runs the rule chain for a single host's stats. Hosts with
// no connection evidence at all stay UNKNOWN.
func (c *Classifier) ClassifyHost(s model.HostStats) model.Role {
	for _, rule := range c.rules {
		if role, ok := rule.Evaluate(s); ok {
			return role
		}
	}
	return model.RoleUnknown
}

// Classify assigns a role to every host in the model and returns the
// assignment map. Classification reads global aggregates, so it must run
// only after ingestion has fully completed.
func (c *Classifier) Classify(m *model.Model) map[string]model.Role {
	roles := make(map[string]model.Role, m.HostCount())
	for _, addr := range m.SortedAddrs() {
		role := c.ClassifyHost(m.Stats(addr))
		m.Host(addr).Role = role
		roles[addr] = role
	}
	return roles
}

// serverDominant labels hosts whose incoming distinct connection count
// exceeds ratio x outgoing. The destination-direction ports are scanned
// against the service table; with no recognized service the host is a
// generic SERVER.
func (c *Classifier) serverDominant(s model.HostStats) (model.Role, bool) {
	if s.DistinctIn == 0 || float64(s.DistinctIn) <= c.params.DominanceRatio*float64(s.DistinctOut) {
		return "", false
	}
	if role, ok := c.table.Lookup(s.IncomingPorts); ok {
		return role, true
	}
	return model.RoleServer, true
}

// webClient labels hosts whose outgoing distinct connection count exceeds
// ratio x incoming and that have at least one egress observation on a
// recognized web port over TCP.
func (c *Classifier) webClient(s model.HostStats) (model.Role, bool) {
	if s.DistinctOut == 0 || float64(s.DistinctOut) <= c.params.DominanceRatio*float64(s.DistinctIn) {
		return "", false
	}
	web := c.table.WebPorts()
	for _, obs := range s.OutgoingPorts {
		if obs.Proto != model.ProtocolTCP {
			continue
		}
		if slices.Contains(web, obs.Port) {
			return model.RoleWebClient, true
		}
	}
	return "", false
}

// gatewayFloor labels hosts with substantial bidirectional activity. It
// sits after the dominance rules, so a dominance-matched SERVER or PLC
// label is never displaced; the override applies only to hosts neither
// dominance rule claimed. GatewayCondition is the exact predicate.
func (c *Classifier) gatewayFloor(s model.HostStats) (model.Role, bool) {
	if GatewayCondition(s, c.params) {
		return model.RoleGateway, true
	}
	return "", false
}

// GatewayCondition reports whether both direction counts simultaneously
// exceed the activity floor. Exported so the override can be tested as
// an explicit condition rather than inferred from rule order.
func GatewayCondition(s model.HostStats, p Params) bool {
	return s.DistinctIn > p.ActivityFloor && s.DistinctOut > p.ActivityFloor
}

// activeClient is the terminal rule for hosts with any connection
// evidence.
func (c *Classifier) activeClient(s model.HostStats) (model.Role, bool) {
	if s.DistinctIn > 0 || s.DistinctOut > 0 {
		return model.RoleClient, true
	}
	return "", false
}

// RoleCounts tallies an assignment map per role.
func RoleCounts(roles map[string]model.Role) map[model.Role]int {
	counts := make(map[model.Role]int)
	for _, role := range roles {
		counts[role]++
	}
	return counts
}
