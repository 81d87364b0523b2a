// Package generate renders a finalized model and its topology graph into
// declarative infrastructure definitions: Terraform-style resource files
// for networks, subnets, compute instances, and firewall rules, plus a
// mapping from each observed address to its provisioned resource. The
// definitions are input for an external provisioning engine; this
// package never applies them.
package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"netspawn/internal/graph"
	"netspawn/internal/model"
)

// ErrEmptyModel is returned when generation is asked to render a model
// with no hosts. An empty artifact set would look valid downstream, so
// this is fatal.
var ErrEmptyModel = errors.New("model contains no hosts")

// Options configure the emitted provider block and resource naming.
type Options struct {
	Provider    string
	Project     string
	Region      string
	Zone        string
	NetworkName string
}

func (o *Options) applyDefaults() {
	if o.Provider == "" {
		o.Provider = "google"
	}
	if o.Region == "" {
		o.Region = "europe-west1"
	}
	if o.Zone == "" {
		o.Zone = o.Region + "-b"
	}
	if o.NetworkName == "" {
		o.NetworkName = "netspawn"
	}
}

// Plan is the fully resolved set of resources, computed before anything
// touches the filesystem so a failed write never leaves a half-decided
// artifact set.
type Plan struct {
	Options   Options
	Subnets   []SubnetResource
	Instances []InstanceResource
	Firewalls []FirewallResource
	// AddressMap maps each observed address to its instance resource
	// name, for later address reconciliation.
	AddressMap map[string]string
}

// SubnetResource is one provisioned subnetwork.
type SubnetResource struct {
	Name string
	// Observed is the inferred prefix the subnet replicates.
	Observed string
	// CIDR is the allocated private address block (10.N.0.0/24).
	CIDR string
}

// InstanceResource is one provisioned compute instance.
type InstanceResource struct {
	Name        string
	Addr        string
	Role        model.Role
	MachineType string
	SubnetName  string
	Bootstrap   string
}

// FirewallResource is one ingress rule: a protocol with the grouped set
// of service ports observed for it.
type FirewallResource struct {
	Name     string
	Protocol string
	Ports    []int
}

// Build computes the resource plan from the model and graph. Empty host
// sets are rejected here, before any output exists.
func Build(m *model.Model, g *graph.Graph, opts Options) (*Plan, error) {
	if m.HostCount() == 0 {
		return nil, ErrEmptyModel
	}
	opts.applyDefaults()

	plan := &Plan{
		Options:    opts,
		AddressMap: make(map[string]string),
	}

	subnetNames := plan.allocateSubnets(m)
	plan.buildInstances(m, subnetNames)
	plan.buildFirewalls(g)
	return plan, nil
}

// allocateSubnets assigns sequential 10.N.0.0/24 blocks to the distinct
// inferred subnets, in the order they were first discovered. Hosts with
// no subnet assignment share a catch-all block.
func (p *Plan) allocateSubnets(m *model.Model) map[string]string {
	names := make(map[string]string) // observed prefix -> resource name

	var observed []string
	seen := make(map[string]struct{})
	unassigned := false
	for _, addr := range m.Addrs() {
		prefix := m.Host(addr).Subnet
		if prefix == "" {
			unassigned = true
			continue
		}
		if _, ok := seen[prefix]; !ok {
			seen[prefix] = struct{}{}
			observed = append(observed, prefix)
		}
	}

	for i, prefix := range observed {
		res := SubnetResource{
			Name:     fmt.Sprintf("%s-subnet-%d", p.Options.NetworkName, i),
			Observed: prefix,
			CIDR:     fmt.Sprintf("10.%d.0.0/24", i),
		}
		p.Subnets = append(p.Subnets, res)
		names[prefix] = res.Name
	}

	if unassigned {
		res := SubnetResource{
			Name:     fmt.Sprintf("%s-subnet-%d", p.Options.NetworkName, len(observed)),
			Observed: "unassigned",
			CIDR:     fmt.Sprintf("10.%d.0.0/24", len(observed)),
		}
		p.Subnets = append(p.Subnets, res)
		names[""] = res.Name
	}
	return names
}

func (p *Plan) buildInstances(m *model.Model, subnetNames map[string]string) {
	for _, addr := range m.SortedAddrs() {
		h := m.Host(addr)
		profile := profileFor(h.Role)
		name := resourceName(addr)
		p.Instances = append(p.Instances, InstanceResource{
			Name:        name,
			Addr:        addr,
			Role:        h.Role,
			MachineType: profile.MachineType,
			SubnetName:  subnetNames[h.Subnet],
			Bootstrap:   profile.Bootstrap,
		})
		p.AddressMap[addr] = name
	}
}

// buildFirewalls derives one ingress rule per protocol seen on incoming
// edges, grouping all that protocol's destination service ports into a
// single rule.
func (p *Plan) buildFirewalls(g *graph.Graph) {
	portsByProto := make(map[string]map[int]struct{})
	for _, e := range g.Edges {
		for _, ref := range e.ServicePorts {
			proto := string(ref.Proto)
			if proto == string(model.ProtocolOther) {
				continue
			}
			if portsByProto[proto] == nil {
				portsByProto[proto] = make(map[int]struct{})
			}
			portsByProto[proto][ref.Port] = struct{}{}
		}
	}

	protos := make([]string, 0, len(portsByProto))
	for proto := range portsByProto {
		protos = append(protos, proto)
	}
	sort.Strings(protos)

	for _, proto := range protos {
		ports := make([]int, 0, len(portsByProto[proto]))
		for port := range portsByProto[proto] {
			ports = append(ports, port)
		}
		sort.Ints(ports)
		p.Firewalls = append(p.Firewalls, FirewallResource{
			Name:     fmt.Sprintf("%s-allow-%s", p.Options.NetworkName, proto),
			Protocol: proto,
			Ports:    ports,
		})
	}
}

// Emit renders the plan into outDir: provider.tf, network.tf,
// instances.tf, firewall.tf, and mapping.yaml. Writes are blocking and
// there is no rollback; callers use a fresh directory per run.
func Emit(plan *Plan, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name   string
		render func(*Plan) (string, error)
	}{
		{"provider.tf", renderProvider},
		{"network.tf", renderNetwork},
		{"instances.tf", renderInstances},
		{"firewall.tf", renderFirewall},
	}
	for _, f := range files {
		content, err := f.render(plan)
		if err != nil {
			return fmt.Errorf("render %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(outDir, f.name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	mapping, err := yaml.Marshal(map[string]map[string]string{"addresses": plan.AddressMap})
	if err != nil {
		return fmt.Errorf("marshal address map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "mapping.yaml"), mapping, 0o644); err != nil {
		return fmt.Errorf("write mapping.yaml: %w", err)
	}
	return nil
}

// resourceName derives a deterministic resource identifier from an
// observed address.
func resourceName(addr string) string {
	var b strings.Builder
	b.WriteString("host-")
	for _, r := range strings.ToLower(addr) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
