package classify

import "netspawn/internal/model"

// ServiceEntry maps a set of well-known destination ports (optionally
// restricted to specific transport protocols) to a role label. Entries
// are scanned in table order, so earlier entries take priority.
type ServiceEntry struct {
	Role      model.Role       `yaml:"role"`
	Ports     []int            `yaml:"ports"`
	Protocols []model.Protocol `yaml:"protocols,omitempty"`
}

// PortTable is the ordered service-port lookup used by the server rule.
// Industrial protocols come first, then common application services.
type PortTable []ServiceEntry

// DefaultPortTable returns the built-in service table. Deployments
// override it through the configuration file.
func DefaultPortTable() PortTable {
	return PortTable{
		{Role: model.RolePLCModbus, Ports: []int{502}},
		{Role: model.RolePLCS7Comm, Ports: []int{102}},
		{Role: model.RolePLCEtherNetIP, Ports: []int{44818, 2222}},
		{Role: model.RoleWebServer, Ports: []int{80, 443, 8080, 8443, 8000, 8888}},
		{Role: model.RoleDNSServer, Ports: []int{53}},
		{Role: model.RoleMailServer, Ports: []int{25, 465, 587}},
		{Role: model.RoleFTPServer, Ports: []int{21}},
		{Role: model.RoleSSHServer, Ports: []int{22}},
		{Role: model.RoleDatabaseServer, Ports: []int{3306, 5432, 1433, 27017}},
		{Role: model.RoleMQTTBroker, Ports: []int{1883, 8883}},
	}
}

// matches reports whether the observation hits this entry.
func (e ServiceEntry) matches(obs model.PortObservation) bool {
	hit := false
	for _, p := range e.Ports {
		if p == obs.Port {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	if len(e.Protocols) == 0 {
		return true
	}
	for _, proto := range e.Protocols {
		if proto == obs.Proto {
			return true
		}
	}
	return false
}

// Lookup scans the table in priority order against the given port
// observations. The first entry matched by any observation wins.
func (t PortTable) Lookup(obs []model.PortObservation) (model.Role, bool) {
	for _, entry := range t {
		for _, o := range obs {
			if entry.matches(o) {
				return entry.Role, true
			}
		}
	}
	return "", false
}

// WebPorts returns the ports of the table's WEB_SERVER entry. The web
// client rule reuses them so both rules agree on what "web" means.
func (t PortTable) WebPorts() []int {
	for _, entry := range t {
		if entry.Role == model.RoleWebServer {
			return entry.Ports
		}
	}
	return nil
}
