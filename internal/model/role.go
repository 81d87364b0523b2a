package model

// Role is the functional classification label assigned to a host from
// traffic statistics. It is assigned exactly once, after ingestion
// completes, and is empty until then.
type Role string

const (
	RoleUnknown        Role = "UNKNOWN"
	RoleServer         Role = "SERVER"
	RoleClient         Role = "CLIENT"
	RolePLCModbus      Role = "PLC_MODBUS"
	RolePLCS7Comm      Role = "PLC_S7COMM"
	RolePLCEtherNetIP  Role = "PLC_ETHERNET_IP"
	RoleWebServer      Role = "WEB_SERVER"
	RoleDNSServer      Role = "DNS_SERVER"
	RoleMailServer     Role = "MAIL_SERVER"
	RoleFTPServer      Role = "FTP_SERVER"
	RoleSSHServer      Role = "SSH_SERVER"
	RoleDatabaseServer Role = "DATABASE_SERVER"
	RoleMQTTBroker     Role = "MQTT_BROKER"
	RoleWebClient      Role = "WEB_CLIENT"
	RoleGateway        Role = "GATEWAY"
)

// Roles lists every label the classifier can assign.
var Roles = []Role{
	RoleUnknown,
	RoleServer,
	RoleClient,
	RolePLCModbus,
	RolePLCS7Comm,
	RolePLCEtherNetIP,
	RoleWebServer,
	RoleDNSServer,
	RoleMailServer,
	RoleFTPServer,
	RoleSSHServer,
	RoleDatabaseServer,
	RoleMQTTBroker,
	RoleWebClient,
	RoleGateway,
}

// Valid reports whether r is one of the defined role labels.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
