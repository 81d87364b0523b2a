package generate

import "netspawn/internal/model"

// Profile is the machine tier plus bootstrap behavior an instance gets
// for its role.
type Profile struct {
	MachineType string
	Bootstrap   string
}

// baseline is the idle profile. It also backstops any role value the
// table does not know, so an unrecognized label degrades the instance,
// never the run.
var baseline = Profile{
	MachineType: "e2-micro",
	Bootstrap:   "#!/bin/sh\n# idle profile\n",
}

var serviceTier = "e2-medium"

var profiles = map[model.Role]Profile{
	model.RoleServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
# generic service: TCP echo listener
nohup socat TCP-LISTEN:7,fork EXEC:cat >/var/log/echo.log 2>&1 &
`,
	},
	model.RolePLCModbus: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
# Modbus TCP listener on 502
pip3 install pymodbus >/dev/null 2>&1
nohup python3 -c 'from pymodbus.server import StartTcpServer; from pymodbus.datastore import ModbusServerContext, ModbusSlaveContext; StartTcpServer(context=ModbusServerContext(slaves=ModbusSlaveContext(), single=True), address=("0.0.0.0", 502))' >/var/log/modbus.log 2>&1 &
`,
	},
	model.RolePLCS7Comm: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
# S7comm endpoint placeholder on 102
nohup socat TCP-LISTEN:102,fork EXEC:cat >/var/log/s7.log 2>&1 &
`,
	},
	model.RolePLCEtherNetIP: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
# EtherNet/IP endpoint placeholder on 44818
nohup socat TCP-LISTEN:44818,fork EXEC:cat >/var/log/enip.log 2>&1 &
`,
	},
	model.RoleWebServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
# static HTTP responder
mkdir -p /srv/www && echo ok > /srv/www/index.html
nohup python3 -m http.server 80 --directory /srv/www >/var/log/http.log 2>&1 &
`,
	},
	model.RoleDNSServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
apt-get install -y dnsmasq >/dev/null 2>&1
systemctl enable --now dnsmasq
`,
	},
	model.RoleMailServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
DEBIAN_FRONTEND=noninteractive apt-get install -y postfix >/dev/null 2>&1
systemctl enable --now postfix
`,
	},
	model.RoleFTPServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
apt-get install -y vsftpd >/dev/null 2>&1
systemctl enable --now vsftpd
`,
	},
	model.RoleSSHServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
systemctl enable --now ssh
`,
	},
	model.RoleDatabaseServer: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
# seeded database engine
DEBIAN_FRONTEND=noninteractive apt-get install -y mariadb-server >/dev/null 2>&1
systemctl enable --now mariadb
mysql -e "CREATE DATABASE IF NOT EXISTS seed; CREATE TABLE IF NOT EXISTS seed.sample (id INT PRIMARY KEY, note TEXT); INSERT IGNORE INTO seed.sample VALUES (1, 'replicated');"
`,
	},
	model.RoleMQTTBroker: {
		MachineType: serviceTier,
		Bootstrap: `#!/bin/sh
apt-get install -y mosquitto >/dev/null 2>&1
systemctl enable --now mosquitto
`,
	},
}

// profileFor resolves a role to its instance profile. Roles without a
// profile get the baseline.
func profileFor(role model.Role) Profile {
	if p, ok := profiles[role]; ok {
		return p
	}
	return baseline
}
