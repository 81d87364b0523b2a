package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"netspawn/internal/classify"
	"netspawn/internal/graph"
	"netspawn/internal/model"
	"netspawn/internal/subnet"
)

// modbusScenario builds a model where 10.0.0.5 receives from 9 distinct
// peers on 502/tcp and makes one outgoing connection.
func modbusScenario(t *testing.T) (*model.Model, *graph.Graph) {
	t.Helper()
	m := model.New()
	for i := 0; i < 9; i++ {
		rec := model.NewRecord(fmt.Sprintf("10.0.1.%d", 10+i), "10.0.0.5", model.ProtocolTCP)
		rec.DstPort = 502
		m.Observe(rec)
	}
	m.Observe(model.NewRecord("10.0.0.5", "10.0.1.10", model.ProtocolTCP))

	plan, err := subnet.Infer(m.Addrs(), subnet.Config{})
	require.NoError(t, err)
	for _, addr := range m.Addrs() {
		m.Host(addr).Subnet = plan.Subnet(addr)
	}
	classify.New(classify.DefaultParams(), nil).Classify(m)
	return m, graph.Build(m, nil)
}

func TestBuildPlan(t *testing.T) {
	m, g := modbusScenario(t)
	plan, err := Build(m, g, Options{NetworkName: "replica"})
	require.NoError(t, err)

	t.Run("one instance per host", func(t *testing.T) {
		assert.Len(t, plan.Instances, m.HostCount())
	})

	t.Run("subnets allocated in discovery order", func(t *testing.T) {
		require.Len(t, plan.Subnets, 2)
		assert.Equal(t, "10.0.1.0/24", plan.Subnets[0].Observed)
		assert.Equal(t, "10.0.0.0/24", plan.Subnets[1].Observed)
		assert.Equal(t, "10.0.0.0/24", plan.Subnets[0].CIDR)
		assert.Equal(t, "10.1.0.0/24", plan.Subnets[1].CIDR)
	})

	t.Run("modbus host gets service tier and 502 bootstrap", func(t *testing.T) {
		var inst *InstanceResource
		for i := range plan.Instances {
			if plan.Instances[i].Addr == "10.0.0.5" {
				inst = &plan.Instances[i]
			}
		}
		require.NotNil(t, inst)
		assert.Equal(t, model.RolePLCModbus, inst.Role)
		assert.Equal(t, "e2-medium", inst.MachineType)
		assert.Contains(t, inst.Bootstrap, "502")
	})

	t.Run("one grouped firewall rule for tcp 502", func(t *testing.T) {
		require.Len(t, plan.Firewalls, 1)
		assert.Equal(t, "tcp", plan.Firewalls[0].Protocol)
		assert.Equal(t, []int{502}, plan.Firewalls[0].Ports)
	})

	t.Run("address map covers every host", func(t *testing.T) {
		assert.Len(t, plan.AddressMap, m.HostCount())
		assert.Equal(t, "host-10-0-0-5", plan.AddressMap["10.0.0.5"])
	})
}

func TestFirewallGrouping(t *testing.T) {
	m := model.New()
	add := func(dst string, port int, proto model.Protocol) {
		rec := model.NewRecord("10.0.0.99", dst, proto)
		rec.DstPort = port
		m.Observe(rec)
	}
	add("10.0.0.1", 80, model.ProtocolTCP)
	add("10.0.0.2", 443, model.ProtocolTCP)
	add("10.0.0.3", 53, model.ProtocolUDP)

	g := graph.Build(m, nil)
	plan, err := Build(m, g, Options{})
	require.NoError(t, err)

	require.Len(t, plan.Firewalls, 2)
	assert.Equal(t, "tcp", plan.Firewalls[0].Protocol)
	assert.Equal(t, []int{80, 443}, plan.Firewalls[0].Ports)
	assert.Equal(t, "udp", plan.Firewalls[1].Protocol)
	assert.Equal(t, []int{53}, plan.Firewalls[1].Ports)
}

func TestBuildEmptyModel(t *testing.T) {
	m := model.New()
	_, err := Build(m, graph.Build(m, nil), Options{})
	assert.ErrorIs(t, err, ErrEmptyModel)
}

func TestUnrecognizedRoleFallsBack(t *testing.T) {
	m := model.New()
	m.RecordConnection("10.0.0.1", "10.0.0.2", model.ProtocolTCP)
	m.Host("10.0.0.1").Role = "SOMETHING_NEW"

	plan, err := Build(m, graph.Build(m, nil), Options{})
	require.NoError(t, err)

	for _, inst := range plan.Instances {
		if inst.Addr == "10.0.0.1" {
			assert.Equal(t, "e2-micro", inst.MachineType)
		}
	}
}

func TestHostsWithoutSubnetShareCatchAll(t *testing.T) {
	m := model.New()
	m.RecordConnection("bogus", "10.0.0.1", model.ProtocolTCP)
	m.Host("10.0.0.1").Subnet = "10.0.0.0/24"

	plan, err := Build(m, graph.Build(m, nil), Options{})
	require.NoError(t, err)

	require.Len(t, plan.Subnets, 2)
	assert.Equal(t, "unassigned", plan.Subnets[1].Observed)
	for _, inst := range plan.Instances {
		assert.NotEmpty(t, inst.SubnetName)
	}
}

func TestEmit(t *testing.T) {
	m, g := modbusScenario(t)
	plan, err := Build(m, g, Options{Project: "replica-test"})
	require.NoError(t, err)

	t.Run("writes every artifact", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, Emit(plan, dir))

		for _, name := range []string{"provider.tf", "network.tf", "instances.tf", "firewall.tf", "mapping.yaml"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}

		firewall, err := os.ReadFile(filepath.Join(dir, "firewall.tf"))
		require.NoError(t, err)
		assert.Contains(t, string(firewall), `protocol = "tcp"`)
		assert.Contains(t, string(firewall), `"502"`)

		var mapping struct {
			Addresses map[string]string `yaml:"addresses"`
		}
		data, err := os.ReadFile(filepath.Join(dir, "mapping.yaml"))
		require.NoError(t, err)
		require.NoError(t, yaml.Unmarshal(data, &mapping))
		assert.Equal(t, "host-10-0-0-5", mapping.Addresses["10.0.0.5"])
	})

	t.Run("output is deterministic across runs", func(t *testing.T) {
		dirA, dirB := t.TempDir(), t.TempDir()
		require.NoError(t, Emit(plan, dirA))
		require.NoError(t, Emit(plan, dirB))

		for _, name := range []string{"provider.tf", "network.tf", "instances.tf", "firewall.tf"} {
			a, err := os.ReadFile(filepath.Join(dirA, name))
			require.NoError(t, err)
			b, err := os.ReadFile(filepath.Join(dirB, name))
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b), name)
		}
	})

	t.Run("unwritable location is fatal", func(t *testing.T) {
		dir := t.TempDir()
		blocked := filepath.Join(dir, "blocked")
		require.NoError(t, os.WriteFile(blocked, []byte("file"), 0o644))
		// blocked is a file, so it cannot be used as a directory.
		assert.Error(t, Emit(plan, filepath.Join(blocked, "out")))
	})
}
