package model

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHost(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		m := New()
		first := m.RegisterHost("10.0.0.1")
		second := m.RegisterHost("10.0.0.1")

		assert.Same(t, first, second)
		assert.Equal(t, 1, m.HostCount())
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		m := New()
		m.RegisterHost("10.0.0.3")
		m.RegisterHost("10.0.0.1")
		m.RegisterHost("10.0.0.2")
		m.RegisterHost("10.0.0.1")

		assert.Equal(t, []string{"10.0.0.3", "10.0.0.1", "10.0.0.2"}, m.Addrs())
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, m.SortedAddrs())
	})
}

func TestRecordConnection(t *testing.T) {
	m := New()
	m.RecordConnection("10.0.0.1", "10.0.0.2", ProtocolTCP)
	m.RecordConnection("10.0.0.1", "10.0.0.2", ProtocolTCP)
	m.RecordConnection("10.0.0.1", "10.0.0.2", ProtocolUDP)

	t.Run("registers both endpoints", func(t *testing.T) {
		require.NotNil(t, m.Host("10.0.0.1"))
		require.NotNil(t, m.Host("10.0.0.2"))
	})

	t.Run("increments count and unions protocols", func(t *testing.T) {
		conn := m.Connection("10.0.0.1", "10.0.0.2")
		require.NotNil(t, conn)
		assert.Equal(t, 3, conn.Count)
		assert.Equal(t, []Protocol{ProtocolTCP, ProtocolUDP}, conn.ProtocolList())
	})

	t.Run("direction matters for pair identity", func(t *testing.T) {
		m.RecordConnection("10.0.0.2", "10.0.0.1", ProtocolTCP)
		reverse := m.Connection("10.0.0.2", "10.0.0.1")
		require.NotNil(t, reverse)
		assert.Equal(t, 1, reverse.Count)
		assert.Equal(t, 3, m.Connection("10.0.0.1", "10.0.0.2").Count)
	})
}

func TestRecordPort(t *testing.T) {
	m := New()
	m.RecordPort("10.0.0.5", 502, ProtocolTCP, DirectionIncoming)
	m.RecordPort("10.0.0.5", 502, ProtocolTCP, DirectionIncoming)
	m.RecordPort("10.0.0.5", 443, ProtocolTCP, DirectionOutgoing)

	h := m.Host("10.0.0.5")
	require.NotNil(t, h)

	t.Run("appends, never replaces", func(t *testing.T) {
		assert.Len(t, h.Ports, 3)
	})

	t.Run("direction filter deduplicates", func(t *testing.T) {
		incoming := h.PortsByDirection(DirectionIncoming)
		require.Len(t, incoming, 1)
		assert.Equal(t, 502, incoming[0].Port)
	})

	t.Run("HasPort honors direction", func(t *testing.T) {
		assert.True(t, h.HasPort(502, ProtocolTCP, DirectionIncoming))
		assert.False(t, h.HasPort(502, ProtocolTCP, DirectionOutgoing))
		assert.True(t, h.HasPort(443, ProtocolTCP, DirectionOutgoing))
	})
}

func TestObserve(t *testing.T) {
	m := New()
	rec := NewRecord("192.168.1.10", "192.168.1.20", ProtocolTCP)
	rec.SrcPort = 49152
	rec.DstPort = 80
	m.Observe(rec)

	t.Run("destination port lands on both endpoints by direction", func(t *testing.T) {
		assert.True(t, m.Host("192.168.1.20").HasPort(80, ProtocolTCP, DirectionIncoming))
		assert.True(t, m.Host("192.168.1.10").HasPort(80, ProtocolTCP, DirectionOutgoing))
	})

	t.Run("ephemeral source port is not attributed", func(t *testing.T) {
		assert.False(t, m.Host("192.168.1.10").HasPort(49152, ProtocolTCP, DirectionOutgoing))
		assert.False(t, m.Host("192.168.1.20").HasPort(49152, ProtocolTCP, DirectionIncoming))
	})

	t.Run("record without ports still counts the pair", func(t *testing.T) {
		m.Observe(NewRecord("192.168.1.10", "192.168.1.20", ProtocolTCP))
		assert.Equal(t, 2, m.Connection("192.168.1.10", "192.168.1.20").Count)
	})
}

func TestStats(t *testing.T) {
	m := New()
	for _, peer := range []string{"10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		rec := NewRecord(peer, "10.0.0.1", ProtocolTCP)
		rec.DstPort = 22
		m.Observe(rec)
		m.Observe(rec)
	}
	m.Observe(NewRecord("10.0.0.1", "10.0.0.9", ProtocolUDP))

	s := m.Stats("10.0.0.1")
	assert.Equal(t, 3, s.DistinctIn)
	assert.Equal(t, 1, s.DistinctOut)
	assert.Equal(t, 6, s.WeightIn)
	assert.Equal(t, 1, s.WeightOut)
	require.Len(t, s.IncomingPorts, 1)
	assert.Equal(t, 22, s.IncomingPorts[0].Port)

	t.Run("unknown address yields zero stats", func(t *testing.T) {
		assert.Equal(t, HostStats{Addr: "nope"}, m.Stats("nope"))
	})
}

func TestProtocolDistribution(t *testing.T) {
	m := New()
	m.RecordConnection("a", "b", ProtocolTCP)
	m.RecordConnection("a", "b", ProtocolTCP)
	m.RecordConnection("b", "c", ProtocolUDP)

	dist := m.ProtocolDistribution()
	assert.Equal(t, 2, dist[ProtocolTCP])
	assert.Equal(t, 1, dist[ProtocolUDP])
}

func TestMergeStaging(t *testing.T) {
	base := New()
	base.RecordConnection("10.0.0.1", "10.0.0.2", ProtocolTCP)

	staged := New()
	staged.RecordConnection("10.0.0.1", "10.0.0.2", ProtocolUDP)
	staged.RecordPort("10.0.0.2", 53, ProtocolUDP, DirectionIncoming)

	base.Merge(staged)

	conn := base.Connection("10.0.0.1", "10.0.0.2")
	require.NotNil(t, conn)
	assert.Equal(t, 2, conn.Count)
	assert.Equal(t, []Protocol{ProtocolTCP, ProtocolUDP}, conn.ProtocolList())
	assert.True(t, base.Host("10.0.0.2").HasPort(53, ProtocolUDP, DirectionIncoming))
}

// Merging an identical record set in any permutation must yield identical
// hosts, counts, protocol sets, and port observation sets.
func TestOrderIndependence(t *testing.T) {
	addrs := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.1.7", "172.16.0.4"}
	protos := []Protocol{ProtocolTCP, ProtocolUDP, ProtocolOther}
	ports := []int{NoPort, 22, 80, 502, 49152}

	genRecord := gopter.CombineGens(
		gen.IntRange(0, len(addrs)-1),
		gen.IntRange(0, len(addrs)-1),
		gen.IntRange(0, len(protos)-1),
		gen.IntRange(0, len(ports)-1),
	).Map(func(vals []interface{}) Record {
		rec := NewRecord(addrs[vals[0].(int)], addrs[vals[1].(int)], protos[vals[2].(int)])
		rec.DstPort = ports[vals[3].(int)]
		return rec
	})

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	properties.Property("permutation-invariant fingerprint", prop.ForAll(
		func(records []Record, seed int64) bool {
			forward := New()
			for _, rec := range records {
				forward.Observe(rec)
			}

			shuffled := make([]Record, len(records))
			copy(shuffled, records)
			rng := rand.New(rand.NewSource(seed))
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			permuted := New()
			for _, rec := range shuffled {
				permuted.Observe(rec)
			}

			return forward.Fingerprint() == permuted.Fingerprint()
		},
		gen.SliceOf(genRecord),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
