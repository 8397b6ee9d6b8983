package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_ReadyScenario(t *testing.T) {
	snap := mustSnapshot(readyBags("db:0"))

	r, err := Evaluate(snap)
	require.NoError(t, err)

	assert.True(t, r.Ready)
	assert.Empty(t, r.Reason)
	require.NotNil(t, r.Master)
	assert.Equal(t, "host=prod1 dbname=foo user=u connect_timeout=3", r.Master.String())
	assert.Empty(t, r.Standbys)
}

func TestEvaluate_NoResponse(t *testing.T) {
	b := Bags{
		RelationID: "db:1",
		ClientApp:  Bag{KeyDatabase: "foo"},
		ClientUnit: Bag{KeyEgressSubnets: "192.0.2.0/24"},
	}
	snap := mustSnapshot(b)

	r, err := Evaluate(snap)
	require.NoError(t, err)
	assert.False(t, r.Ready)
	assert.Equal(t, "no server response", r.Reason)
	assert.Nil(t, r.Master)
}

func TestEvaluate_NilSnapshot(t *testing.T) {
	r, err := Evaluate(nil)
	require.NoError(t, err)
	assert.False(t, r.Ready)
}

func TestEvaluate_MirrorMismatches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Bags)
	}{
		{"database only", func(b Bags) { b.ServerApp[KeyDatabase] = "other" }},
		{"extensions only", func(b Bags) { b.ServerApp[KeyExtensions] = "hstore" }},
		{"roles only", func(b Bags) { b.ServerApp[KeyRoles] = "admin" }},
		{"schema qualifier", func(b Bags) { b.ServerApp[KeyExtensions] = "citext:public" }},
		{"stale mirror after request change", func(b Bags) { b.ClientApp[KeyDatabase] = "renamed" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := readyBags("db:2")
			tt.mutate(b)

			r, err := Evaluate(mustSnapshot(b))
			require.NoError(t, err)
			assert.False(t, r.Ready, "mismatched mirror must not be ready")
			assert.Nil(t, r.Master, "no connection strings surface while not ready")
		})
	}
}

func TestEvaluate_MirrorOrderDoesNotMatter(t *testing.T) {
	b := readyBags("db:3")
	b.ClientApp[KeyExtensions] = "citext,hstore"
	b.ClientApp[KeyRoles] = "reader,writer"
	b.ServerApp[KeyExtensions] = "hstore,citext"
	b.ServerApp[KeyRoles] = "writer,reader"

	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	assert.True(t, r.Ready)
}

func TestEvaluate_EgressNotGranted(t *testing.T) {
	b := readyBags("db:4")
	b.ClientUnit[KeyEgressSubnets] = "203.0.113.0/24"

	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	assert.False(t, r.Ready)
	assert.Equal(t, "egress subnets not granted access", r.Reason)
	assert.Nil(t, r.Master, "master must not surface while the subnet gate fails")
}

func TestEvaluate_EmptyEgressIsGranted(t *testing.T) {
	// No egress ranges means nothing to grant; the gate passes.
	b := readyBags("db:5")
	b.ClientUnit[KeyEgressSubnets] = ""

	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	assert.True(t, r.Ready)
}

func TestEvaluate_ReadyWithoutMaster(t *testing.T) {
	// No primary is a valid state, not an error.
	b := readyBags("db:6")
	delete(b.ServerApp, KeyMaster)
	b.ServerApp[KeyStandbys] = "host=sb1 dbname=foo user=u"

	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	assert.True(t, r.Ready)
	assert.Nil(t, r.Master)
	require.Len(t, r.Standbys, 1)
	assert.Equal(t, "host=sb1 dbname=foo user=u", r.Standbys[0].String())
}

func TestEvaluate_StandbysKeepPublishedOrder(t *testing.T) {
	b := readyBags("db:7")
	b.ServerApp[KeyStandbys] = "host=sb2 dbname=foo\nhost=sb1 dbname=foo"

	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	require.Len(t, r.Standbys, 2)
	assert.Equal(t, "sb2", r.Standbys[0].Host())
	assert.Equal(t, "sb1", r.Standbys[1].Host())
}

func TestEvaluate_BadMasterEscalates(t *testing.T) {
	b := readyBags("db:8")
	b.ServerApp[KeyMaster] = "dbname='foo host=prod1"

	_, err := Evaluate(mustSnapshot(b))
	require.Error(t, err)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeBadConnString, pe.Code)
	assert.Equal(t, KeyMaster, pe.Key)
	assert.Equal(t, "db:8", pe.RelationID)
}

func TestEvaluate_IncompleteMasterEscalates(t *testing.T) {
	// Every ready connection string must carry host and dbname.
	b := readyBags("db:9")
	b.ServerApp[KeyMaster] = "user=u connect_timeout=3"

	_, err := Evaluate(mustSnapshot(b))
	require.Error(t, err)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeIncompleteConnString, pe.Code)
}

func TestEvaluate_BadStandbyEscalates(t *testing.T) {
	b := readyBags("db:10")
	b.ServerApp[KeyStandbys] = "host=sb1 dbname=foo\ngarbage-line"

	_, err := Evaluate(mustSnapshot(b))
	require.Error(t, err)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KeyStandbys, pe.Key)
}

func TestEvaluate_V0Legacy(t *testing.T) {
	b := Bags{
		RelationID: "db:11",
		ClientUnit: Bag{
			KeyDatabase:      "legacy",
			KeyEgressSubnets: "192.0.2.0/24",
		},
		ServerUnit: Bag{
			KeyLegacyHost:     "10.0.0.1",
			KeyDatabase:       "legacy",
			KeyLegacyUser:     "u",
			KeyLegacyPassword: "p",
		},
	}
	require.Equal(t, VersionV0, DetectVersion(b))

	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	assert.True(t, r.Ready)
	require.NotNil(t, r.Master)
	assert.Equal(t, "host=10.0.0.1 dbname=legacy user=u password=p", r.Master.String())
	assert.Empty(t, r.Standbys)
}

func TestEvaluate_V0DatabaseNotYetApplied(t *testing.T) {
	// Legacy server still publishing the old database name.
	b := Bags{
		RelationID: "db:12",
		ClientUnit: Bag{
			KeyDatabase:      "wanted",
			KeyEgressSubnets: "192.0.2.0/24",
		},
		ServerUnit: Bag{
			KeyLegacyHost: "10.0.0.1",
			KeyDatabase:   "stale",
		},
	}
	r, err := Evaluate(mustSnapshot(b))
	require.NoError(t, err)
	assert.False(t, r.Ready)
}
