package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVersion_V2(t *testing.T) {
	b := Bags{
		ServerApp: Bag{KeyMaster: "host=h dbname=d"},
	}
	assert.Equal(t, VersionV2, DetectVersion(b))
}

func TestDetectVersion_V2_AllowedSubnetsOnly(t *testing.T) {
	// A grant without a master is still a v2 response.
	b := Bags{
		ServerApp: Bag{KeyAllowedSubnets: "192.0.2.0/24"},
	}
	assert.Equal(t, VersionV2, DetectVersion(b))
}

func TestDetectVersion_V2_WinsOverUnitResponse(t *testing.T) {
	b := Bags{
		ServerApp:  Bag{KeyMaster: "host=h dbname=d"},
		ServerUnit: Bag{KeyMaster: "host=old dbname=d"},
		ClientPeer: Bag{KeyDatabase: "d"},
	}
	assert.Equal(t, VersionV2, DetectVersion(b))
}

func TestDetectVersion_V1(t *testing.T) {
	b := Bags{
		ServerUnit: Bag{KeyStandbys: "host=h dbname=d"},
		ClientPeer: Bag{KeyDatabase: "d"},
	}
	assert.Equal(t, VersionV1, DetectVersion(b))
}

func TestDetectVersion_V1_RequiresPeerMirror(t *testing.T) {
	// A unit-scoped response with no peer request mirror cannot be
	// validated, so it is not classified as v1.
	b := Bags{
		ServerUnit: Bag{KeyMaster: "host=h dbname=d"},
	}
	assert.Equal(t, VersionIndeterminate, DetectVersion(b))
}

func TestDetectVersion_V0(t *testing.T) {
	b := Bags{
		ServerUnit: Bag{
			KeyLegacyHost:     "10.0.0.1",
			KeyDatabase:       "legacy",
			KeyLegacyUser:     "u",
			KeyLegacyPassword: "p",
		},
	}
	assert.Equal(t, VersionV0, DetectVersion(b))
}

func TestDetectVersion_Indeterminate(t *testing.T) {
	// Request published, no response yet.
	b := Bags{
		ClientApp:  Bag{KeyDatabase: "foo"},
		ClientUnit: Bag{KeyEgressSubnets: "192.0.2.0/24"},
	}
	assert.Equal(t, VersionIndeterminate, DetectVersion(b))

	assert.Equal(t, VersionIndeterminate, DetectVersion(Bags{}))
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "v0", VersionV0.String())
	assert.Equal(t, "v1", VersionV1.String())
	assert.Equal(t, "v2", VersionV2.String())
	assert.Equal(t, "indeterminate", VersionIndeterminate.String())
}

func TestVersion_JSONRoundTrip(t *testing.T) {
	for _, v := range []Version{VersionIndeterminate, VersionV0, VersionV1, VersionV2} {
		data, err := v.MarshalJSON()
		require.NoError(t, err)

		var decoded Version
		require.NoError(t, decoded.UnmarshalJSON(data))
		assert.Equal(t, v, decoded)
	}
}
