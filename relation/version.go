package relation

import (
	"encoding/json"
	"fmt"
)

// Version identifies a protocol generation. The version is inferred
// from the shape of the relation data on every evaluation, never pinned
// once, because legacy servers and new clients coexist during migration
// windows.
type Version int

const (
	// VersionIndeterminate means no server response has arrived yet.
	// Not an error; the relation is simply not ready.
	VersionIndeterminate Version = iota

	// VersionV0 is the legacy protocol: flat db_host/database/user/
	// password fields on the server unit bag, no mirroring, no subnet
	// grants.
	VersionV0

	// VersionV1 is the unit-scoped protocol: the server responds on its
	// unit bag and the client request is mirrored through peer data.
	VersionV1

	// VersionV2 is the application-scoped protocol: the server leader
	// responds on the server application bag.
	VersionV2
)

// responseKeys are the server bag keys whose presence marks a protocol
// response.
var responseKeys = []string{KeyMaster, KeyStandbys, KeyAllowedSubnets}

// requestKeys are the client bag keys that carry the request.
var requestKeys = []string{KeyDatabase, KeyExtensions, KeyRoles}

// String returns the conventional short name of the version.
func (v Version) String() string {
	switch v {
	case VersionV0:
		return "v0"
	case VersionV1:
		return "v1"
	case VersionV2:
		return "v2"
	default:
		return "indeterminate"
	}
}

// MarshalJSON serializes the version as its short name.
func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON parses a version from its short name.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal version: %w", err)
	}
	switch s {
	case "v0":
		*v = VersionV0
	case "v1":
		*v = VersionV1
	case "v2":
		*v = VersionV2
	case "indeterminate":
		*v = VersionIndeterminate
	default:
		return fmt.Errorf("unmarshal version: unknown version %q", s)
	}
	return nil
}

// DetectVersion classifies the raw relation data into a protocol
// generation. Decision order, first match wins:
//
//  1. Server application bag carries a response -> v2.
//  2. Server unit bag carries a response and the client peer bag
//     carries request mirrors -> v1.
//  3. Server unit bag carries the legacy flat fields -> v0.
//  4. Otherwise indeterminate: no response yet, not ready, not an
//     error.
func DetectVersion(b Bags) Version {
	if b.ServerApp.Has(responseKeys...) {
		return VersionV2
	}
	if b.ServerUnit.Has(responseKeys...) && b.ClientPeer.Has(requestKeys...) {
		return VersionV1
	}
	if b.ServerUnit.Has(KeyLegacyHost) && b.ServerUnit.Has(KeyDatabase) {
		return VersionV0
	}
	return VersionIndeterminate
}
