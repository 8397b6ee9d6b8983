package relation

import (
	"strings"

	"github.com/roach88/pgrel/connstr"
	"github.com/roach88/pgrel/subnet"
)

// ServerResponse is the normalized server side of a relation at a point
// in time.
//
// An absent master and an empty standby list are both valid, non-error
// states: the primary or the replicas are simply not available right
// now. Connection strings are kept in their raw published text and
// parsed during evaluation, where a failure escalates as a
// ProtocolError.
type ServerResponse struct {
	// Mirrored is the server's echo of the client request. The request
	// counts as processed only when this matches Requested exactly.
	Mirrored RequestSpec `json:"mirrored"`

	// AllowedSubnets are the egress ranges the server has granted
	// access to.
	AllowedSubnets subnet.Set `json:"allowed_subnets"`

	// MasterRaw is the published primary connection string, "" when no
	// primary is available.
	MasterRaw string `json:"master,omitempty"`

	// StandbysRaw are the published replica connection strings, in
	// published order.
	StandbysRaw []string `json:"standbys,omitempty"`
}

// Snapshot is the normalized, versioned view of one relation's client
// request and server response at a point in time.
//
// Snapshots are built fresh from raw bus data on every evaluation and
// never mutated; a new snapshot replaces the old one, and the old one
// becomes the persisted "previous" value for the next diff. The engine
// does not own persistence - the caller stores the snapshot across
// invocations because the hosting process may not survive between
// signals.
type Snapshot struct {
	// RelationID names the relation.
	RelationID string `json:"relation_id"`

	// Version is the protocol generation the data was classified as.
	Version Version `json:"version"`

	// Requested is the client's current request.
	Requested RequestSpec `json:"requested"`

	// ClientEgress are the local unit's current egress ranges.
	ClientEgress subnet.Set `json:"client_egress"`

	// Response is the normalized server response, nil when the server
	// has not answered yet.
	Response *ServerResponse `json:"response,omitempty"`
}

// BuildSnapshot normalizes raw relation bags into a Snapshot for the
// given protocol version. One normalization path per version feeds the
// shared readiness and diff logic, which stay version-agnostic.
//
// Returns a ProtocolError when a published CIDR list is malformed.
func BuildSnapshot(v Version, b Bags) (*Snapshot, error) {
	egress, err := subnet.Parse(b.ClientUnit[KeyEgressSubnets])
	if err != nil {
		return nil, &ProtocolError{
			Code:       ErrCodeBadSubnets,
			RelationID: b.RelationID,
			Key:        KeyEgressSubnets,
			Err:        err,
		}
	}

	snap := &Snapshot{
		RelationID:   b.RelationID,
		Version:      v,
		Requested:    parseRequest(requestBag(b)),
		ClientEgress: egress,
	}

	switch v {
	case VersionV2:
		snap.Response, err = normalizeResponse(b, b.ServerApp)
	case VersionV1:
		snap.Response, err = normalizeResponse(b, b.ServerUnit)
	case VersionV0:
		snap.Response = normalizeLegacy(b, egress)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// requestBag selects the authoritative copy of the client request. The
// application bag wins when readable; non-leader units supply the
// peer-mirrored copy instead; the unit bag's deprecated mirror is the
// last resort for data written by old clients.
func requestBag(b Bags) Bag {
	if b.ClientApp.Has(requestKeys...) {
		return b.ClientApp
	}
	if b.ClientPeer.Has(requestKeys...) {
		return b.ClientPeer
	}
	return b.ClientUnit
}

// normalizeResponse builds the ServerResponse from the server bag of a
// mirroring protocol generation (v1 or v2).
func normalizeResponse(b Bags, server Bag) (*ServerResponse, error) {
	allowed, err := subnet.Parse(server[KeyAllowedSubnets])
	if err != nil {
		return nil, &ProtocolError{
			Code:       ErrCodeBadSubnets,
			RelationID: b.RelationID,
			Key:        KeyAllowedSubnets,
			Err:        err,
		}
	}
	return &ServerResponse{
		Mirrored:       parseRequest(server),
		AllowedSubnets: allowed,
		MasterRaw:      strings.TrimSpace(server[KeyMaster]),
		StandbysRaw:    splitLines(server[KeyStandbys]),
	}, nil
}

// normalizeLegacy synthesizes a ServerResponse from the v0 flat fields.
// The legacy protocol has no mirroring and no subnet grants: the
// server's published database doubles as the mirror of the database
// request, and publication itself implies access, expressed here by
// granting exactly the client's current egress so the shared subnet
// gate passes.
func normalizeLegacy(b Bags, egress subnet.Set) *ServerResponse {
	legacy := b.ServerUnit
	master := connstr.New(map[string]string{
		"host":     legacy[KeyLegacyHost],
		"dbname":   legacy[KeyDatabase],
		"user":     legacy[KeyLegacyUser],
		"password": legacy[KeyLegacyPassword],
	})
	return &ServerResponse{
		Mirrored:       parseRequest(legacy),
		AllowedSubnets: egress,
		MasterRaw:      master.String(),
	}
}

// splitLines splits newline-separated bus text, trimming whitespace and
// dropping empty lines.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
