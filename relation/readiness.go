package relation

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pgrel/connstr"
)

// Readiness is the verdict of evaluating one snapshot.
type Readiness struct {
	// Ready reports whether the base gates passed: a response exists,
	// the request is mirrored identically, and every egress range is
	// granted. Ready does not imply a primary is available - check
	// Master.
	Ready bool `json:"ready"`

	// Reason explains a not-ready verdict; empty when ready.
	Reason string `json:"reason,omitempty"`

	// Master is the primary's connection string, nil when not ready or
	// when no primary is currently available.
	Master *connstr.ConnectionString `json:"master,omitempty"`

	// Standbys are the replica connection strings, in published order.
	// Only populated when the base gates pass: standbys are meaningless
	// before the mirror and subnet checks hold.
	Standbys []connstr.ConnectionString `json:"standbys,omitempty"`
}

// Evaluate computes the readiness verdict for a snapshot and extracts
// the currently valid master and standby connection strings.
//
// Not-ready is a normal, expected, recurring state and never an error.
// The error return is reserved for protocol violations: a published
// connection string that fails to parse or lacks host/dbname.
func Evaluate(s *Snapshot) (Readiness, error) {
	if s == nil || s.Response == nil {
		slog.Debug("relation not ready: no server response",
			"relation", relationID(s))
		return Readiness{Reason: "no server response"}, nil
	}

	if key := s.Requested.mismatch(s.Response.Mirrored); key != "" {
		slog.Debug("relation not ready: request not yet mirrored",
			"relation", s.RelationID,
			"key", key)
		return Readiness{Reason: fmt.Sprintf("request not yet mirrored: %s", key)}, nil
	}

	// Egress ranges change between evaluations (re-peering, host
	// migration), so the grant is re-checked every time, never cached.
	if !s.ClientEgress.IsSubsetOf(s.Response.AllowedSubnets) {
		slog.Debug("relation not ready: egress not granted access",
			"relation", s.RelationID,
			"egress", s.ClientEgress.String(),
			"allowed", s.Response.AllowedSubnets.String())
		return Readiness{Reason: "egress subnets not granted access"}, nil
	}

	r := Readiness{Ready: true}

	if s.Response.MasterRaw != "" {
		master, err := parsePublished(s, KeyMaster, s.Response.MasterRaw)
		if err != nil {
			return Readiness{}, err
		}
		r.Master = &master
	}
	for _, raw := range s.Response.StandbysRaw {
		standby, err := parsePublished(s, KeyStandbys, raw)
		if err != nil {
			return Readiness{}, err
		}
		r.Standbys = append(r.Standbys, standby)
	}

	slog.Debug("relation ready",
		"relation", s.RelationID,
		"master", r.Master != nil,
		"standbys", len(r.Standbys))
	return r, nil
}

// parsePublished parses a server-published connection string and
// enforces the ready-string invariant that host and dbname are present.
func parsePublished(s *Snapshot, key, raw string) (connstr.ConnectionString, error) {
	c, err := connstr.Parse(raw)
	if err != nil {
		return connstr.ConnectionString{}, &ProtocolError{
			Code:       ErrCodeBadConnString,
			RelationID: s.RelationID,
			Key:        key,
			Err:        err,
		}
	}
	if c.Host() == "" || c.DBName() == "" {
		return connstr.ConnectionString{}, &ProtocolError{
			Code:       ErrCodeIncompleteConnString,
			RelationID: s.RelationID,
			Key:        key,
		}
	}
	return c, nil
}

func relationID(s *Snapshot) string {
	if s == nil {
		return ""
	}
	return s.RelationID
}
