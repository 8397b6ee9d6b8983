package relation

import "github.com/roach88/pgrel/connstr"

// EventKind tags an Event variant. The original observer-callback
// design maps to this tagged enumeration: Diff returns an ordered event
// list and the caller switches on Kind to react.
type EventKind string

const (
	// EventRelationJoined fires the first time a relation is observed
	// with a non-indeterminate protocol version. Fires once.
	EventRelationJoined EventKind = "relation-joined"

	// EventMasterChanged fires when the evaluated master connection
	// string differs from the previous evaluation. A nil master is a
	// distinct value: primary appearing and primary going away are both
	// changes.
	EventMasterChanged EventKind = "master-changed"

	// EventStandbyChanged fires when the set of evaluated standby
	// connection strings differs from the previous evaluation.
	// Membership changes only; a reordering alone never fires.
	EventStandbyChanged EventKind = "standby-changed"

	// EventRelationDeparted fires when a relation present in the
	// previous state is absent from the current input batch.
	EventRelationDeparted EventKind = "relation-departed"
)

// Event is one discrete change derived by Diff.
type Event struct {
	// Kind tags the variant.
	Kind EventKind `json:"kind"`

	// RelationID identifies the affected relation.
	RelationID string `json:"relation_id"`

	// Master carries the new primary for master-changed events; nil
	// means the primary is gone or not ready.
	Master *connstr.ConnectionString `json:"master,omitempty"`

	// Standbys carries the new replica list for standby-changed events,
	// in published order.
	Standbys []connstr.ConnectionString `json:"standbys,omitempty"`
}
