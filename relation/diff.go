package relation

import (
	"log/slog"

	"github.com/roach88/pgrel/connstr"
)

// Diff compares two consecutive snapshots of the same relation and
// derives the ordered list of change events to deliver. A nil previous
// snapshot means the relation has never been observed; a nil current
// snapshot means the relation is absent from the current input batch,
// i.e. departed.
//
// Diffing compares evaluated values, not raw response text, so a purely
// cosmetic re-serialization of an identical connection string never
// produces a spurious event. Diff is a pure function: re-running it
// with identical inputs yields an identical, order-stable event list.
//
// Event order is fixed: relation-joined, master-changed,
// standby-changed, relation-departed.
func Diff(previous, current *Snapshot) ([]Event, error) {
	if previous == nil && current == nil {
		return nil, nil
	}
	if current == nil {
		return departed(previous)
	}

	prevR, err := Evaluate(previous)
	if err != nil {
		return nil, err
	}
	curR, err := Evaluate(current)
	if err != nil {
		return nil, err
	}

	var events []Event

	// Joined fires once: on the first non-indeterminate observation.
	if current.Version != VersionIndeterminate &&
		(previous == nil || previous.Version == VersionIndeterminate) {
		events = append(events, Event{Kind: EventRelationJoined, RelationID: current.RelationID})
	}

	if !masterEqual(prevR.Master, curR.Master) {
		events = append(events, Event{
			Kind:       EventMasterChanged,
			RelationID: current.RelationID,
			Master:     curR.Master,
		})
	}

	if !standbySetEqual(prevR.Standbys, curR.Standbys) {
		events = append(events, Event{
			Kind:       EventStandbyChanged,
			RelationID: current.RelationID,
			Standbys:   curR.Standbys,
		})
	}

	if len(events) > 0 {
		slog.Debug("relation changed",
			"relation", current.RelationID,
			"events", len(events))
	}
	return events, nil
}

// departed derives the final events for a relation that is gone. The
// caller learns that previously valid connection strings are no longer
// usable (master/standby change back to nothing) before the departure
// itself.
func departed(previous *Snapshot) ([]Event, error) {
	prevR, err := Evaluate(previous)
	if err != nil {
		return nil, err
	}

	var events []Event
	if prevR.Master != nil {
		events = append(events, Event{Kind: EventMasterChanged, RelationID: previous.RelationID})
	}
	if len(prevR.Standbys) > 0 {
		events = append(events, Event{Kind: EventStandbyChanged, RelationID: previous.RelationID})
	}
	events = append(events, Event{Kind: EventRelationDeparted, RelationID: previous.RelationID})

	slog.Debug("relation departed", "relation", previous.RelationID)
	return events, nil
}

func masterEqual(a, b *connstr.ConnectionString) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// standbySetEqual compares standby lists as sets of canonical
// connection strings: membership changes matter, order does not.
func standbySetEqual(a, b []connstr.ConnectionString) bool {
	as := make(map[string]struct{}, len(a))
	for _, c := range a {
		as[c.String()] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, c := range b {
		bs[c.String()] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if _, ok := bs[s]; !ok {
			return false
		}
	}
	return true
}
