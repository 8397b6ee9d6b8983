// Package testutil provides shared relation fixtures for tests.
package testutil

import "github.com/roach88/pgrel/relation"

// ReadyBags returns v2 relation data that evaluates ready, with a
// mirrored request, a granted egress range and a published master.
func ReadyBags(relID string) relation.Bags {
	return relation.Bags{
		RelationID: relID,
		ClientUnit: relation.Bag{
			relation.KeyEgressSubnets: "192.0.2.0/24",
		},
		ClientApp: relation.Bag{
			relation.KeyDatabase:   "foo",
			relation.KeyExtensions: "citext",
		},
		ServerApp: relation.Bag{
			relation.KeyDatabase:       "foo",
			relation.KeyExtensions:     "citext",
			relation.KeyAllowedSubnets: "192.0.2.0/24,198.51.100.0/24",
			relation.KeyMaster:         "dbname=foo user=u host=prod1 connect_timeout=3",
		},
	}
}

// PendingBags returns relation data for a client that has published its
// request but received no response yet.
func PendingBags(relID string) relation.Bags {
	return relation.Bags{
		RelationID: relID,
		ClientUnit: relation.Bag{
			relation.KeyEgressSubnets: "192.0.2.0/24",
		},
		ClientApp: relation.Bag{
			relation.KeyDatabase: "foo",
		},
	}
}

// MustSnapshot classifies and normalizes bags, panicking on protocol
// errors; for fixtures known to be well-formed.
func MustSnapshot(b relation.Bags) *relation.Snapshot {
	snap, err := relation.BuildSnapshot(relation.DetectVersion(b), b)
	if err != nil {
		panic(err)
	}
	return snap
}
