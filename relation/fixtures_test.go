package relation

// Shared test fixtures for the readiness and diff tests.

// readyBags is the canonical ready scenario: mirrored request, granted
// egress, published master, no standbys.
func readyBags(relID string) Bags {
	return Bags{
		RelationID: relID,
		ClientUnit: Bag{
			KeyEgressSubnets: "192.0.2.0/24",
		},
		ClientApp: Bag{
			KeyDatabase:   "foo",
			KeyExtensions: "citext",
			KeyRoles:      "",
		},
		ServerApp: Bag{
			KeyDatabase:       "foo",
			KeyExtensions:     "citext",
			KeyRoles:          "",
			KeyAllowedSubnets: "192.0.2.0/24,198.51.100.0/24",
			KeyMaster:         "dbname=foo user=u host=prod1 connect_timeout=3",
		},
	}
}

// mustSnapshot builds a snapshot from bags, panicking on protocol
// errors; for fixtures known to be well-formed.
func mustSnapshot(b Bags) *Snapshot {
	snap, err := BuildSnapshot(DetectVersion(b), b)
	if err != nil {
		panic(err)
	}
	return snap
}
