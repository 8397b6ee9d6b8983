package relation

// Relation bus keys published by the client side.
const (
	// KeyDatabase is the requested database name.
	KeyDatabase = "database"

	// KeyExtensions is a comma-separated name[:schema] list of
	// PostgreSQL extensions to install in the database.
	KeyExtensions = "extensions"

	// KeyRoles is a comma-separated list of roles to grant the
	// application's database user.
	KeyRoles = "roles"

	// KeyEgressSubnets is the comma-separated CIDR list the client
	// unit's outbound traffic originates from. Maintained by the host,
	// not the charm.
	KeyEgressSubnets = "egress-subnets"
)

// Relation bus keys published by the server side.
const (
	// KeyAllowedSubnets is the comma-separated CIDR list the server has
	// granted access to.
	KeyAllowedSubnets = "allowed-subnets"

	// KeyMaster is a single libpq key=value connection string for the
	// primary, absent when no primary is available.
	KeyMaster = "master"

	// KeyStandbys is a newline-separated list of libpq key=value
	// connection strings for the read replicas.
	KeyStandbys = "standbys"
)

// Legacy keys published by pre-protocol servers as flat fields on the
// server unit bag.
const (
	KeyLegacyHost     = "db_host"
	KeyLegacyUser     = "user"
	KeyLegacyPassword = "password"
)

// Bag is one scope's raw key-value data for a relation. All values are
// strings; absent and empty are equivalent on the bus.
type Bag map[string]string

// Has reports whether any of the given keys carries a non-empty value.
func (b Bag) Has(keys ...string) bool {
	for _, k := range keys {
		if b[k] != "" {
			return true
		}
	}
	return false
}

// Bags collects the raw relation data the caller read from the bus for
// one relation, split by scope. Any bag may be nil when the caller had
// no access to that scope; in particular, a non-leader unit cannot read
// its own application data and supplies the peer-mirrored copy instead.
type Bags struct {
	// RelationID names the relation these bags belong to.
	RelationID string

	// ClientUnit is the local client unit's bag (egress-subnets, plus
	// deprecated mirrors of the request fields).
	ClientUnit Bag

	// ClientApp is the client application's bag: the authoritative
	// request, writable only by the leader unit.
	ClientApp Bag

	// ClientPeer is the peer-mirrored copy of the client application
	// request, readable by every unit.
	ClientPeer Bag

	// ServerApp is the server application's bag (protocol v2 response).
	ServerApp Bag

	// ServerUnit is a server unit's bag (protocol v1 response, or the
	// legacy v0 flat fields).
	ServerUnit Bag
}
