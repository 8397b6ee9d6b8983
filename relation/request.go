package relation

import "strings"

// Extension names a PostgreSQL extension to install, with an optional
// target schema. The bus format is name or name:schema.
//
// An omitted schema and an explicit default schema are distinct: the
// server must mirror back exactly what was requested, so "citext" and
// "citext:public" do not match even when public is the server default.
type Extension struct {
	Name   string `json:"name"`
	Schema string `json:"schema,omitempty"`
}

// String returns the bus form of the extension entry.
func (e Extension) String() string {
	if e.Schema != "" {
		return e.Name + ":" + e.Schema
	}
	return e.Name
}

// RequestSpec is what a client has asked the server for. The server
// acknowledges a request by mirroring it back verbatim; equality over
// RequestSpec is the protocol's "has the server processed my request"
// check.
type RequestSpec struct {
	// Database is the requested database name.
	Database string `json:"database,omitempty"`

	// Extensions lists the requested extensions, in published order.
	Extensions []Extension `json:"extensions,omitempty"`

	// Roles lists the requested roles, in published order.
	Roles []string `json:"roles,omitempty"`
}

// parseRequest normalizes the request fields of a client bag.
func parseRequest(b Bag) RequestSpec {
	return RequestSpec{
		Database:   strings.TrimSpace(b[KeyDatabase]),
		Extensions: parseExtensions(b[KeyExtensions]),
		Roles:      splitCommas(b[KeyRoles]),
	}
}

// parseExtensions parses the comma-separated name[:schema] bus format.
func parseExtensions(s string) []Extension {
	var out []Extension
	for _, entry := range splitCommas(s) {
		name, schema, _ := strings.Cut(entry, ":")
		out = append(out, Extension{
			Name:   strings.TrimSpace(name),
			Schema: strings.TrimSpace(schema),
		})
	}
	return out
}

// Equal reports whether two request specs match field by field:
// database name exactly, extensions and roles as sets ignoring order.
// Schema qualifiers must match per extension entry.
func (r RequestSpec) Equal(other RequestSpec) bool {
	return r.Database == other.Database &&
		extensionSetsEqual(r.Extensions, other.Extensions) &&
		stringSetsEqual(r.Roles, other.Roles)
}

// mismatch returns the bus key of the first non-matching request field,
// or "" when the specs match. Used for readiness diagnostics.
func (r RequestSpec) mismatch(other RequestSpec) string {
	switch {
	case r.Database != other.Database:
		return KeyDatabase
	case !extensionSetsEqual(r.Extensions, other.Extensions):
		return KeyExtensions
	case !stringSetsEqual(r.Roles, other.Roles):
		return KeyRoles
	default:
		return ""
	}
}

func extensionSetsEqual(a, b []Extension) bool {
	set := make(map[Extension]struct{}, len(a))
	for _, e := range a {
		set[e] = struct{}{}
	}
	other := make(map[Extension]struct{}, len(b))
	for _, e := range b {
		other[e] = struct{}{}
	}
	if len(set) != len(other) {
		return false
	}
	for e := range set {
		if _, ok := other[e]; !ok {
			return false
		}
	}
	return true
}

func stringSetsEqual(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, s := range b {
		other[s] = struct{}{}
	}
	if len(set) != len(other) {
		return false
	}
	for s := range set {
		if _, ok := other[s]; !ok {
			return false
		}
	}
	return true
}

// splitCommas splits comma-separated bus text, trimming whitespace and
// dropping empty entries.
func splitCommas(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
