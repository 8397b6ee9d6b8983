// Package relation implements the pgsql relation protocol
// reconciliation engine.
//
// Two independently deployed units - a database-requesting client and a
// database-serving server - negotiate PostgreSQL access over a shared,
// eventually-consistent key-value bus. Neither side opens a connection
// until readiness is provable from the shared state alone.
//
// The engine is invoked once per external signal and is a pure function
// of its inputs: it classifies the protocol version from the raw
// key-value bags (DetectVersion), normalizes both sides into a
// version-agnostic Snapshot (BuildSnapshot), evaluates readiness and
// extracts the valid connection strings (Evaluate), and diffs against
// the previously persisted snapshot to produce the ordered list of
// change events (Diff). It holds no state between invocations; the
// caller persists the returned snapshot and supplies it back next time.
//
// EVALUATION ORDER:
//
// Readiness gates are checked in fixed order:
//  1. A server response must exist at all.
//  2. The server must have mirrored the request back identically -
//     that is the protocol's acknowledgment that the request was
//     processed.
//  3. Every client egress range must appear verbatim in the granted
//     allowed-subnets. Egress ranges can change between evaluations,
//     so this is re-checked every time, never cached.
//
// Only then are the published master/standby connection strings parsed
// and surfaced. "Not ready" is a normal recurring state, never an
// error; a connection string or CIDR list that fails to parse is an
// error, because the data is server-published and broken data there is
// a bug, not a race.
package relation
