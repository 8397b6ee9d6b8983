// Package subnet implements the CIDR set used for access-grant checks.
//
// The server side of the relation publishes the exact egress ranges it
// has granted access to. The client checks that every one of its own
// egress ranges appears verbatim in the granted set; no CIDR
// containment arithmetic is performed, because a grant for a covering
// range says nothing about whether the server was told about this
// particular range.
package subnet

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"
)

// Set is a set of CIDR ranges. The zero value is an empty set. Entries
// are normalized (masked, canonical text form) so that
// textually-different spellings of the same range compare equal.
type Set struct {
	prefixes map[netip.Prefix]struct{}
}

// ParseError represents a malformed CIDR entry.
type ParseError struct {
	// Entry is the offending comma-separated entry.
	Entry string

	// Err is the underlying netip parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid CIDR entry %q: %v", e.Entry, e.Err)
	}
	return fmt.Sprintf("invalid CIDR entry %q", e.Entry)
}

// Unwrap returns the underlying parse error.
func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError returns true if the error is a CIDR parse error.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Parse parses a comma-separated CIDR list, e.g. the relation bus
// values of egress-subnets and allowed-subnets.
//
// Whitespace around entries is trimmed. An empty or whitespace-only
// input yields an empty set, because an absent grant is a normal state;
// an empty entry between commas or a malformed CIDR returns a
// *ParseError.
func Parse(text string) (Set, error) {
	if strings.TrimSpace(text) == "" {
		return Set{}, nil
	}

	prefixes := make(map[netip.Prefix]struct{})
	for _, entry := range strings.Split(text, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return Set{}, &ParseError{Entry: entry}
		}
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return Set{}, &ParseError{Entry: entry, Err: err}
		}
		prefixes[prefix.Masked()] = struct{}{}
	}
	return Set{prefixes: prefixes}, nil
}

// MustParse parses a comma-separated CIDR list and panics on error.
// For tests and fixtures.
func MustParse(text string) Set {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of distinct ranges in the set.
func (s Set) Len() int { return len(s.prefixes) }

// IsEmpty reports whether the set has no ranges.
func (s Set) IsEmpty() bool { return len(s.prefixes) == 0 }

// Contains reports whether the exact range is present in the set.
func (s Set) Contains(prefix netip.Prefix) bool {
	_, ok := s.prefixes[prefix.Masked()]
	return ok
}

// IsSubsetOf reports whether every range in s appears verbatim in
// other. The empty set is a subset of everything.
func (s Set) IsSubsetOf(other Set) bool {
	for p := range s.prefixes {
		if _, ok := other.prefixes[p]; !ok {
			return false
		}
	}
	return true
}

// Union returns a new set containing the ranges of both sets.
func (s Set) Union(other Set) Set {
	prefixes := make(map[netip.Prefix]struct{}, len(s.prefixes)+len(other.prefixes))
	for p := range s.prefixes {
		prefixes[p] = struct{}{}
	}
	for p := range other.prefixes {
		prefixes[p] = struct{}{}
	}
	return Set{prefixes: prefixes}
}

// Equal reports whether both sets contain exactly the same ranges.
func (s Set) Equal(other Set) bool {
	return len(s.prefixes) == len(other.prefixes) && s.IsSubsetOf(other)
}

// Strings returns the normalized CIDR entries in sorted order.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s.prefixes))
	for p := range s.prefixes {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}

// String serializes the set as a sorted comma-separated CIDR list, the
// same format the relation bus carries.
func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}
