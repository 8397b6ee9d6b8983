package connstr

import (
	"sort"
	"strings"
)

// ConnectionString is an immutable libpq connection descriptor.
//
// The zero value is an empty connection string. Construct values with
// Parse or New; the parameter map is never exposed or mutated after
// construction.
type ConnectionString struct {
	params map[string]string
}

// keyPriority defines the serialization order of well-known parameters.
// Remaining parameters follow alphabetically. The order is part of the
// protocol surface: independently serialized equal connection strings
// must produce identical text.
var keyPriority = map[string]int{
	"host":     0,
	"port":     1,
	"dbname":   2,
	"user":     3,
	"password": 4,
}

// Parse parses libpq key=value connection string text.
//
// Values may be single-quoted to contain whitespace, with backslash
// escapes for quotes and backslashes inside the quoted region. Bare
// values honor the same backslash escapes. Parameters with empty values
// are dropped, matching libpq's treatment of unset parameters.
//
// Returns a *ParseError for an unterminated quote, a token lacking '=',
// or a missing parameter name.
func Parse(text string) (ConnectionString, error) {
	params := make(map[string]string)

	i, n := 0, len(text)
	for i < n {
		for i < n && isSpace(text[i]) {
			i++
		}
		if i >= n {
			break
		}

		start := i
		for i < n && text[i] != '=' && !isSpace(text[i]) {
			i++
		}
		key := text[start:i]

		// libpq permits whitespace around the separator.
		j := i
		for j < n && isSpace(text[j]) {
			j++
		}
		if j >= n || text[j] != '=' {
			return ConnectionString{}, &ParseError{Code: ErrCodeMissingSeparator, Token: key, Pos: start}
		}
		if key == "" {
			return ConnectionString{}, &ParseError{Code: ErrCodeEmptyKey, Pos: start}
		}
		i = j + 1
		for i < n && isSpace(text[i]) {
			i++
		}

		var value string
		if i < n && text[i] == '\'' {
			i++
			var b strings.Builder
			closed := false
			for i < n {
				switch {
				case text[i] == '\\' && i+1 < n:
					b.WriteByte(text[i+1])
					i += 2
				case text[i] == '\'':
					closed = true
					i++
				default:
					b.WriteByte(text[i])
					i++
				}
				if closed {
					break
				}
			}
			if !closed {
				return ConnectionString{}, &ParseError{Code: ErrCodeUnterminatedQuote, Token: key, Pos: start}
			}
			value = b.String()
		} else {
			vstart := i
			for i < n && !isSpace(text[i]) {
				i++
			}
			value = unescape(text[vstart:i])
		}

		if value != "" {
			params[key] = value
		}
	}

	return ConnectionString{params: params}, nil
}

// New builds a ConnectionString from a parameter map. The map is
// copied; parameters with empty values are dropped.
func New(params map[string]string) ConnectionString {
	p := make(map[string]string, len(params))
	for k, v := range params {
		if k != "" && v != "" {
			p[k] = v
		}
	}
	return ConnectionString{params: p}
}

// Get returns the value for a parameter, or "" when unset.
func (c ConnectionString) Get(key string) string {
	return c.params[key]
}

// Has reports whether a parameter is set.
func (c ConnectionString) Has(key string) bool {
	_, ok := c.params[key]
	return ok
}

// Host returns the host parameter, or "" when unset.
func (c ConnectionString) Host() string { return c.params["host"] }

// Port returns the port parameter, or "" when unset.
func (c ConnectionString) Port() string { return c.params["port"] }

// DBName returns the dbname parameter, or "" when unset.
func (c ConnectionString) DBName() string { return c.params["dbname"] }

// User returns the user parameter, or "" when unset.
func (c ConnectionString) User() string { return c.params["user"] }

// Password returns the password parameter, or "" when unset.
func (c ConnectionString) Password() string { return c.params["password"] }

// Len returns the number of parameters.
func (c ConnectionString) Len() int { return len(c.params) }

// IsZero reports whether no parameters are set.
func (c ConnectionString) IsZero() bool { return len(c.params) == 0 }

// Keys returns the parameter names in canonical serialization order:
// host, port, dbname, user, password, then remaining keys
// alphabetically.
func (c ConnectionString) Keys() []string {
	keys := make([]string, 0, len(c.params))
	for k := range c.params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, iok := keyPriority[keys[i]]
		pj, jok := keyPriority[keys[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok:
			return true
		case jok:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// String serializes the connection string in canonical libpq key=value
// form. Values containing whitespace or a quote character are
// single-quoted; backslashes and quotes are escaped.
func (c ConnectionString) String() string {
	parts := make([]string, 0, len(c.params))
	for _, k := range c.Keys() {
		parts = append(parts, k+"="+quoteValue(c.params[k]))
	}
	return strings.Join(parts, " ")
}

// Equal reports whether two connection strings have equal parameter
// mappings, independent of original textual order.
func (c ConnectionString) Equal(other ConnectionString) bool {
	if len(c.params) != len(other.params) {
		return false
	}
	for k, v := range c.params {
		if other.params[k] != v {
			return false
		}
	}
	return true
}

func quoteValue(v string) string {
	// Newlines are invalid in conninfo text.
	v = strings.ReplaceAll(v, "\n", " ")

	needsQuote := false
	for i := 0; i < len(v); i++ {
		if isSpace(v[i]) || v[i] == '\'' {
			needsQuote = true
			break
		}
	}

	var b strings.Builder
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteByte(v[i])
		}
	}
	if needsQuote {
		return "'" + b.String() + "'"
	}
	return b.String()
}

func unescape(v string) string {
	if !strings.ContainsRune(v, '\\') {
		return v
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			b.WriteByte(v[i+1])
			i++
			continue
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
