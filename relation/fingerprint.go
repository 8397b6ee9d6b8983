package relation

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint returns a stable content hash of the snapshot, computed
// over a canonical serialization: sorted object keys, NFC-normalized
// strings, no HTML escaping. Two snapshots with identical normalized
// content always hash identically, which lets the store skip rewrites
// when nothing changed.
func (s *Snapshot) Fingerprint() (string, error) {
	data, err := marshalCanonical(s.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("fingerprint snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (s *Snapshot) canonicalMap() map[string]any {
	m := map[string]any{
		"relation_id":   s.RelationID,
		"version":       s.Version.String(),
		"requested":     s.Requested.canonicalMap(),
		"client_egress": s.ClientEgress.String(),
	}
	if s.Response != nil {
		resp := map[string]any{
			"mirrored":        s.Response.Mirrored.canonicalMap(),
			"allowed_subnets": s.Response.AllowedSubnets.String(),
			"master":          s.Response.MasterRaw,
		}
		standbys := make([]any, len(s.Response.StandbysRaw))
		for i, raw := range s.Response.StandbysRaw {
			standbys[i] = raw
		}
		resp["standbys"] = standbys
		m["response"] = resp
	}
	return m
}

func (r RequestSpec) canonicalMap() map[string]any {
	extensions := make([]any, len(r.Extensions))
	for i, e := range r.Extensions {
		extensions[i] = e.String()
	}
	roles := make([]any, len(r.Roles))
	for i, role := range r.Roles {
		roles[i] = role
	}
	return map[string]any{
		"database":   r.Database,
		"extensions": extensions,
		"roles":      roles,
	}
}

// marshalCanonical produces deterministic JSON for hashing: object keys
// in sorted byte order, strings NFC normalized, HTML escaping disabled.
func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return marshalCanonicalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported canonical type %T", v)
	}
}

func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// Encoder appends a newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := marshalCanonical(item)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyData, err := marshalCanonicalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyData)
		buf.WriteByte(':')
		valData, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valData)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
