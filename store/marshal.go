package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/pgrel/relation"
)

// marshalSnapshot serializes a snapshot to JSON TEXT for storage.
// HTML escaping is disabled so stored connection strings stay readable
// under inspection with the sqlite3 shell.
func marshalSnapshot(snap *relation.Snapshot) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// unmarshalSnapshot parses a stored snapshot row back into memory.
func unmarshalSnapshot(data string) (*relation.Snapshot, error) {
	var snap relation.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
