package connstr

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the connection string as its canonical
// key=value text, so persisted snapshots stay readable and equal
// connection strings serialize identically.
func (c ConnectionString) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses a connection string from its canonical key=value
// text.
func (c *ConnectionString) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("unmarshal connection string: %w", err)
	}
	parsed, err := Parse(text)
	if err != nil {
		return fmt.Errorf("unmarshal connection string: %w", err)
	}
	*c = parsed
	return nil
}
