package subnet

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the set as its sorted comma-separated text,
// matching the relation bus wire format.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a set from comma-separated CIDR text.
func (s *Set) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("unmarshal subnet set: %w", err)
	}
	parsed, err := Parse(text)
	if err != nil {
		return fmt.Errorf("unmarshal subnet set: %w", err)
	}
	*s = parsed
	return nil
}
