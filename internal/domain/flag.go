package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is a boolean that also accepts 0/1 and string forms, which the
// backend emits for is_active columns.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "on":
			*f = true
		case "", "0", "false", "no", "off":
			*f = false
		default:
			return fmt.Errorf("invalid flag value %q", s)
		}
		return nil
	}

	return fmt.Errorf("invalid flag value %s", string(data))
}
