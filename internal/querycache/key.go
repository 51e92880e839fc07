package querycache

import (
	"encoding/json"
	"strings"
)

// Key identifies a cached query as an ordered list of parts.
type Key []string

// String returns the canonical form used as the map key.
func (k Key) String() string {
	b, err := json.Marshal([]string(k))
	if err != nil {
		return strings.Join(k, "\x00")
	}
	return string(b)
}

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		if k[i] != part {
			return false
		}
	}
	return true
}
