// Package state defines the per-request State container threaded through
// the graph runtime (pkg/graph) by every node.
package state

import "encoding/json"

// State is the request-scoped mapping threaded through the graph. Keys are
// documented per-node in pkg/nodes; the set is open-ended by design so
// nodes can add keys without a central schema change.
type State map[string]any

// New returns an empty State.
func New() State {
	return State{}
}

// Snapshot returns a shallow copy of s. Nested values (maps, slices) are
// shared by reference with the original — callers that need to extend a
// nested collection must build a new one and assign it under a fresh key
// rather than mutating the shared value in place.
func (s State) Snapshot() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the value for key and whether it was present.
func (s State) Get(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// GetString returns the string value for key, or "" if absent or not a string.
func (s State) GetString(key string) string {
	v, ok := s[key]
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// GetBool returns the bool value for key, or false if absent or not a bool.
func (s State) GetBool(key string) bool {
	v, ok := s[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// GetInt64 returns the int64 value for key, or (0, false) if absent or not
// convertible. Accepts int64 and int so nodes constructing State literals
// with plain int constants still round-trip correctly, and float64 and
// json.Number so ids survive a round trip through JSONB storage: every
// value pgx decodes out of a jsonb column, and every value
// state.Normalize produces before such an insert, comes back as float64
// (encoding/json semantics), never as int64.
func (s State) GetInt64(key string) (int64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// GetFloat64 returns the float64 value for key, or (0, false) if absent or
// not a float64.
func (s State) GetFloat64(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Set assigns key to value and returns s for chaining.
func (s State) Set(key string, value any) State {
	s[key] = value
	return s
}

// Clear removes key from s.
func (s State) Clear(key string) {
	delete(s, key)
}
