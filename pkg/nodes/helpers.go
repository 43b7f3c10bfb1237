package nodes

import (
	"github.com/tarsy-transit/opsagent/pkg/state"
)

// getID reads key from s as an int64, tolerating the numeric shapes a
// caller or a prior node might have stored it as (int64, int, float64,
// *int64) — inputs arrive from JSON decoding (float64) while nodes
// construct State literals with plain int64 constants.
func getID(s state.State, key string) (int64, bool) {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	default:
		return 0, false
	}
}

// paramInt64 reads key from a parsed_params-shaped map as an int64.
func paramInt64(params map[string]any, key string) (int64, bool) {
	if params == nil {
		return 0, false
	}
	v, ok := params[key]
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
	default:
		return 0, false
	}
}

// paramString reads key from a parsed_params-shaped map as a string.
func paramString(params map[string]any, key string) (string, bool) {
	if params == nil {
		return "", false
	}
	v, ok := params[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// paramBool reads key from a parsed_params-shaped map as a bool.
func paramBool(params map[string]any, key string) bool {
	if params == nil {
		return false
	}
	b, _ := params[key].(bool)
	return b
}

// paramsOf extracts the parsed_params map from State, defaulting to empty.
func paramsOf(s state.State) map[string]any {
	v, _ := s.Get("parsed_params")
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}
