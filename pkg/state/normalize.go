package state

import (
	"fmt"
	"time"
)

// Normalize recursively converts v into a JSON-native representation:
// maps, slices, strings, bool, float64, and nil only (integer kinds and
// float32 become float64). time.Time and
// time.Duration — the two non-JSON-native types the graph commonly produces
// in pending_action snapshots and wizard_data — are converted to strings
// (RFC3339 and Go duration syntax respectively) rather than left as opaque
// struct values.
//
// This is the single most load-bearing function in the session store path:
// a pending_action containing an un-normalised time.Time fails the session
// insert and comes back with session_id == "" — the exact failure mode this
// function exists to prevent. Every write to the session store passes
// through Normalize first.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case time.Duration:
		return val.String()
	case State:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case string, bool, float64, int, int32, int64, float32:
		return normalizeNumber(val)
	case fmt.Stringer:
		return val.String()
	default:
		return normalizeSlice(v)
	}
}

func normalizeMap[M ~map[string]any](m M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

// normalizeNumber collapses the assorted numeric kinds the codebase hands
// around (int, int32, int64, float32) into the float64/string shape JSON
// actually has, so a round trip through encoding/json produces an
// identical structure.
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// normalizeSlice handles the slice types other than []any that asSlice
// knows ([]string, []map[string]any, []State) by converting them into a
// []any before recursing. Any other value, including other slice types
// such as []int, is returned unchanged — it is assumed to already be
// JSON-native or a caller-provided value that knows how to marshal itself.
func normalizeSlice(v any) any {
	rv, ok := asSlice(v)
	if !ok {
		return v
	}
	out := make([]any, len(rv))
	for i, item := range rv {
		out[i] = Normalize(item)
	}
	return out
}

// asSlice converts common concrete slice types to []any without reflection,
// covering the shapes actually produced elsewhere in this codebase
// (clarify_options, matches, options records).
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []State:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
