package llmclient

import (
	"strings"
	"sync"
)

// registryMu guards the five package-level maps below against the one-time
// mutation ApplyOverrides performs during startup config loading.
var registryMu sync.RWMutex

// knownActions is the closed Action Registry (§4.3, step 4): every action
// name the core understands. Anything outside this set is normalised to
// "unknown" rather than trusted verbatim from the LLM or the regex parser.
var knownActions = map[string]bool{
	"get_trip_status":           true,
	"get_bookings":              true,
	"list_all_stops":            true,
	"list_all_paths":            true,
	"list_all_routes":           true,
	"get_unassigned_trips":      true,
	"assign_vehicle":            true,
	"assign_driver":             true,
	"add_vehicle":               true,
	"add_driver":                true,
	"remove_vehicle":            true,
	"cancel_trip":               true,
	"update_trip_time":          true,
	"create_stop":               true,
	"create_path":               true,
	"create_route":              true,
	"create_trip_from_scratch":  true,
	"create_route_from_scratch": true,
	"create_path_from_scratch":  true,
	"create_stop_from_scratch":  true,
	"wizard_step_input":         true,
	"unknown":                   true,
}

// synonyms maps common plurals, typos, and alternate phrasings onto a
// canonical action name (§4.3 step 4: "a fixed synonym and fuzzy-match
// table"). Keys are matched case-insensitively after trimming.
var synonyms = map[string]string{
	"get_trip_statuses":   "get_trip_status",
	"trip_status":         "get_trip_status",
	"status":              "get_trip_status",
	"get_booking":         "get_bookings",
	"bookings":            "get_bookings",
	"list_stops":          "list_all_stops",
	"list_stop":           "list_all_stops",
	"stops":               "list_all_stops",
	"list_paths":          "list_all_paths",
	"list_path":           "list_all_paths",
	"paths":               "list_all_paths",
	"list_routes":         "list_all_routes",
	"list_route":          "list_all_routes",
	"routes":              "list_all_routes",
	"unassigned_trips":    "get_unassigned_trips",
	"get_unassigned_trip": "get_unassigned_trips",
	"assign_a_vehicle":    "assign_vehicle",
	"assign_bus":          "assign_vehicle",
	"assign_cab":          "assign_vehicle",
	"set_vehicle":         "assign_vehicle",
	"assign_a_driver":     "assign_driver",
	"set_driver":          "assign_driver",
	"unassign_vehicle":    "remove_vehicle",
	"delete_vehicle":      "remove_vehicle",
	"remove_bus":          "remove_vehicle",
	"cancel":              "cancel_trip",
	"cancel_the_trip":     "cancel_trip",
	"reschedule_trip":     "update_trip_time",
	"change_time":         "update_trip_time",
	"update_time":         "update_trip_time",
	"new_stop":            "create_stop",
	"add_stop":            "create_stop",
	"new_path":            "create_path",
	"add_path":            "create_path",
	"new_route":           "create_route",
	"add_route":           "create_route",
	"new_trip":            "create_trip_from_scratch",
	"create_trip":         "create_trip_from_scratch",
	"add_trip":            "create_trip_from_scratch",
}

// ResolveAction canonicalises a candidate action name through the
// registry: exact match, then synonym table, else "unknown".
func ResolveAction(candidate string) string {
	norm := strings.ToLower(strings.TrimSpace(candidate))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")

	registryMu.RLock()
	defer registryMu.RUnlock()

	if knownActions[norm] {
		return norm
	}
	if canonical, ok := synonyms[norm]; ok {
		return canonical
	}
	return "unknown"
}

// safeActions is the closed safe set (§4.6): reads/listings, static
// creation, and driver assignment (no passenger impact of its own).
var safeActions = map[string]bool{
	"get_trip_status":      true,
	"get_bookings":         true,
	"list_all_stops":       true,
	"list_all_paths":       true,
	"list_all_routes":      true,
	"get_unassigned_trips": true,
	"create_stop":          true,
	"create_path":          true,
	"create_route":         true,
	"assign_driver":        true,
}

// IsSafeAction reports whether action belongs to the fixed safe set.
func IsSafeAction(action string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return safeActions[action]
}

// alwaysConfirmActions is the always-confirm set referenced by §4.7's
// confirmation policy regardless of booking counts.
var alwaysConfirmActions = map[string]bool{
	"cancel_trip":    true,
	"remove_vehicle": true,
}

// IsAlwaysConfirm reports whether action requires confirmation
// unconditionally.
func IsAlwaysConfirm(action string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return alwaysConfirmActions[action]
}

// noTargetActions (§4.5) never carry a trip id for the resolver to verify.
var noTargetActions = map[string]bool{
	"list_all_stops":            true,
	"list_all_paths":            true,
	"list_all_routes":           true,
	"get_unassigned_trips":      true,
	"create_stop":               true,
	"create_path":               true,
	"create_route":              true,
	"add_vehicle":               true,
	"add_driver":                true,
	"create_trip_from_scratch":  true,
	"create_route_from_scratch": true,
	"create_path_from_scratch":  true,
	"create_stop_from_scratch":  true,
}

// IsNoTargetAction reports whether action skips target resolution.
func IsNoTargetAction(action string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return noTargetActions[action]
}

// ActionOverride lets deployment-specific configuration adjust the registry
// for a single action name: widen/narrow the safe, always-confirm, or
// no-target sets, or add synonym phrasings, without recompiling the binary.
type ActionOverride struct {
	Name          string
	Safe          *bool
	AlwaysConfirm *bool
	NoTarget      *bool
	Synonyms      []string
}

// ApplyOverrides mutates the package-level action registry in place. Meant
// to be called once, during startup configuration loading, before any
// concurrent Parse/ResolveAction calls begin.
func ApplyOverrides(overrides []ActionOverride) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, o := range overrides {
		if o.Name == "" {
			continue
		}
		knownActions[o.Name] = true
		if o.Safe != nil {
			safeActions[o.Name] = *o.Safe
		}
		if o.AlwaysConfirm != nil {
			alwaysConfirmActions[o.Name] = *o.AlwaysConfirm
		}
		if o.NoTarget != nil {
			noTargetActions[o.Name] = *o.NoTarget
		}
		for _, syn := range o.Synonyms {
			norm := strings.ToLower(strings.TrimSpace(syn))
			norm = strings.ReplaceAll(norm, " ", "_")
			norm = strings.ReplaceAll(norm, "-", "_")
			if norm != "" {
				synonyms[norm] = o.Name
			}
		}
	}
}
