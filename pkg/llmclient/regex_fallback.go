package llmclient

import (
	"regexp"
	"strconv"
	"strings"
)

// regexFallbackConfidence is the fixed confidence emitted by the regex
// fallback parser (§4.3.1) — never clamped or adjusted, since the parser
// either matches a known phrase or it doesn't.
const regexFallbackConfidence = 0.8

// actionPatterns is the closed mapping from action name to keyword/phrase
// patterns the regex fallback checks, in order; the first action whose
// pattern set matches the normalised text wins.
var actionPatterns = []struct {
	action   string
	patterns []*regexp.Regexp
}{
	{"cancel_trip", compileAll(`\bcancel\b`, `\bcall off\b`)},
	{"remove_vehicle", compileAll(`\bremove (the )?vehicle\b`, `\bunassign (the )?vehicle\b`)},
	{"assign_vehicle", compileAll(`\bassign (a |the )?(vehicle|bus|cab)\b`, `\bput (a |the )?(bus|cab) on\b`)},
	{"assign_driver", compileAll(`\bassign (a |the )?driver\b`)},
	{"update_trip_time", compileAll(`\breschedule\b`, `\bchange (the )?time\b`, `\bmove (the )?trip\b`)},
	{"get_trip_status", compileAll(`\bstatus\b`, `\bwhat'?s (the )?(status|state)\b`)},
	{"get_bookings", compileAll(`\bbookings?\b`)},
	{"list_all_stops", compileAll(`\ball stops\b`, `\blist stops\b`)},
	{"list_all_paths", compileAll(`\ball paths\b`, `\blist paths\b`)},
	{"list_all_routes", compileAll(`\ball routes\b`, `\blist routes\b`)},
	{"get_unassigned_trips", compileAll(`\bunassigned trips?\b`, `\btrips? (without|missing) (a )?vehicle\b`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// tripIDPattern extracts a numeric entity id from phrases like "trip 42"
// or "#42" — the only parameters the regex fallback ever emits (§4.3.1:
// "Never emits parameters beyond ids").
var tripIDPattern = regexp.MustCompile(`(?:\btrip\s*#?|#)(\d+)`)

// RegexFallback parses text deterministically when both LLM providers are
// unavailable. It never calls out to anything and always returns
// promptly.
func RegexFallback(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, candidate := range actionPatterns {
		for _, pattern := range candidate.patterns {
			if pattern.MatchString(normalized) {
				intent := Intent{
					Action:     candidate.action,
					Confidence: regexFallbackConfidence,
					Parameters: map[string]any{},
				}
				if id, ok := extractTripID(normalized); ok {
					intent.TargetEntityID = &id
				}
				return intent
			}
		}
	}
	return unknownIntent()
}

func extractTripID(normalized string) (int64, bool) {
	match := tripIDPattern.FindStringSubmatch(normalized)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
