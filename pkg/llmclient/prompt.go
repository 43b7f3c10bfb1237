package llmclient

import (
	"fmt"
	"sort"
	"strings"
)

// systemPromptTemplate lists the closed Action Registry, confidence
// guidelines, context rules, and a small set of exemplars (§4.3 step 1).
const systemPromptTemplate = `You are a transport-operations intent classifier. Given operator text, emit exactly one JSON object with these fields:

  action            one of: %s
  target_label      string or null — a trip name/label mentioned in the text
  target_entity_id  integer or null — a numeric trip id mentioned in the text
  target_time       string or null — an HH:MM time mentioned in the text
  parameters        object — any other structured values mentioned
  confidence        number 0.0-1.0 — how sure you are action is correct
  clarify           boolean — true if the text is genuinely ambiguous
  clarify_options   array of strings — candidate interpretations, only if clarify is true
  explanation       short string — one sentence, for logging only

Context rules:
  - selected_entity_id, if present, refers to a trip already selected in the UI; prefer it over any id you infer from text.
  - current_page constrains which actions make sense; do not invent actions outside the registry.
  - Low confidence (below 0.5) is expected and fine for vague text — do not inflate it.

Examples:
  "cancel trip 42" -> {"action": "cancel_trip", "target_entity_id": 42, "confidence": 0.95, "clarify": false, "clarify_options": [], "parameters": {}, "explanation": "explicit cancel with numeric id"}
  "what's its status" -> {"action": "get_trip_status", "target_entity_id": null, "confidence": 0.6, "clarify": false, "clarify_options": [], "parameters": {}, "explanation": "contextual reference, relies on selected_entity_id"}

Respond with the JSON object only, no surrounding prose.`

func buildSystemPrompt() string {
	actions := make([]string, 0, len(knownActions))
	for a := range knownActions {
		if a == "unknown" {
			continue
		}
		actions = append(actions, a)
	}
	sort.Strings(actions)
	return fmt.Sprintf(systemPromptTemplate, strings.Join(actions, ", "))
}

func buildUserPrompt(text string, ctx Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "current_page: %s\n", ctx.CurrentPage)
	if ctx.SelectedEntityID != nil {
		fmt.Fprintf(&b, "selected_entity_id: %d\n", *ctx.SelectedEntityID)
	}
	if len(ctx.RecentHistory) > 0 {
		b.WriteString("recent_history:\n")
		for _, line := range ctx.RecentHistory {
			fmt.Fprintf(&b, "  - %s\n", line)
		}
	}
	fmt.Fprintf(&b, "text: %s\n", text)
	return b.String()
}
