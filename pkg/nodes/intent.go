package nodes

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/state"
)

// structuredCmdPrefix is the sentinel UI buttons emit ahead of a
// pipe-delimited field list (§6.2).
const structuredCmdPrefix = "STRUCTURED_CMD:"

// contextualReferences are the phrases the context-shortcut path (§4.4
// step 3) looks for alongside a detectable action keyword.
var contextualReferences = []string{"this trip", " it ", " it.", " it?", " it,", "here"}

// ParseIntent is the intent parser node (C4). It dispatches into one of
// four paths, in priority order, and always leaves `action` set
// (possibly to "unknown") before routing onward.
func (d *Deps) ParseIntent(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	text := strings.TrimSpace(out.GetString("text"))

	// 1. Wizard continuation: bypass everything else and go straight to
	// the wizard engine (§4.4 step 1).
	if out.GetBool("wizard_active") {
		out["action"] = "wizard_step_input"
		out["source"] = "wizard"
		out["next_node"] = "wizard_engine"
		return out, nil
	}

	// 2. Structured command from a UI button (§4.4 step 2, §6.2).
	if strings.HasPrefix(text, structuredCmdPrefix) {
		parseStructuredCommand(out, text)
		out["next_node"] = "resolve_target"
		return out, nil
	}

	// 3. Context shortcut (§4.4 step 3): a contextual reference plus a
	// detectable action keyword, skipping the LLM entirely.
	if selectedID, ok := getID(out, "selected_entity_id"); ok {
		lower := " " + strings.ToLower(text) + " "
		hasReference := false
		for _, ref := range contextualReferences {
			if strings.Contains(lower, ref) {
				hasReference = true
				break
			}
		}
		if hasReference {
			if intent := llmclient.RegexFallback(text); intent.Action != "unknown" {
				out["action"] = intent.Action
				out["source"] = "context_shortcut"
				out["confidence"] = 0.95
				out["target_entity_id"] = selectedID
				out["parsed_params"] = map[string]any{}
				out["next_node"] = "resolve_target"
				return out, nil
			}
		}
	}

	// 4. LLM parse (§4.4 step 4).
	reqCtx := llmclient.Context{CurrentPage: out.GetString("current_page")}
	if selectedID, ok := getID(out, "selected_entity_id"); ok {
		reqCtx.SelectedEntityID = &selectedID
	}
	intent := d.LLM.Parse(ctx, text, reqCtx)
	out["action"] = intent.Action
	out["source"] = "llm"
	out["confidence"] = intent.Confidence
	out["parsed_params"] = intent.Parameters
	out["needs_clarification"] = intent.Clarify
	out["clarify_options"] = intent.ClarifyOptions
	if intent.TargetLabel != nil {
		out["target_label"] = *intent.TargetLabel
	}
	if intent.TargetTime != nil {
		out["target_time"] = *intent.TargetTime
	}
	if intent.TargetEntityID != nil {
		out["target_entity_id"] = *intent.TargetEntityID
	}
	// The UI's own selection is always more reliable than an
	// LLM-suggested id (§4.4 step 4).
	if selectedID, ok := getID(out, "selected_entity_id"); ok {
		out["target_entity_id"] = selectedID
	}
	out["next_node"] = "resolve_target"
	return out, nil
}

// structuredFieldPattern matches one "key:value" segment of a structured
// command.
var structuredFieldPattern = regexp.MustCompile(`^([a-zA-Z_]+):(.*)$`)

// numericStructuredKeys are the keys parsed as integers rather than
// strings (§6.2: trip_id, vehicle_id, driver_id).
var numericStructuredKeys = map[string]bool{"trip_id": true, "vehicle_id": true, "driver_id": true}

func parseStructuredCommand(out state.State, text string) {
	body := strings.TrimPrefix(text, structuredCmdPrefix)
	fields := strings.Split(body, "|")
	if len(fields) == 0 {
		out["action"] = "unknown"
		return
	}
	out["action"] = llmclient.ResolveAction(fields[0])
	out["source"] = "structured_command"
	out["confidence"] = 1.0

	params := map[string]any{}
	for _, f := range fields[1:] {
		m := structuredFieldPattern.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]
		if numericStructuredKeys[key] {
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				params[key] = n
				if key == "trip_id" {
					out["target_entity_id"] = n
				}
				continue
			}
		}
		params[key] = value
		if key == "context" && value == "selection_ui" {
			out["from_selection_ui"] = true
		}
	}
	out["parsed_params"] = params
}
