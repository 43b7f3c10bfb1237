package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/tarsy-transit/opsagent/pkg/state"
	"github.com/tarsy-transit/opsagent/pkg/wizard"
)

// WizardEngine is the wizard engine node (C9). It operates in two modes:
// entry/advance (validate the prior step's answer, emit the next question
// or run Complete on the final step) and cancellation (a cancellation
// keyword clears wizard state without mutating anything). Wizard state
// (wizard_type, wizard_step, wizard_data, wizard_steps_total) lives on
// State for the caller to persist to the session store whenever the
// request ends with wizard_active = true (§4.9).
func (d *Deps) WizardEngine(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()

	// Fresh entry: the router sent a creation-wizard action (e.g.
	// "create_trip_from_scratch") rather than a continuation.
	if !out.GetBool("wizard_active") {
		wizardType := out.GetString("action")
		def := wizard.Lookup(wizardType)
		if def == nil || len(def.Steps) == 0 {
			out["error"] = "unknown_action"
			out["message"] = fmt.Sprintf("no wizard registered for %q", wizardType)
			out["next_node"] = "report_result"
			return out, nil
		}
		return d.emitStep(ctx, out, def, wizardType, 0, map[string]any{}), nil
	}

	wizardType := out.GetString("wizard_type")
	def := wizard.Lookup(wizardType)
	if def == nil {
		out["error"] = "unknown_action"
		out["message"] = fmt.Sprintf("no wizard registered for %q", wizardType)
		out["wizard_active"] = false
		out["next_node"] = "report_result"
		return out, nil
	}

	data, _ := out["wizard_data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	stepIdx, _ := out.GetInt64("wizard_step")

	answer := strings.TrimSpace(out.GetString("text"))
	if wizard.IsCancellation(strings.ToLower(answer)) {
		clearWizardState(out)
		out["wizard_cancelled"] = true
		out["status"] = "cancelled"
		out["message"] = "Wizard cancelled; no changes were made."
		out["next_node"] = "report_result"
		return out, nil
	}

	if int(stepIdx) >= len(def.Steps) {
		out["error"] = "internal_error"
		out["message"] = "wizard step index out of range"
		out["next_node"] = "report_result"
		return out, nil
	}

	step := def.Steps[stepIdx]
	value, err := step.Validate(answer, data)
	if err != nil {
		out["wizard_question"] = step.Question
		out["wizard_hint"] = step.Hint
		out["message"] = err.Error()
		out["next_node"] = "report_result"
		return out, nil
	}
	data[step.Field] = value

	nextIdx := int(stepIdx) + 1
	if nextIdx >= len(def.Steps) {
		result, err := def.Complete(ctx, d.Tools, data, out.GetString("user_id"))
		if err != nil {
			out["error"] = "internal_error"
			out["message"] = err.Error()
			out["next_node"] = "report_result"
			return out, nil
		}
		clearWizardState(out)
		out["wizard_completed"] = true
		out["status"] = "executed"
		out["execution_result"] = result
		out["exec_type"] = "object"
		out["exec_data"] = result
		out["next_node"] = "report_result"
		return out, nil
	}

	return d.emitStep(ctx, out, def, wizardType, nextIdx, data), nil
}

// emitStep advances wizard state to stepIdx and asks that step's question,
// fetching its option list when one is declared.
func (d *Deps) emitStep(ctx context.Context, out state.State, def *wizard.Definition, wizardType string, stepIdx int, data map[string]any) state.State {
	step := def.Steps[stepIdx]
	out["wizard_active"] = true
	out["wizard_type"] = wizardType
	out["wizard_step"] = int64(stepIdx)
	out["wizard_steps_total"] = len(def.Steps)
	out["wizard_data"] = data
	out["wizard_question"] = step.Question
	out["wizard_hint"] = step.Hint
	if step.Options != nil {
		if opts, err := step.Options(ctx, d.Tools, data); err == nil {
			out["options"] = opts
		}
	}
	out["next_node"] = "report_result"
	return out
}

func clearWizardState(out state.State) {
	out["wizard_active"] = false
	out.Clear("wizard_type")
	out.Clear("wizard_step")
	out.Clear("wizard_data")
	out.Clear("wizard_steps_total")
	out.Clear("wizard_question")
	out.Clear("wizard_hint")
	out.Clear("options")
}
