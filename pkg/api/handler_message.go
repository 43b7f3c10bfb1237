package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-transit/opsagent/pkg/session"
	"github.com/tarsy-transit/opsagent/pkg/state"
)

// messageHandler handles POST /agent/message (§6.1). When session_id
// names a wizard still in progress, its prior step state is reloaded
// from the session store onto the initial State before the graph runs
// (§4.9, §8.2 "wizard persistence"); whatever wizard-lifecycle outcome
// the run produces is then persisted before the response is written,
// since WizardEngine itself never touches the session store.
func (s *Server) messageHandler(c *echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return newAPIError(errInvalidRequest, "malformed request body")
	}
	if req.Text == "" || req.UserID == "" {
		return newAPIError(errInvalidRequest, "text and user_id are required")
	}

	ctx := c.Request().Context()

	in := state.New()
	in["text"] = req.Text
	in["user_id"] = req.UserID
	in["current_page"] = req.CurrentPage
	in["from_image"] = req.FromImage
	if req.SelectedEntityID != nil {
		in["selected_entity_id"] = *req.SelectedEntityID
	}

	var wizardSessionID uuid.UUID
	var hasWizardSession bool
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			return newAPIError(errInvalidRequest, "session_id is not a valid identifier")
		}
		sess, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return newAPIError(errSessionNotFound, "session not found")
		}
		if sess.Status != session.StatusPending || sess.PendingAction["wizard_type"] == nil {
			return newAPIError(errSessionNotPending, "session is not a pending wizard")
		}

		wizardSessionID = sessionID
		hasWizardSession = true
		pending := state.State(sess.PendingAction)
		in["wizard_active"] = true
		in["wizard_type"] = pending.GetString("wizard_type")
		if step, ok := pending.GetInt64("wizard_step"); ok {
			in["wizard_step"] = step
		}
		if data, ok := pending["wizard_data"].(map[string]any); ok {
			in["wizard_data"] = data
		}
		in["wizard_steps_total"] = pending["wizard_steps_total"]
	}

	out := s.graph.Run(ctx, in)
	finalOutput, _ := out["final_output"].(map[string]any)

	switch {
	case out.GetBool("wizard_completed"):
		if hasWizardSession {
			result, _ := out["execution_result"].(map[string]any)
			if _, err := s.sessions.CompleteWizard(ctx, wizardSessionID, result); err != nil {
				return newAPIError(errInternal, "failed to finalise wizard session")
			}
		}

	case out.GetBool("wizard_cancelled"):
		if hasWizardSession {
			if _, err := s.sessions.CancelWizard(ctx, wizardSessionID); err != nil {
				return newAPIError(errInternal, "failed to cancel wizard session")
			}
		}

	case out.GetBool("wizard_active"):
		pending := wizardPendingAction(out)
		if hasWizardSession {
			if _, err := s.sessions.SavePendingAction(ctx, wizardSessionID, pending); err != nil {
				return newAPIError(errInternal, "failed to persist wizard session")
			}
			if finalOutput != nil {
				finalOutput["session_id"] = wizardSessionID.String()
			}
		} else {
			sess, err := s.sessions.Create(ctx, req.UserID, pending)
			if err != nil {
				return newAPIError(errInternal, "failed to create wizard session")
			}
			if finalOutput != nil {
				finalOutput["session_id"] = sess.SessionID.String()
			}
		}
	}

	resp := &MessageResponse{AgentOutput: finalOutput}
	if sessionID, ok := finalOutput["session_id"].(string); ok {
		resp.SessionID = sessionID
	}
	return c.JSON(http.StatusOK, resp)
}

// wizardPendingAction extracts the wizard fields WizardEngine left on
// State into the shape the session store persists across turns (§4.9).
func wizardPendingAction(s state.State) map[string]any {
	pending := map[string]any{
		"wizard_type": s.GetString("wizard_type"),
		"wizard_data": s["wizard_data"],
	}
	if step, ok := s.GetInt64("wizard_step"); ok {
		pending["wizard_step"] = step
	}
	if total, ok := s["wizard_steps_total"]; ok {
		pending["wizard_steps_total"] = total
	}
	return pending
}
