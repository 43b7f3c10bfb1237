package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-transit/opsagent/pkg/session"
	"github.com/tarsy-transit/opsagent/pkg/state"
)

// confirmHandler handles POST /agent/confirm (§6.1, §4.11). It never
// re-enters the graph: confirm_gate already froze the verified action,
// ids, and parameters into the session row, so the executor node runs
// directly against that snapshot. A session no longer PENDING returns
// its already-settled outcome without touching the domain a second time
// (§8.1 idempotent confirmation). The PENDING -> CONFIRMED transition
// itself is the serialization point for two concurrent confirm requests
// (§5): Store.Confirm's conditional UPDATE lets only one of them proceed
// to Execute, so a double mutation is impossible regardless of request
// ordering.
func (s *Server) confirmHandler(c *echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return newAPIError(errInvalidRequest, "malformed request body")
	}
	if req.SessionID == "" || req.UserID == "" {
		return newAPIError(errInvalidRequest, "session_id and user_id are required")
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return newAPIError(errInvalidRequest, "session_id is not a valid identifier")
	}

	ctx := c.Request().Context()
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return newAPIError(errSessionNotFound, "session not found")
	}

	if out, apiErr, proceed := s.settleIfNotPending(ctx, sess); !proceed {
		if apiErr != nil {
			return apiErr
		}
		return c.JSON(http.StatusOK, &MessageResponse{AgentOutput: out})
	}

	action, _ := sess.PendingAction["action"].(string)

	if !req.Confirmed {
		if _, err := s.sessions.Cancel(ctx, sessionID, map[string]any{"confirmed": false}); err != nil {
			return newAPIError(errInternal, "failed to cancel session")
		}
		return c.JSON(http.StatusOK, &MessageResponse{AgentOutput: s.settledOutput(ctx, action, "cancelled", nil)})
	}

	confirmedSess, err := s.sessions.Confirm(ctx, sessionID)
	if errors.Is(err, session.ErrNotPending) {
		// Lost the race: another request already moved this session past
		// PENDING. Report its current state rather than executing a
		// second time.
		out, apiErr, _ := s.settleIfNotPending(ctx, confirmedSess)
		if apiErr != nil {
			return apiErr
		}
		return c.JSON(http.StatusOK, &MessageResponse{AgentOutput: out})
	}
	if err != nil {
		return newAPIError(errInternal, "failed to confirm session")
	}

	execState := stateFromPendingAction(confirmedSess.UserID, confirmedSess.PendingAction)
	execOut, err := s.deps.Execute(ctx, execState)
	if err != nil {
		return newAPIError(errInternal, "execution failed")
	}

	executionResult, _ := execOut["execution_result"].(map[string]any)
	if _, err := s.sessions.Complete(ctx, sessionID, executionResult); err != nil {
		return newAPIError(errInternal, "failed to complete session")
	}

	reported, _ := s.deps.ReportResult(ctx, execOut)
	finalOutput, _ := reported["final_output"].(map[string]any)
	return c.JSON(http.StatusOK, &MessageResponse{AgentOutput: finalOutput})
}

// settleIfNotPending reports whether sess is already settled (DONE,
// CANCELLED) or otherwise not actionable (CONFIRMED mid-flight, EXPIRED),
// in which case proceed is false and the caller must not act on it again.
// proceed is true only for a still-PENDING session.
func (s *Server) settleIfNotPending(ctx context.Context, sess *session.Session) (out map[string]any, apiErr error, proceed bool) {
	action, _ := sess.PendingAction["action"].(string)
	switch sess.Status {
	case session.StatusDone:
		return s.settledOutput(ctx, action, "executed", sess.ExecutionResult), nil, false
	case session.StatusCancelled:
		return s.settledOutput(ctx, action, "cancelled", nil), nil, false
	case session.StatusPending:
		return nil, nil, true
	default:
		return nil, newAPIError(errSessionNotPending, "session is not pending"), false
	}
}

// settledOutput rebuilds the agent_output shape for a session whose
// outcome a prior call already decided, reusing the executor's own
// terminal node rather than duplicating its message/status defaulting.
func (s *Server) settledOutput(ctx context.Context, action, status string, executionResult map[string]any) map[string]any {
	st := state.New()
	st["action"] = action
	st["status"] = status
	if executionResult != nil {
		st["execution_result"] = executionResult
	}
	reported, _ := s.deps.ReportResult(ctx, st)
	out, _ := reported["final_output"].(map[string]any)
	return out
}

// stateFromPendingAction rebuilds the minimal State the executor node
// needs from a session's frozen pending_action snapshot (§4.11).
func stateFromPendingAction(userID string, pending map[string]any) state.State {
	src := state.State(pending)
	out := state.New()
	out["user_id"] = userID
	out["action"] = src.GetString("action")
	if params, ok := src["parsed_params"].(map[string]any); ok {
		out["parsed_params"] = params
	}
	if tripID, ok := src.GetInt64("trip_id"); ok {
		out["trip_id"] = tripID
	}
	if pathID, ok := src.GetInt64("path_id"); ok {
		out["path_id"] = pathID
	}
	if routeID, ok := src.GetInt64("route_id"); ok {
		out["route_id"] = routeID
	}
	return out
}
