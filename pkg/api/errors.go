package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// Error kinds mirror the domain's own taxonomy (§7), not a generic HTTP
// vocabulary — a client inspecting the body sees the same kind name the
// core's internal error handling design uses.
const (
	errUnauthorised        = "unauthorised"
	errInvalidRequest      = "invalid_request"
	errUnknownAction       = "unknown_action"
	errAmbiguousTarget     = "ambiguous_target"
	errTargetNotFound      = "target_not_found"
	errTripCancelled       = "trip_cancelled"
	errTripPast            = "trip_past"
	errAlreadyDeployed     = "already_deployed"
	errVehicleUnavailable  = "vehicle_unavailable"
	errDriverUnavailable   = "driver_unavailable"
	errNoDeployment        = "no_deployment"
	errPageContextMismatch = "page_context_mismatch"
	errSessionNotFound     = "session_not_found"
	errSessionNotPending   = "session_not_pending"
	errLLMUnavailable      = "llm_unavailable"
	errInternal            = "internal_error"
)

// errorStatusCodes maps every kind the API layer itself raises directly
// to an HTTP status. Kinds the graph produces inside a 200 agent_output
// envelope (target_not_found, trip_cancelled, already_deployed, ...)
// never reach this map — only the handful the transport boundary itself
// decides before or around a graph run do.
var errorStatusCodes = map[string]int{
	errUnauthorised:      http.StatusUnauthorized,
	errInvalidRequest:    http.StatusBadRequest,
	errSessionNotFound:   http.StatusNotFound,
	errSessionNotPending: http.StatusConflict,
	errInternal:          http.StatusInternalServerError,
}

// newAPIError builds an echo.HTTPError whose JSON body is
// {"error": kind, "message": message} (§7: "every error kind maps to a
// single human sentence that is safe to display").
func newAPIError(kind, message string) *echo.HTTPError {
	status, ok := errorStatusCodes[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, map[string]string{"error": kind, "message": message})
}
