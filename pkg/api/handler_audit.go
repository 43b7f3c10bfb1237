package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-transit/opsagent/pkg/audit"
)

// auditHandler handles GET /agent/audit?trip_id= (supplemented feature,
// §6.5): every mutating tool call's audit trail for one trip, most
// recent first.
func (s *Server) auditHandler(c *echo.Context) error {
	tripID, err := strconv.ParseInt(c.QueryParam("trip_id"), 10, 64)
	if err != nil {
		return newAPIError(errInvalidRequest, "trip_id query parameter is required")
	}

	records, err := audit.ListByEntity(c.Request().Context(), s.db.Pool, "trip", tripID)
	if err != nil {
		return newAPIError(errInternal, "failed to load audit trail")
	}

	return c.JSON(http.StatusOK, &AuditResponse{Records: records})
}
