package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-transit/opsagent/pkg/version"
)

// healthHandler handles GET /healthz. Unauthenticated — unlike the
// /agent/* group — so an orchestrator's liveness/readiness probe never
// needs the shared API key.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := s.db.Health(reqCtx)
	status := "healthy"
	httpStatus := http.StatusOK
	if err != nil {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	stats := s.cfg.Stats()
	return c.JSON(httpStatus, &HealthResponse{
		Status:   status,
		Version:  version.Full(),
		Database: dbHealth,
		Configuration: ConfigurationStats{
			ActionOverrides: stats.ActionOverrides,
			WizardOverrides: stats.WizardOverrides,
			LLMProviders:    stats.LLMProviders,
		},
	})
}
