package api

import (
	"context"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
)

func TestSetupRoutes_RegistersExpectedEndpoints(t *testing.T) {
	s := &Server{echo: echo.New(), apiKey: "secret"}
	s.setupRoutes()

	routes := s.echo.Routes()
	hasRoute := func(method, path string) bool {
		for _, r := range routes {
			if r.Method == method && r.Path == path {
				return true
			}
		}
		return false
	}

	assert.True(t, hasRoute("GET", "/healthz"))
	assert.True(t, hasRoute("POST", "/agent/message"))
	assert.True(t, hasRoute("POST", "/agent/confirm"))
	assert.True(t, hasRoute("POST", "/agent/image"))
	assert.True(t, hasRoute("GET", "/agent/audit"))
}

func TestServer_Shutdown_NilHTTPServerIsNoop(t *testing.T) {
	s := &Server{echo: echo.New()}
	assert.NoError(t, s.Shutdown(context.Background()))
}
