// Package api provides the HTTP surface the UI drives the core through
// (§6.1): three endpoints backed by the graph runtime, plus a health
// check and an audit query endpoint supplementing the specified external
// interfaces.
package api

import (
	"context"
	"net"
	"net/http"
	"os"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/tarsy-transit/opsagent/pkg/config"
	"github.com/tarsy-transit/opsagent/pkg/db"
	"github.com/tarsy-transit/opsagent/pkg/graph"
	"github.com/tarsy-transit/opsagent/pkg/nodes"
	"github.com/tarsy-transit/opsagent/pkg/ocr"
	"github.com/tarsy-transit/opsagent/pkg/session"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg      *config.Config
	db       *db.Client
	graph    *graph.Graph
	deps     *nodes.Deps
	sessions *session.Store
	ocr      ocr.Provider
	apiKey   string
}

// NewServer wires the fixed route table onto a fresh Echo instance. deps
// is the same node collaborator bundle g was built from — the confirm
// endpoint invokes deps.Execute and deps.ReportResult directly rather
// than re-entering the graph (§4.11).
func NewServer(cfg *config.Config, dbClient *db.Client, g *graph.Graph, deps *nodes.Deps, sessions *session.Store, ocrProvider ocr.Provider) *Server {
	e := echo.New()
	s := &Server{
		echo:     e,
		cfg:      cfg,
		db:       dbClient,
		graph:    g,
		deps:     deps,
		sessions: sessions,
		ocr:      ocrProvider,
		apiKey:   os.Getenv(cfg.Server.APIKeyEnv),
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	// Body size limit sized for an image upload (§6.1 POST /agent/image);
	// comfortably above maxImageBytes to account for the multipart
	// envelope overhead.
	s.echo.Use(middleware.BodyLimit(10 * 1024 * 1024))
	s.echo.Use(securityHeaders())

	s.echo.GET("/healthz", s.healthHandler)

	agentGroup := s.echo.Group("/agent")
	agentGroup.Use(s.apiKeyAuth())
	agentGroup.POST("/message", s.messageHandler)
	agentGroup.POST("/confirm", s.confirmHandler)
	agentGroup.POST("/image", s.imageHandler)
	agentGroup.GET("/audit", s.auditHandler)
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops and returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
