package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dataview/app"
	internalapi "dataview/internal/api"
	"dataview/ports"
)

// Server exposes view sessions over HTTP: one JSON-RPC endpoint per session
// plus a server-sent event stream for its push events.
type Server struct {
	router   *gin.Engine
	registry *app.Registry
	hub      *internalapi.SSEHub
	catalog  ports.SourceCatalog
	logger   *zap.Logger
}

// NewServer creates a server and registers its routes
func NewServer(registry *app.Registry, hub *internalapi.SSEHub, catalog ports.SourceCatalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   gin.New(),
		registry: registry,
		hub:      hub,
		catalog:  catalog,
		logger:   logger.With(zap.String("component", "http")),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), s.requestLogger())
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/sources", s.handleListSources)
	api.GET("/sessions", s.handleListSessions)
	api.POST("/sessions", s.handleOpenSession)
	api.DELETE("/sessions/:id", s.handleCloseSession)
	api.POST("/sessions/:id/rpc", s.handleRPC)
	api.GET("/sessions/:id/events", s.handleEvents)
	api.POST("/boundary", s.handleBoundary)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": len(s.registry.List())})
	})
}

// requestLogger logs every request once it completes
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
