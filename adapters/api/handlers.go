package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dataview/app"
	"dataview/domain/core"
	"dataview/domain/explorer"
	apperrors "dataview/internal/errors"
)

// OpenSessionRequest names the source a new session should observe
type OpenSessionRequest struct {
	Source string `json:"source" binding:"required"`
}

// SessionSummary is one entry of the session listing.
type SessionSummary struct {
	app.SessionInfo
	Subscribers int `json:"subscribers"`
}

func (s *Server) writeError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	if appErr.Code == apperrors.CodeInternalError {
		s.logger.Sugar().Errorw("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(apperrors.HTTPStatus(appErr.Code), gin.H{"error": appErr})
}

func (s *Server) session(c *gin.Context) (*app.Session, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.writeError(c, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	session, err := s.registry.Get(id)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return session, true
}

func (s *Server) handleListSources(c *gin.Context) {
	var names []string
	if s.catalog != nil {
		names = s.catalog.Names()
	}
	c.JSON(http.StatusOK, gin.H{"sources": names})
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions := s.registry.List()
	out := make([]SessionSummary, len(sessions))
	for i, info := range sessions {
		out[i] = SessionSummary{SessionInfo: info, Subscribers: s.hub.GetClientCount(info.ID)}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) handleOpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	session, err := s.registry.OpenByName(c.Request.Context(), req.Source)
	if err != nil {
		if !core.IsNotFoundError(err) {
			err = apperrors.SourceError(req.Source, err)
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.SessionInfo{ID: session.ID(), Source: session.SourceName()})
}

func (s *Server) handleCloseSession(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	if err := s.registry.Close(session.ID()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleRPC runs one request against a session. Failures of the request
// itself travel inside the response body; only transport problems change the
// status code.
func (s *Server) handleRPC(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	var req explorer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	if req.ID == "" {
		req.ID = core.NewID().String()
	}
	c.JSON(http.StatusOK, session.Dispatch(c.Request.Context(), req))
}

func (s *Server) handleEvents(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	s.hub.HandleSSE(c, session.ID())
}

// handleBoundary tells every session the host finished an evaluation, so each
// checks its source for changes.
func (s *Server) handleBoundary(c *gin.Context) {
	changed := s.registry.NotifyEvaluationBoundary(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
