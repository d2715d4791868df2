package handlers

import (
	"context"
	"errors"
	"net/http"
	"wayfinder-route-service/internal/platform/obs"
	"wayfinder-route-service/internal/services"
	"wayfinder-route-service/internal/sessions"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// lookupSession resolves :id or writes a 404.
func lookupSession(c *gin.Context, m *sessions.Manager) (*sessions.Session, bool) {
	s, err := m.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

// writeEngineError maps errors from session commands.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEngineStopped):
		writeError(c, http.StatusGone, "session closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "request cancelled")
	default:
		obs.Logger(c.Request.Context()).Error("session command failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
