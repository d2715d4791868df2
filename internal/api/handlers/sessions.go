package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"wayfinder-route-service/internal/adapters/location"
	"wayfinder-route-service/internal/api/dto"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/sessions"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Sessions *sessions.Manager
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json body")
			return
		}
	}

	s, err := h.Sessions.Create(c.Request.Context(), req.LocationPermission)
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, err.Error())
		return
	}

	c.JSON(http.StatusCreated, dto.SessionFromView(s.View()))
}

func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.SessionFromView(s.View()))
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.Sessions.Close(c.Param("id")); err != nil {
		writeError(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// PushPosition answers 202 when the fix was accepted and 200 when the
// throttle dropped it.
func (h *SessionHandler) PushPosition(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}

	var req dto.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}

	accepted, err := s.PushPosition(domain.Position{Lat: *req.Lat, Lng: *req.Lng, RecordedAt: time.Now().UTC()})
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(c, http.StatusForbidden, "location permission denied")
		return
	case errors.Is(err, location.ErrInvalidPosition):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeEngineError(c, err)
		return
	}

	status := http.StatusOK
	if accepted {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.PositionResult{Accepted: accepted})
}

func (h *SessionHandler) SetPermission(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}

	var req dto.PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "granted is required")
		return
	}

	s.SetPermission(*req.Granted)
	c.JSON(http.StatusOK, dto.SessionFromView(s.View()))
}

func (h *SessionHandler) SelectDestination(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}

	var req dto.DestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	var dest domain.Destination
	switch {
	case req.Lat != nil && req.Lng != nil:
		dest = domain.Destination{Name: name, Lat: *req.Lat, Lng: *req.Lng}
		if !dest.Position().Valid() {
			writeError(c, http.StatusBadRequest, "coordinates out of range")
			return
		}
	case req.Lat == nil && req.Lng == nil:
		found, ok := s.Catalog().FindBuilding(name)
		if !ok {
			writeError(c, http.StatusNotFound, "building not in the selected category")
			return
		}
		dest = found
	default:
		writeError(c, http.StatusBadRequest, "lat and lng go together")
		return
	}

	if err := s.SelectDestination(c.Request.Context(), dest); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionFromView(s.View()))
}

func (h *SessionHandler) CancelRouting(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}

	if err := s.CancelRouting(c.Request.Context()); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionFromView(s.View()))
}
