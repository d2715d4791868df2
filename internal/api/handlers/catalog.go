package handlers

import (
	"net/http"
	"wayfinder-route-service/internal/api/dto"
	"wayfinder-route-service/internal/sessions"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Sessions *sessions.Manager
}

func (h *CatalogHandler) Get(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.CatalogFromView(s.Catalog().View()))
}

// SelectCategory loads the buildings of the named category. Store failures
// come back as an empty list, not an error.
func (h *CatalogHandler) SelectCategory(c *gin.Context) {
	s, ok := lookupSession(c, h.Sessions)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}

	s.SelectCategory(c.Request.Context(), req.Name)
	c.JSON(http.StatusOK, dto.CatalogFromView(s.Catalog().View()))
}
