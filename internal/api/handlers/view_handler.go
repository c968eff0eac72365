package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ricoshapp/stylehub/internal/api/middleware"
	"github.com/ricoshapp/stylehub/internal/services"
)

// ViewHandler exposes the sent/received view preference.
type ViewHandler struct {
	viewService services.IViewService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(viewService services.IViewService) *ViewHandler {
	return &ViewHandler{viewService: viewService}
}

// GetView handles GET /v1/view. It returns the effective view for the current
// user after running the full resolution chain.
func (h *ViewHandler) GetView(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	view, err := h.viewService.ResolveView(c.Request.Context(), userID, "")
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve view"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": view})
}

type setViewRequest struct {
	View string `json:"view" binding:"required"`
}

// SetView handles PUT /v1/view. It stores a sticky preference.
func (h *ViewHandler) SetView(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var req setViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !services.ValidView(req.View) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "View must be 'sent' or 'received'"})
		return
	}

	if err := h.viewService.SetPreference(c.Request.Context(), userID, services.View(req.View)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save view preference"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": req.View})
}
