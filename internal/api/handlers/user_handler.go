package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ricoshapp/stylehub/internal/api/middleware"
	"github.com/ricoshapp/stylehub/internal/services"
)

// UserHandler handles public user lookups and profile management.
type UserHandler struct {
	userService services.IUserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUserByID handles GET /v1/user/:id.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	// Public shape: no email.
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
		"role":     user.Role,
	})
}

type employerProfileRequest struct {
	ShopName string `json:"shop_name" binding:"required"`
}

// CreateEmployerProfile handles POST /v1/profile/employer.
func (h *UserHandler) CreateEmployerProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var req employerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	profile, err := h.userService.CreateEmployerProfile(c.Request.Context(), userID, req.ShopName)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}
	c.JSON(http.StatusCreated, profile)
}

type talentProfileRequest struct {
	Roles             []string `json:"roles"`
	AvailabilityDays  [7]bool  `json:"availability_days"`
	ZipCode           string   `json:"zip_code"`
	TravelRadiusMiles float64  `json:"travel_radius_miles"`
}

// UpsertTalentProfile handles PUT /v1/profile/talent.
func (h *UserHandler) UpsertTalentProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var req talentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	profile, err := h.userService.UpsertTalentProfile(c.Request.Context(), userID,
		req.Roles, req.AvailabilityDays, req.ZipCode, req.TravelRadiusMiles)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetMyProfiles handles GET /v1/profile.
func (h *UserHandler) GetMyProfiles(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	ctx := c.Request.Context()

	resp := gin.H{}
	if employer, err := h.userService.GetEmployerProfileByUserID(ctx, userID); err == nil {
		resp["employer"] = employer
	}
	if talent, err := h.userService.GetTalentProfileByUserID(ctx, userID); err == nil {
		resp["talent"] = talent
	}
	c.JSON(http.StatusOK, resp)
}
