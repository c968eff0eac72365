package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ricoshapp/stylehub/internal/api/middleware"
	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/ricoshapp/stylehub/internal/services"
	"github.com/ricoshapp/stylehub/internal/tasks"
)

// InquiryHandler handles REST requests for listing inquiries.
type InquiryHandler struct {
	cfg            *config.Config
	inquiryService services.IInquiryService
	userService    services.IUserService
	listingService services.IListingService
	viewService    services.IViewService
	taskClient     IAsynqClient
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(cfg *config.Config, inquiryService services.IInquiryService, userService services.IUserService, listingService services.IListingService, viewService services.IViewService, taskClient IAsynqClient) *InquiryHandler {
	return &InquiryHandler{
		cfg:            cfg,
		inquiryService: inquiryService,
		userService:    userService,
		listingService: listingService,
		viewService:    viewService,
		taskClient:     taskClient,
	}
}

type submitInquiryRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Note      string `json:"note"`
}

// Submit handles POST /v1/inquiry. A repeat submission for the same listing
// refreshes the existing inquiry and responds with the same shape as a fresh
// one; only the status code differs.
func (h *InquiryHandler) Submit(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var req submitInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	inquiry, created, err := h.inquiryService.Submit(c.Request.Context(), userID, req.ListingID, models.ContactFields{
		Name:  req.Name,
		Phone: req.Phone,
		Note:  req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, services.ErrNoListingOwner):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Listing has no contactable owner"})
		case errors.Is(err, services.ErrSelfInquiry):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot inquire about your own listing"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.enqueueOwnerNotification(c, inquiry)
	}
	c.JSON(status, gin.H{"inquiry": inquiry, "created": created})
}

// enqueueOwnerNotification queues the "new inquiry" email to the listing
// owner. Enqueue failures are logged, not surfaced; the background sweep of
// unnotified inquiries will pick the row up later.
func (h *InquiryHandler) enqueueOwnerNotification(c *gin.Context, inquiry *models.Inquiry) {
	owner, err := h.userService.FindByID(c.Request.Context(), inquiry.OwnerID)
	if err != nil {
		log.Printf("Cannot notify owner %s of inquiry %s: %v", inquiry.OwnerID, inquiry.ID, err)
		return
	}

	data := map[string]interface{}{
		"sender_name":  inquiry.Name,
		"sender_phone": inquiry.Phone,
		"note":         inquiry.Note,
	}
	if listing, err := h.listingService.FindListingByID(c.Request.Context(), inquiry.ListingID); err == nil {
		data["listing_title"] = listing.Title
	}

	task, err := tasks.NewEmailDeliveryTask(tasks.EmailTaskPayload{
		To:         owner.Email,
		TemplateID: "new_inquiry",
		Data:       data,
		InquiryID:  inquiry.ID,
	})
	if err != nil {
		log.Printf("Failed to build email task for inquiry %s: %v", inquiry.ID, err)
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("Failed to enqueue email task for inquiry %s: %v", inquiry.ID, err)
	}
}

// Delete handles DELETE /v1/inquiry/:id. Either party may delete; the pair is
// then free to inquire again.
func (h *InquiryHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	err := h.inquiryService.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInquiryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your inquiry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inquiry"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /v1/inquiry?view=[sent|received]. The effective view runs
// through the role-scoped resolver, so the parameter is optional and a sticky
// preference is remembered across requests.
func (h *InquiryHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	view, err := h.viewService.ResolveView(c.Request.Context(), userID, c.Query("view"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve view"})
		return
	}

	var inquiries []models.Inquiry
	if view == services.ViewReceived {
		inquiries, err = h.inquiryService.ListReceived(c.Request.Context(), userID)
	} else {
		inquiries, err = h.inquiryService.ListSent(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": view, "data": inquiries})
}
