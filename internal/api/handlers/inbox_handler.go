package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ricoshapp/stylehub/internal/api/middleware"
	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/services"
	"github.com/ricoshapp/stylehub/internal/tasks"
)

// InboxHandler handles REST requests for direct messages and threads.
type InboxHandler struct {
	cfg          *config.Config
	inboxService services.IInboxService
	userService  services.IUserService
	taskClient   IAsynqClient
}

// NewInboxHandler creates a new InboxHandler.
func NewInboxHandler(cfg *config.Config, inboxService services.IInboxService, userService services.IUserService, taskClient IAsynqClient) *InboxHandler {
	return &InboxHandler{
		cfg:          cfg,
		inboxService: inboxService,
		userService:  userService,
		taskClient:   taskClient,
	}
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	ListingID   string `json:"listing_id"`
	Body        string `json:"body" binding:"required"`
}

// SendMessage handles POST /v1/inbox/message.
func (h *InboxHandler) SendMessage(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message, err := h.inboxService.SendMessage(c.Request.Context(), userID, req.RecipientID, req.ListingID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRecipient):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	h.enqueueRecipientNotification(c, req.RecipientID, message.Body)
	c.JSON(http.StatusCreated, message)
}

// enqueueRecipientNotification queues the "new message" email. Failures are
// logged only; messaging must not fail because email delivery is down.
func (h *InboxHandler) enqueueRecipientNotification(c *gin.Context, recipientID, body string) {
	sender, err := h.userService.FindByID(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		return
	}
	recipient, err := h.userService.FindByID(c.Request.Context(), recipientID)
	if err != nil {
		log.Printf("Cannot notify recipient %s: %v", recipientID, err)
		return
	}

	task, err := tasks.NewEmailDeliveryTask(tasks.EmailTaskPayload{
		To:         recipient.Email,
		TemplateID: "new_message",
		Data: map[string]interface{}{
			"sender_name": sender.Name,
			"body":        body,
		},
	})
	if err != nil {
		log.Printf("Failed to build message email task: %v", err)
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("Failed to enqueue message email task: %v", err)
	}
}

// Threads handles GET /v1/inbox/threads.
func (h *InboxHandler) Threads(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	threads, err := h.inboxService.Threads(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": threads})
}

// ThreadMessages handles GET /v1/inbox/threads/:key.
func (h *InboxHandler) ThreadMessages(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	messages, err := h.inboxService.ThreadMessages(c.Request.Context(), userID, c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}
