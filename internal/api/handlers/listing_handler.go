package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/ricoshapp/stylehub/internal/api/middleware"
	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/geo"
	"github.com/ricoshapp/stylehub/internal/geocode"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/ricoshapp/stylehub/internal/services"
	"github.com/ricoshapp/stylehub/internal/storage"
	"github.com/ricoshapp/stylehub/internal/tasks"
)

// IAsynqClient defines the interface for the Asynq client methods used by the
// handlers. This allows easier mocking than using the concrete asynq.Client.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ListingHandler handles REST requests for listings.
type ListingHandler struct {
	cfg            *config.Config
	listingService services.IListingService
	geocoder       geocode.IGeocoder
	storageService storage.IS3Storage
	taskClient     IAsynqClient
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(cfg *config.Config, listingService services.IListingService, geocoder geocode.IGeocoder, storageService storage.IS3Storage, taskClient IAsynqClient) *ListingHandler {
	return &ListingHandler{
		cfg:            cfg,
		listingService: listingService,
		geocoder:       geocoder,
		storageService: storageService,
		taskClient:     taskClient,
	}
}

// resolveSearchOrigin builds the proximity origin from request parameters, by
// priority: explicit lat/lng, then a free-text address via forward geocoding.
// A failed or unavailable geocode returns nil so the search degrades to a
// recency-ordered, unfiltered result instead of erroring.
func (h *ListingHandler) resolveSearchOrigin(c *gin.Context) *geo.SearchOrigin {
	radius := h.cfg.DefaultRadiusMiles
	if radiusStr := c.Query("radius"); radiusStr != "" {
		if r, err := strconv.ParseFloat(radiusStr, 64); err == nil && r > 0 {
			radius = r
		}
	}
	if h.cfg.MaxRadiusMiles > 0 && radius > h.cfg.MaxRadiusMiles {
		radius = h.cfg.MaxRadiusMiles
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			coord := models.Coordinate{Lat: lat, Lng: lng}
			if coord.Valid() {
				return &geo.SearchOrigin{Coordinate: coord, RadiusMiles: radius}
			}
		}
		return nil
	}

	address := c.Query("address")
	if address == "" {
		return nil
	}
	record, err := h.geocoder.Forward(c.Request.Context(), address)
	if err != nil {
		// "No results near that address" beats an error page.
		log.Printf("Forward geocode failed for %q: %v", address, err)
		return nil
	}
	if record.Coordinate == nil {
		return nil
	}
	return &geo.SearchOrigin{Coordinate: *record.Coordinate, RadiusMiles: radius}
}

// SearchListings handles GET /v1/listing/search.
func (h *ListingHandler) SearchListings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	filters := services.ListingFilters{
		ServiceRole:    c.Query("role"),
		CompModel:      c.Query("comp"),
		EmploymentType: c.Query("employment"),
		Schedule:       c.Query("schedule"),
		Query:          c.Query("q"),
		Limit:          limit,
	}
	if apprenticeStr := c.Query("apprentice_ok"); apprenticeStr != "" {
		if v, err := strconv.ParseBool(apprenticeStr); err == nil {
			filters.ApprenticeOK = &v
		}
	}

	origin := h.resolveSearchOrigin(c)

	listings, err := h.listingService.SearchListings(c.Request.Context(), filters, origin)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":             listings,
		"proximity_sorted": origin != nil,
	})
}

// GetListingByID handles GET /v1/listing/:id.
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.listingService.FindListingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GetMyListings handles GET /v1/listing/mine.
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	listings, err := h.listingService.FindListingsByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

type createListingRequest struct {
	BusinessName   string                 `json:"business_name" binding:"required"`
	Title          string                 `json:"title" binding:"required"`
	ServiceRole    string                 `json:"service_role"`
	CompModel      string                 `json:"comp_model"`
	PayMin         *float64               `json:"pay_min"`
	PayMax         *float64               `json:"pay_max"`
	PayUnit        string                 `json:"pay_unit"`
	PayVisible     bool                   `json:"pay_visible"`
	EmploymentType string                 `json:"employment_type"`
	Schedule       string                 `json:"schedule"`
	ExperienceText string                 `json:"experience_text"`
	ShiftDays      [7]bool                `json:"shift_days"`
	ApprenticeOK   bool                   `json:"apprentice_ok"`
	Perks          []string               `json:"perks"`
	Description    string                 `json:"description"`
	Location       models.ListingLocation `json:"location"`
}

// CreateListing handles POST /v1/listing. When the location has an address but
// no coordinate, it is forward-geocoded so the listing participates in
// proximity search.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	location := req.Location
	if location.Coordinate == nil && location.AddressLine1 != "" {
		if record, err := h.geocoder.Forward(c.Request.Context(), location.AddressLine1); err == nil {
			location.Coordinate = record.Coordinate
			if location.City == "" {
				location.City = record.City
			}
			if location.PostalCode == "" {
				location.PostalCode = record.PostalCode
			}
		} else {
			log.Printf("Geocode failed for new listing address %q: %v", location.AddressLine1, err)
		}
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), userID, &models.Listing{
		BusinessName:   req.BusinessName,
		Title:          req.Title,
		ServiceRole:    req.ServiceRole,
		CompModel:      req.CompModel,
		PayMin:         req.PayMin,
		PayMax:         req.PayMax,
		PayUnit:        req.PayUnit,
		PayVisible:     req.PayVisible,
		EmploymentType: req.EmploymentType,
		Schedule:       req.Schedule,
		ExperienceText: req.ExperienceText,
		ShiftDays:      req.ShiftDays,
		ApprenticeOK:   req.ApprenticeOK,
		Perks:          req.Perks,
		Description:    req.Description,
		Location:       location,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// UpdateListing handles PUT /v1/listing/:id.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("id"), userID, updates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DeleteListing handles DELETE /v1/listing/:id.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)

	err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

type photoUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// RequestPhotoUpload handles POST /v1/listing/:id/photo-upload. It returns a
// pre-signed PUT URL; the client uploads directly to S3 and then calls
// CompletePhotoUpload.
func (h *ListingHandler) RequestPhotoUpload(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	listingID := c.Param("id")

	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	owner, err := h.listingService.ResolveOwner(c.Request.Context(), listing)
	if err != nil || owner != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		return
	}

	var req photoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	url, key, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), userID, listingID, req.Filename, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": url, "object_key": key})
}

type photoCompleteRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

// CompletePhotoUpload handles POST /v1/listing/:id/photo-complete. It enqueues
// the normalization task which attaches the photo to the listing.
func (h *ListingHandler) CompletePhotoUpload(c *gin.Context) {
	userID := c.GetString(middleware.ContextKeyUserID)
	listingID := c.Param("id")

	var req photoCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	task, err := tasks.NewImageProcessTask(tasks.ImageTaskPayload{
		S3Key:     req.ObjectKey,
		ListingID: listingID,
		OwnerID:   userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build processing task"})
		return
	}
	info, err := h.taskClient.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue processing task"})
		return
	}
	log.Printf("Enqueued image processing task ID %s for key %s, listing %s", info.ID, req.ObjectKey, listingID)
	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
}
