package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ricoshapp/stylehub/internal/api/handlers"
	"github.com/ricoshapp/stylehub/internal/api/middleware"
	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/geocode"
	"github.com/ricoshapp/stylehub/internal/services"
	"github.com/ricoshapp/stylehub/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers here.
	userService := services.NewUserService(db, cfg)
	listingService := services.NewListingService(db, cfg)
	inquiryService := services.NewInquiryService(db, cfg, listingService)
	inboxService := services.NewInboxService(db, cfg, userService, listingService)
	viewService := services.NewViewService(rdb, cfg, userService, inquiryService)
	geocoder := geocode.NewNominatimGeocoder(cfg)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userService)
	userHandler := handlers.NewUserHandler(userService)
	listingHandler := handlers.NewListingHandler(cfg, listingService, geocoder, s3StorageService, taskClient)
	inquiryHandler := handlers.NewInquiryHandler(cfg, inquiryService, userService, listingService, viewService, taskClient)
	inboxHandler := handlers.NewInboxHandler(cfg, inboxService, userService, taskClient)
	viewHandler := handlers.NewViewHandler(viewService)
	geocodeHandler := handlers.NewGeocodeHandler(geocoder)

	v1 := r.Group("/v1")
	{
		// Public routes (rate limiting already applied globally)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/geocode", geocodeHandler.Forward)
		v1.GET("/geocode/reverse", geocodeHandler.Reverse)

		v1.GET("/listing/search", listingHandler.SearchListings)
		v1.GET("/user/:id", userHandler.GetUserByID)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/profile", userHandler.GetMyProfiles)
			authRequired.POST("/profile/employer", userHandler.CreateEmployerProfile)
			authRequired.PUT("/profile/talent", userHandler.UpsertTalentProfile)

			authRequired.POST("/listing", listingHandler.CreateListing)
			authRequired.GET("/listing/mine", listingHandler.GetMyListings)
			authRequired.PUT("/listing/:id", listingHandler.UpdateListing)
			authRequired.DELETE("/listing/:id", listingHandler.DeleteListing)
			authRequired.POST("/listing/:id/photo-upload", listingHandler.RequestPhotoUpload)
			authRequired.POST("/listing/:id/photo-complete", listingHandler.CompletePhotoUpload)

			authRequired.POST("/inquiry", inquiryHandler.Submit)
			authRequired.GET("/inquiry", inquiryHandler.List)
			authRequired.DELETE("/inquiry/:id", inquiryHandler.Delete)

			authRequired.POST("/inbox/message", inboxHandler.SendMessage)
			authRequired.GET("/inbox/threads", inboxHandler.Threads)
			authRequired.GET("/inbox/threads/:key", inboxHandler.ThreadMessages)

			authRequired.GET("/view", viewHandler.GetView)
			authRequired.PUT("/view", viewHandler.SetView)
		}

		// Listing detail must come after /listing/search and /listing/mine so
		// the static segments are not captured as an ID.
		v1.GET("/listing/:id", listingHandler.GetListingByID)
	}

	return r
}
