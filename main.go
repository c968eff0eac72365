package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hibiken/asynq"

	"github.com/ricoshapp/stylehub/internal/api"
	"github.com/ricoshapp/stylehub/internal/cache"
	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/db"
	"github.com/ricoshapp/stylehub/internal/email"
	"github.com/ricoshapp/stylehub/internal/services"
	"github.com/ricoshapp/stylehub/internal/storage"
	"github.com/ricoshapp/stylehub/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'img' (image processing), 'all' (default)")

// notificationSweepInterval is how often the background worker re-enqueues
// emails for inquiries whose first delivery attempt never completed.
const notificationSweepInterval = 5 * time.Minute

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// S3 client for the image worker.
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		log.Fatalf("Failed to load AWS config for S3 client: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	// Email sender chain.
	var primaryEmailSender email.Sender
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg)
	} else {
		primaryEmailSender = email.NewSMTPSender(cfg)
	}
	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)
	if logEmailsPath := os.Getenv("LOG_EMAILS"); logEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(logEmailsPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS=%q): %v", logEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
			log.Printf("File email logger enabled at %s", logEmailsPath)
		}
	}
	finalEmailSender := email.Sender(compositeSender)

	// Services shared by the API and the workers.
	userService := services.NewUserService(mongoDb, cfg)
	listingService := services.NewListingService(mongoDb, cfg)
	inquiryService := services.NewInquiryService(mongoDb, cfg, listingService)
	emailTemplateService := services.NewEmailTemplateService(mongoDb)

	// Unique indexes are load-bearing: inquiry deduplication relies on them.
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := userService.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}
	if err := inquiryService.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to ensure inquiry indexes: %v", err)
	}
	cancelIndex()

	taskClient := tasks.NewClient(redisClient)
	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}
	taskProcessor := tasks.NewTaskProcessor(cfg, finalEmailSender, listingService, inquiryService, userService, emailTemplateService, s3StorageService, s3Client)

	var wg sync.WaitGroup
	var mainApiSrv *http.Server

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()

	fmt.Printf("Starting StyleHub in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		mainApiRouter := api.SetupRouter(cfg, mongoDb, redisClient, taskClient)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("API ListenAndServe error: %v", err)
			}
			fmt.Println("API server stopped.")
		}()
	}

	bgMode := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			tasks.SetupServer(redisClient, taskProcessor, false, true)
			fmt.Println("Background task server stopped.")
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNotificationSweep(sweepCtx, inquiryService, userService, listingService, taskClient)
		}()
	}

	imgMode := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Image processing server starting...")
			tasks.SetupServer(redisClient, taskProcessor, true, false)
			fmt.Println("Image processing server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "img":
		imgMode()
	case "all":
		apiMode()
		bgMode()
		imgMode()
	default:
		log.Fatalf("Invalid run mode: %s", cfg.RunMode)
	}

	// Graceful shutdown. The Asynq servers handle SIGINT/SIGTERM themselves.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	cancelSweep()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}
	if err := taskClient.Close(); err != nil {
		log.Printf("Error closing task client: %v", err)
	}

	wg.Wait()
	fmt.Println("Shutdown complete.")
}

// runNotificationSweep periodically re-enqueues owner emails for inquiries
// that were created but never flagged as notified, covering enqueue failures
// in the API path.
func runNotificationSweep(ctx context.Context, inquiryService services.IInquiryService, userService services.IUserService, listingService services.IListingService, taskClient *asynq.Client) {
	ticker := time.NewTicker(notificationSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		inquiries, err := inquiryService.FindUnnotified(ctx, 100)
		if err != nil {
			log.Printf("Notification sweep query failed: %v", err)
			continue
		}
		for i := range inquiries {
			inquiry := &inquiries[i]
			owner, err := userService.FindByID(ctx, inquiry.OwnerID)
			if err != nil {
				log.Printf("Notification sweep: owner %s of inquiry %s unavailable: %v", inquiry.OwnerID, inquiry.ID, err)
				continue
			}
			data := map[string]interface{}{
				"sender_name":  inquiry.Name,
				"sender_phone": inquiry.Phone,
				"note":         inquiry.Note,
			}
			if listing, err := listingService.FindListingByID(ctx, inquiry.ListingID); err == nil {
				data["listing_title"] = listing.Title
			}
			task, err := tasks.NewEmailDeliveryTask(tasks.EmailTaskPayload{
				To:         owner.Email,
				TemplateID: "new_inquiry",
				Data:       data,
				InquiryID:  inquiry.ID,
			})
			if err != nil {
				log.Printf("Notification sweep: failed to build task for inquiry %s: %v", inquiry.ID, err)
				continue
			}
			if _, err := taskClient.EnqueueContext(ctx, task); err != nil {
				log.Printf("Notification sweep: failed to enqueue task for inquiry %s: %v", inquiry.ID, err)
			}
		}
	}
}
