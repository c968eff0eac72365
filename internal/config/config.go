package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Geocoder (Nominatim)
	NominatimBaseURL string
	GeocodeUserAgent string
	GeocodeTimeout   time.Duration
	// Bounding box used to keep forward results local: west, north, east, south.
	GeoViewboxLeft   float64
	GeoViewboxTop    float64
	GeoViewboxRight  float64
	GeoViewboxBottom float64
	// Region hint appended to forward queries that don't already mention it.
	GeoRegionHint string
	// Umbrella city whose name a neighborhood/suburb field may override in
	// reverse results (see geocode package).
	GeoUmbrellaCity string

	// Proximity search
	DefaultRadiusMiles float64
	MaxRadiusMiles     float64

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	PhotoBaseS3URL     string
	PhotoMaxDimension  int
	PhotoMaxSizeMB     int

	// App Defaults
	AppName        string
	MaxMessageLen  int
	RoleViewTTL    time.Duration
	PasswordRegexp string

	// Rate Limiting Defaults
	RateLimitSoftBucketSize int
	RateLimitSoftRefillRate int // tokens per second
	RateLimitHardBucketSize int
	RateLimitHardRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.NominatimBaseURL = getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.GeocodeUserAgent = getEnv("GEOCODE_USER_AGENT", "StyleHub/0.1 (dev)")
	cfg.GeoRegionHint = getEnv("GEO_REGION_HINT", "San Diego County, CA")
	cfg.GeoUmbrellaCity = getEnv("GEO_UMBRELLA_CITY", "San Diego")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@stylehub.example.com")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.PhotoBaseS3URL = getEnv("PHOTO_BASE_S3_URL", "")
	cfg.AppName = getEnv("APP_NAME", "StyleHub")
	cfg.PasswordRegexp = getEnv("PASSWORD_REGEXP", "^.{8,}$")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "2592000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	geocodeTimeoutSeconds, err := strconv.ParseInt(getEnv("GEOCODE_TIMEOUT_SECONDS", "5"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODE_TIMEOUT_SECONDS: %w", err)
	}
	cfg.GeocodeTimeout = time.Duration(geocodeTimeoutSeconds) * time.Second

	// San Diego County bounds by default: west, north, east, south.
	cfg.GeoViewboxLeft, err = strconv.ParseFloat(getEnv("GEO_VIEWBOX_LEFT", "-117.60"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_VIEWBOX_LEFT: %w", err)
	}
	cfg.GeoViewboxTop, err = strconv.ParseFloat(getEnv("GEO_VIEWBOX_TOP", "33.50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_VIEWBOX_TOP: %w", err)
	}
	cfg.GeoViewboxRight, err = strconv.ParseFloat(getEnv("GEO_VIEWBOX_RIGHT", "-116.08"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_VIEWBOX_RIGHT: %w", err)
	}
	cfg.GeoViewboxBottom, err = strconv.ParseFloat(getEnv("GEO_VIEWBOX_BOTTOM", "32.50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_VIEWBOX_BOTTOM: %w", err)
	}

	cfg.DefaultRadiusMiles, err = strconv.ParseFloat(getEnv("DEFAULT_RADIUS_MILES", "15"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_RADIUS_MILES: %w", err)
	}
	cfg.MaxRadiusMiles, err = strconv.ParseFloat(getEnv("MAX_RADIUS_MILES", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_RADIUS_MILES: %w", err)
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.PhotoMaxDimension, err = strconv.Atoi(getEnv("PHOTO_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHOTO_MAX_DIMENSION: %w", err)
	}

	cfg.PhotoMaxSizeMB, err = strconv.Atoi(getEnv("PHOTO_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHOTO_MAX_SIZE_MB: %w", err)
	}

	cfg.MaxMessageLen, err = strconv.Atoi(getEnv("MAX_MESSAGE_LEN", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_MESSAGE_LEN: %w", err)
	}

	roleViewTTLDays, err := strconv.ParseInt(getEnv("ROLE_VIEW_TTL_DAYS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ROLE_VIEW_TTL_DAYS: %w", err)
	}
	cfg.RoleViewTTL = time.Duration(roleViewTTLDays) * 24 * time.Hour

	// Rate Limiting
	cfg.RateLimitSoftBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_BUCKET_SIZE", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitSoftRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_REFILL_RATE", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_REFILL_RATE: %w", err)
	}
	cfg.RateLimitHardBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitHardRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
