package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	FrontendURL string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWKSUrl         string
	JWKSRefreshRate time.Duration

	// Media S3
	MediaS3Endpoint        string
	MediaS3Region          string
	MediaS3AccessKeyID     string
	MediaS3SecretAccessKey string
	MediaS3UsePathStyle    bool
	MediaImagesBucket      string
	MediaPublicURL         string
	PresignedURLTTLMinutes int

	// Local storage
	LocalAssetsPath string

	// Uploads
	UploadMaxImageSize   int64
	UploadMaxConcurrent  int
	AlbumMaxImages       int
	JPEGQualityCreate    int
	JPEGQualityAdd       int
	StandardMaxDimension int
	FullQualityMaxDim    int

	// Retention sweep (the 42h/7d windows themselves are product
	// constants, see internal/retention)
	RetentionSweepEnabled bool
	RetentionSweepEvery   time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Security
	RateLimitRequests       int
	RateLimitDuration       time.Duration
	UploadRateLimitRequests int
	UploadRateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		FrontendURL: getEnv("FRONTEND_URL", "https://pluur.com"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "plurr"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "plurr_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "UTC"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Auth
		JWKSUrl:         getEnv("JWKS_URL", ""),
		JWKSRefreshRate: getEnvAsDuration("JWKS_REFRESH_RATE", "1h"),

		// Media S3
		MediaS3Endpoint:        getEnv("MEDIA_S3_ENDPOINT", ""),
		MediaS3Region:          getEnv("MEDIA_S3_REGION", "us-east-1"),
		MediaS3AccessKeyID:     getEnv("MEDIA_S3_ACCESS_KEY_ID", ""),
		MediaS3SecretAccessKey: getEnv("MEDIA_S3_SECRET_ACCESS_KEY", ""),
		MediaS3UsePathStyle:    getEnv("MEDIA_S3_USE_PATH_STYLE", "true") == "true",
		MediaImagesBucket:      getEnv("MEDIA_IMAGES_BUCKET", "plurr-albums"),
		MediaPublicURL:         getEnv("MEDIA_PUBLIC_URL", ""),
		PresignedURLTTLMinutes: getEnvAsInt("PRESIGNED_URL_TTL_MINUTES", 60),

		// Local storage
		LocalAssetsPath: getEnv("LOCAL_ASSETS_PATH", "/data/assets"),

		// Uploads
		UploadMaxImageSize:   int64(getEnvAsInt("UPLOAD_MAX_IMAGE_SIZE", 20*1024*1024)),
		UploadMaxConcurrent:  getEnvAsInt("UPLOAD_MAX_CONCURRENT", 3),
		AlbumMaxImages:       getEnvAsInt("ALBUM_MAX_IMAGES", 75),
		JPEGQualityCreate:    getEnvAsInt("JPEG_QUALITY_CREATE", 50),
		JPEGQualityAdd:       getEnvAsInt("JPEG_QUALITY_ADD", 80),
		StandardMaxDimension: getEnvAsInt("STANDARD_MAX_DIMENSION", 1920),
		FullQualityMaxDim:    getEnvAsInt("FULL_QUALITY_MAX_DIMENSION", 4096),

		// Retention sweep
		RetentionSweepEnabled: getEnv("RETENTION_SWEEP_ENABLED", "true") == "true",
		RetentionSweepEvery:   getEnvAsDuration("RETENTION_SWEEP_INTERVAL", "15m"),

		// SMTP
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "support@pluur.com"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "plurr"),

		// Security
		RateLimitRequests:       getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration:       getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		UploadRateLimitRequests: getEnvAsInt("UPLOAD_RATE_LIMIT_REQUESTS", 30),
		UploadRateLimitDuration: getEnvAsDuration("UPLOAD_RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "https://pluur.com"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
