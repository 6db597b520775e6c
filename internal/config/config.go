package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database (audit log). Empty disables persistence.
	DatabaseURL    string
	MigrationsPath string

	// Redis (mutation locks, dashboard cache, realtime fan-out). Empty runs in-process.
	RedisURL string

	// JWT shared with the hostel backend
	JWTSecret    string
	JWTAccessTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Hostel backend
	HostelAPIBaseURL        string
	HostelAPITimeoutSeconds int
	HostelAPIUserAgent      string

	// Booking workflow
	Timezone        string
	MutationLockTTL time.Duration

	// Dashboard
	DashboardCacheTTL    time.Duration
	DashboardConcurrency int

	// Receipts
	ReceiptsEnabled bool

	// Storage
	StorageDriver    string
	StorageLocalPath string
	StoragePublicURL string
	S3Endpoint       string
	S3Region         string
	S3Bucket         string
	S3AccessKey      string
	S3SecretKey      string

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// JWT
		JWTSecret:    getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JWTAccessTTL: parseDuration(getEnv("JWT_ACCESS_TTL", "24h"), 24*time.Hour),

		// CORS
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		// Hostel backend
		HostelAPIBaseURL:        getEnv("HOSTEL_API_BASE_URL", "http://localhost:9090/api"),
		HostelAPITimeoutSeconds: parseInt(getEnv("HOSTEL_API_TIMEOUT_SECONDS", "10"), 10),
		HostelAPIUserAgent:      getEnv("HOSTEL_API_USER_AGENT", "HostelHub/1.0 backoffice"),

		// Booking workflow
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		MutationLockTTL: parseDuration(getEnv("MUTATION_LOCK_TTL", "30s"), 30*time.Second),

		// Dashboard
		DashboardCacheTTL:    parseDuration(getEnv("DASHBOARD_CACHE_TTL", "30s"), 30*time.Second),
		DashboardConcurrency: parseInt(getEnv("DASHBOARD_CONCURRENCY", "4"), 4),

		// Receipts
		ReceiptsEnabled: parseBool(getEnv("RECEIPTS_ENABLED", "true"), true),

		// Storage
		StorageDriver:    getEnv("STORAGE_DRIVER", "local"),
		StorageLocalPath: getEnv("STORAGE_LOCAL_PATH", "./data/files"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/files"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Bucket:         getEnv("S3_BUCKET", "hostelhub-receipts"),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown APP_TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// HostelAPITimeout returns the backend request timeout.
func (c *Config) HostelAPITimeout() time.Duration {
	return time.Duration(c.HostelAPITimeoutSeconds) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
