package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Media storage
	StorageBackend string
	MediaDir       string
	MediaURLPrefix string
	GCSBucket      string

	// Crop disease classifier
	CropDiseaseAPIKey  string
	CropDiseaseAPIURL  string
	CropDiseaseTimeout time.Duration

	// Scheme directory write access. Empty means any company principal.
	SchemeAdminUsernames []string
	SeedSchemes          bool

	// Requests per minute per IP; 0 disables the limiter.
	RateLimitAPI  int
	RateLimitAuth int

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
}

// Load reads .env (if present) and the process environment once.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "agrimarket"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "agrimarket.db"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "30m"), 30*time.Minute),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
		MediaURLPrefix: getEnv("MEDIA_URL_PREFIX", "/media"),
		GCSBucket:      getEnv("GCS_BUCKET", ""),

		CropDiseaseAPIKey:  getEnv("CROP_DISEASE_API_KEY", ""),
		CropDiseaseAPIURL:  getEnv("CROP_DISEASE_API_URL", ""),
		CropDiseaseTimeout: parseDuration(getEnv("CROP_DISEASE_TIMEOUT", "60s"), 60*time.Second),

		SchemeAdminUsernames: ParseCSV(getEnv("SCHEME_ADMIN_USERNAMES", "")),
		SeedSchemes:          parseBool(getEnv("SEED_SCHEMES", "false")),

		RateLimitAPI:  parseInt(getEnv("RATE_LIMIT_API", "60"), 60),
		RateLimitAuth: parseInt(getEnv("RATE_LIMIT_AUTH", "10"), 10),

		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// ClassifierConfigured reports whether both the crop disease API key and URL are set.
func (c *Config) ClassifierConfigured() bool {
	return c.CropDiseaseAPIKey != "" && c.CropDiseaseAPIURL != ""
}

// ParseCSV splits a comma separated list, dropping blanks.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
