package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env                string
	Port               string
	DatabaseURL        string
	MigrateOnStart     bool
	PublicBaseURL      string
	AllowOrigins       []string
	LogstashTCPAddr    string
	JWTSecret          string
	JWTExpiresIn       time.Duration
	JWTCookieExpiresIn time.Duration
	PasswordResetTTL   time.Duration
	BcryptCost         int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitMax       int
	RateLimitWindow    time.Duration
	BodyLimit          string
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketUsers   string
	MinIOBucketTours   string
	MinIOPublicURL     string
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	SMTPTimeout        time.Duration
}

// IsProduction reports whether cookies must be marked secure and error details hidden.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	env := strings.ToLower(strings.TrimSpace(getenv("APP_ENV", EnvDevelopment)))
	if env != EnvProduction {
		env = EnvDevelopment
	}

	cookieDays := atoiOr(getenv("JWT_COOKIE_EXPIRES_IN", "90"), 90)

	return Config{
		Env:                env,
		Port:               getenv("PORT", "8080"),
		DatabaseURL:        must("DATABASE_URL"),
		MigrateOnStart:     getenv("MIGRATE_ON_START", "true") == "true",
		PublicBaseURL:      strings.TrimRight(getenv("PUBLIC_BASE_URL", ""), "/"),
		AllowOrigins:       splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:    getenv("LOGSTASH_TCP_ADDR", ""),
		JWTSecret:          must("JWT_SECRET"),
		JWTExpiresIn:       durationOr(getenv("JWT_EXPIRES_IN", "90d"), 90*24*time.Hour),
		JWTCookieExpiresIn: time.Duration(cookieDays) * 24 * time.Hour,
		PasswordResetTTL:   durationOr(getenv("PASSWORD_RESET_TTL", "10m"), 10*time.Minute),
		BcryptCost:         atoiOr(getenv("BCRYPT_COST", "12"), 12),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            atoiOr(getenv("REDIS_DB", "0"), 0),
		RateLimitMax:       atoiOr(getenv("RATE_LIMIT_MAX", "100"), 100),
		RateLimitWindow:    durationOr(getenv("RATE_LIMIT_WINDOW", "1h"), time.Hour),
		BodyLimit:          getenv("BODY_LIMIT", "10KB"),
		MinIOEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketUsers:   getenv("MINIO_BUCKET_USERS", "tourbook-users"),
		MinIOBucketTours:   getenv("MINIO_BUCKET_TOURS", "tourbook-tours"),
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),
		SMTPHost:           getenv("SMTP_HOST", ""),
		SMTPPort:           getenv("SMTP_PORT", ""),
		SMTPUsername:       getenv("SMTP_USERNAME", ""),
		SMTPPassword:       getenv("SMTP_PASSWORD", ""),
		SMTPFrom:           getenv("SMTP_FROM", ""),
		SMTPTimeout:        durationOr(getenv("SMTP_TIMEOUT", "10s"), 10*time.Second),
	}
}

// ParseDuration accepts Go durations ("15m", "2h") and whole days ("90d").
func ParseDuration(raw string) (time.Duration, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", raw, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive: %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", raw)
	}
	return d, nil
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid duration %q, using %s", raw, fallback)
		return fallback
	}
	return d
}

func atoiOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
