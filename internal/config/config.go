// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
	Jobs      JobsConfig
	// XPRulesPath points at an optional YAML file overriding the built-in XP rules
	XPRulesPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings.
// An empty Addr keeps sessions in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
	MaxRequestBytes    int64
	// PublicURL is used to build the swagger document URL
	PublicURL string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SessionConfig holds lesson player session settings
type SessionConfig struct {
	TTL time.Duration
}

// JobsConfig holds background job schedules in standard cron syntax.
// An empty schedule disables the job.
type JobsConfig struct {
	StreakExpiryCron string
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	Version      string
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool
	SampleRatio  float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	maxBytes, err := intEnv("MAX_REQUEST_BYTES", 1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxRequestBytes = int64(maxBytes)
	cfg.Server.PublicURL = os.Getenv("PUBLIC_URL")
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret
	if cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", time.Hour); err != nil {
		return nil, err
	}

	// Redis configuration (optional, sessions stay in memory without it)
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// Session lifetime, refreshed on every write
	if cfg.Session.TTL, err = durationEnv("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}

	cfg.XPRulesPath = os.Getenv("XP_RULES_PATH")

	// Streaks broken by a missed day are zeroed shortly after midnight
	cfg.Jobs.StreakExpiryCron = "10 0 * * *"
	if v, ok := os.LookupEnv("STREAK_EXPIRY_CRON"); ok {
		cfg.Jobs.StreakExpiryCron = strings.TrimSpace(v)
	}

	if err := loadTelemetry(&cfg.Telemetry); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadTelemetry(t *TelemetryConfig) error {
	t.Enabled = boolEnv("OTEL_ENABLED")
	t.ServiceName = os.Getenv("OTEL_SERVICE_NAME")
	if t.ServiceName == "" {
		t.ServiceName = "coursepath-learn"
	}
	t.Environment = os.Getenv("APP_ENV")
	t.Version = os.Getenv("APP_VERSION")
	t.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	t.OTLPInsecure = boolEnv("OTEL_EXPORTER_OTLP_INSECURE")
	t.OTLPHeaders = parseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	t.SampleRatio = 0.1
	if v := strings.TrimSpace(os.Getenv("OTEL_SAMPLER_RATIO")); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid OTEL_SAMPLER_RATIO: %w", err)
		}
		t.SampleRatio = min(max(ratio, 0), 1)
	}
	return nil
}

// DSN returns the database connection string, empty when no host is configured
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// splitList parses a comma-separated list, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseHeaders parses "k1=v1,k2=v2"
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range splitList(raw) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
