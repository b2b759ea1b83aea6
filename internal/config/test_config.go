package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the TEST_DB_* variables are not all set, returns a Config with an empty database section
// which makes DSN return "" and lets tests use their fallback DSN
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("./../../configs/.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Redis.Addr = os.Getenv("TEST_REDIS_ADDR")

	host := os.Getenv("TEST_DB_HOST")
	portStr := os.Getenv("TEST_DB_PORT")
	user := os.Getenv("TEST_DB_USER")
	password := os.Getenv("TEST_DB_PASSWORD")
	name := os.Getenv("TEST_DB_NAME")
	if host == "" || portStr == "" || user == "" || password == "" || name == "" {
		return cfg, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database = DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		DBName:   name,
	}
	return cfg, nil
}
