package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// Config holds application configuration
type Config struct {
	Host           string
	Port           string
	AllowedHosts   string // comma separated Host header values the views answer to
	BackendURL     string
	RequestTimeout time.Duration
	TokenStore     string // file, redis, memory
	TokenFile      string
	RedisURL       string
	TokenKey       string
	SiteName       string
	OpenAPISpec    string // empty disables outgoing contract checks; "embedded" uses the bundled contract
	EgressRPS      float64
	EgressBurst    int
	Environment    string // development, staging, production
	LogLevel       string
	LogFormat      string
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Host:           getEnv("BIND_HOST", "127.0.0.1"),
		Port:           getEnv("PORT", "4173"),
		AllowedHosts:   getEnv("ALLOWED_HOSTS", "localhost,127.0.0.1,::1"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000/api"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		TokenStore:     getEnv("TOKEN_STORE", TokenStoreFile),
		TokenFile:      getEnv("TOKEN_FILE", defaultTokenFile()),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		TokenKey:       getEnv("TOKEN_KEY", "token"),
		SiteName:       getEnv("SITE_NAME", "WelfareWatch"),
		OpenAPISpec:    getEnv("OPENAPI_SPEC", ""),
		EgressRPS:      getFloat("EGRESS_RPS", 10),
		EgressBurst:    getInt("EGRESS_BURST", 20),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	return cfg
}

// Validate checks configuration for correctness
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL (got %q)", c.BackendURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL must use http or https (got %q)", u.Scheme)
	}

	if c.AllowedHosts == "" {
		return fmt.Errorf("ALLOWED_HOSTS must list at least one host")
	}

	switch c.TokenStore {
	case TokenStoreFile:
		if c.TokenFile == "" {
			return fmt.Errorf("TOKEN_FILE must be set when TOKEN_STORE=file")
		}
	case TokenStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when TOKEN_STORE=redis")
		}
	case TokenStoreMemory:
	default:
		return fmt.Errorf("TOKEN_STORE must be one of file, redis, memory (got %q)", c.TokenStore)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive (got %s)", c.RequestTimeout)
	}

	if c.EgressRPS <= 0 || c.EgressBurst < 1 {
		return fmt.Errorf("EGRESS_RPS must be positive and EGRESS_BURST at least 1")
	}

	if c.IsProduction() {
		if u.Scheme != "https" {
			return fmt.Errorf("BACKEND_URL must use https in production")
		}
		if c.TokenStore == TokenStoreMemory {
			log.Println("WARNING: TOKEN_STORE=memory loses the session on restart")
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == ""
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".welfarewatch", "token")
	}
	return filepath.Join(home, ".welfarewatch", "token")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return i
}
