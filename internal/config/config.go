package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"user-service/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	PasswordHashingBcrypt = "bcrypt"
	PasswordHashingPlain  = "plain"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"9999"`

	HealthCheckResponse string `envconfig:"HEALTH_CHECK_RESPONSE" default:"App Service is OK."`

	// MongoDB
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	MongoDatabase   string        `envconfig:"MONGO_DATABASE" default:"test"`
	MongoCollection string        `envconfig:"MONGO_COLLECTION" default:"users"`
	MongoMaxPool    uint64        `envconfig:"MONGO_MAX_POOL_SIZE" default:"100"`
	MongoTimeout    time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`

	// Sessions
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// Passwords. Pepper is a secret and has no envconfig default.
	PasswordHashing string `envconfig:"PASSWORD_HASHING" default:"bcrypt"`
	PasswordPepper  string `envconfig:"PASSWORD_PEPPER"`

	// Redis backs the rate limiter when set; in-memory store otherwise.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// Account events are published when set.
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	RateLimitPerMinute uint `envconfig:"RATE_LIMIT_PER_MINUTE" default:"10"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetAllowedOrigins splits CORSAllowedOrigins into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	switch c.PasswordHashing {
	case PasswordHashingBcrypt, PasswordHashingPlain:
	default:
		return fmt.Errorf("invalid PASSWORD_HASHING %q: want %q or %q", c.PasswordHashing, PasswordHashingBcrypt, PasswordHashingPlain)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.RateLimitPerMinute == 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// LoadConfig loads configuration from an optional .env file, environment
// variables and Docker secrets, in that order of precedence (lowest first).
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err = godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Optional secrets override the environment.
	if pepper, err := utils.ReadSecret("password_pepper"); err == nil {
		cfg.PasswordPepper = pepper
		log.Println("Password pepper loaded from secret.")
	}
	if redisPass, err := utils.ReadSecret("redis_password"); err == nil {
		cfg.RedisPassword = redisPass
		log.Println("Redis password loaded from secret.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Println("Configuration loaded successfully.")
	return &cfg, nil
}
