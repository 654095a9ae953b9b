// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every knob the server reads at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port int `envconfig:"PORT" default:"8080"`

	// MongoURI is the MongoDB connection string.
	MongoURI string `envconfig:"MONGODB_URI" required:"true"`

	// Database is the MongoDB database name.
	Database string `envconfig:"MONGODB_DATABASE" default:"chat_db"`

	// JWTSecret signs access tokens (HS256).
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// AccessTokenTTL is the validity window for access tokens.
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`

	// RefreshTokenTTL is the validity window for refresh tokens.
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`

	// RateLimitRPM caps register/login attempts per key per minute.
	RateLimitRPM int `envconfig:"RATE_LIMIT_RPM" default:"10"`

	// Debug switches gin into debug mode and logging to console format.
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// Load reads an optional .env file, then parses the environment into a
// Config. Missing required values fail here, before anything connects.
func Load() (*Config, error) {
	// .env is a local development convenience; absence is not an error
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
