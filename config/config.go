package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration carries the static settings needed to run the service.
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:"8080"` // server port
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	JwtSecret string `env:"JWT_SECRET,required"` // admin bearer token secret

	MongoDB_ConnectionURI  string `env:"MONGODB_CONNECTION_URI,required"`
	MongoDB_DBName_Regular string `env:"MONGODB_DBNAME_REGULAR,required"` // distrinaranjos catalog environment
	MongoDB_DBName_Virtual string `env:"MONGODB_DBNAME_VIRTUAL,required"` // virtual catalog environment

	// Lifecycle policy
	ArchiveRetentionDays int    `env:"ARCHIVE_RETENTION_DAYS" envDefault:"90"`
	PurgeIntervalMinutes int    `env:"PURGE_INTERVAL_MINUTES" envDefault:"60"`
	SourceEnvTag         string `env:"SOURCE_ENV_TAG" envDefault:"production"`

	// CORS / rate limiting
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"` // seconds

	// Firebase (push notification dispatcher)
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	// Document renderer collaborator
	DocumentRendererURL string `env:"DOCUMENT_RENDERER_URL"`
}

// NewConfig loads the env file for the current GO_ENV (when present) and
// parses the configuration from environment variables.
func NewConfig() (*Configuration, error) {
	envName := os.Getenv("GO_ENV")
	if envName == "" {
		envName = "development"
	}

	envPath := fmt.Sprintf("config/env/%s.env", envName)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
