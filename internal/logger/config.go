package logger

import (
	"os"
	"strconv"
)

// LogConfig holds the logging configuration shared by every named logger.
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, file or both
	LogPath    string // directory for log files, relative to the project root
	AppFile    string
	AuditFile  string
	ErrorFile  string
	MaxSize    int  // MB per file before rotation
	MaxBackups int  // rotated files kept
	MaxAge     int  // days
	Compress   bool // gzip rotated files
}

// DefaultConfig builds the configuration from environment variables with
// sensible defaults for local development.
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{
		Level:      envOr("LOG_LEVEL", "info"),
		Format:     envOr("LOG_FORMAT", "text"),
		Output:     envOr("LOG_OUTPUT", "stdout"),
		LogPath:    envOr("LOG_PATH", "logs"),
		AppFile:    "app.log",
		AuditFile:  "audit.log",
		ErrorFile:  "error.log",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSize = n
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
