// Package config provides configuration management for the Cutroom engine.
// Configuration is loaded from environment variables with sensible
// defaults; a .env file next to the binary is honored when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort      = 8899
	DefaultLogLevel  = "info"
	DefaultDataDir   = ".cutroom"
	DefaultFrameRate = 24.0

	// Environment variable names
	EnvPort        = "CUTROOM_PORT"
	EnvLogLevel    = "CUTROOM_LOG_LEVEL"
	EnvDataDir     = "CUTROOM_DATA_DIR"
	EnvFrameRate   = "CUTROOM_FRAME_RATE"
	EnvRenderURL   = "CUTROOM_RENDER_URL"
	EnvRenderToken = "CUTROOM_RENDER_TOKEN"

	// Database filename
	DBFilename = "cutroom.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	MediaDir() string
	ArtifactsDir() string
	FrameRate() float64
	RenderURL() string
	RenderToken() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port      int
	logLevel  string
	dataDir   string
	frameRate float64

	renderURL   string
	renderToken string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:      DefaultPort,
		logLevel:  DefaultLogLevel,
		dataDir:   defaultDataDir(),
		frameRate: DefaultFrameRate,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if fr := os.Getenv(EnvFrameRate); fr != "" {
		rate, err := strconv.ParseFloat(fr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFrameRate, err)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("invalid %s: frame rate must be positive", EnvFrameRate)
		}
		cfg.frameRate = rate
	}

	cfg.renderURL = os.Getenv(EnvRenderURL)
	cfg.renderToken = os.Getenv(EnvRenderToken)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// MediaDir returns where uploaded asset media is stored
func (c *EnvConfig) MediaDir() string {
	return filepath.Join(c.dataDir, "media")
}

// ArtifactsDir returns where export artifacts (EDL, XML) are written
func (c *EnvConfig) ArtifactsDir() string {
	return filepath.Join(c.dataDir, "artifacts")
}

// FrameRate returns the project frame rate used for XML import/export
func (c *EnvConfig) FrameRate() float64 {
	return c.frameRate
}

// RenderURL returns the base URL of the external render service, empty
// when rendering is not configured
func (c *EnvConfig) RenderURL() string {
	return c.renderURL
}

// RenderToken returns the bearer token for the render service
func (c *EnvConfig) RenderToken() string {
	return c.renderToken
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
