package config

import (
	"os"
	"strconv"
	"strings"

	"pdf-annotator/internal/domain"
)

// defaultAllowedOrigins are the local front-end dev servers.
var defaultAllowedOrigins = []string{
	"http://localhost:5173", // SvelteKit dev server
	"http://localhost:4173", // SvelteKit preview
	"http://localhost:3000", // Alternative dev port
}

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	MaxFileSize     int64
	LogLevel        string
	LogFormat       string
	BaseScale       float64
	DefaultFontSize float64
	DefaultColor    domain.Color
	AllowedOrigins  []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	color := domain.Color(getEnvOrDefault("DEFAULT_COLOR", string(domain.DefaultColor)))
	if !color.Valid() {
		color = domain.DefaultColor
	}
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:     getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
		BaseScale:       getEnvPositiveFloatOrDefault("BASE_SCALE", 1.5),
		DefaultFontSize: getEnvPositiveFloatOrDefault("DEFAULT_FONT_SIZE", domain.DefaultFontSize),
		DefaultColor:    color,
		AllowedOrigins:  getEnvListOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns the log output format, text or json
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetBaseScale returns the pixels per point at zoom 1
func (c *AppConfig) GetBaseScale() float64 {
	return c.BaseScale
}

// GetDefaultFontSize returns the initial font size of new sessions
func (c *AppConfig) GetDefaultFontSize() float64 {
	return c.DefaultFontSize
}

// GetDefaultColor returns the initial annotation color of new sessions
func (c *AppConfig) GetDefaultColor() domain.Color {
	return c.DefaultColor
}

// GetAllowedOrigins returns the CORS origin allow-list
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvPositiveFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
