// Package config provides XML-based configuration for the PDFTools server.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/theme"
	"github.com/pdftools/backend/internal/wizard"
)

// DefaultFileName is the config file created beside the executable.
const DefaultFileName = "pdftools.config"

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PDFTools"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Progress simulation and upload limits
	Wizard WizardConfig `xml:"Wizard"`

	// Session lifetime
	Sessions SessionsConfig `xml:"Sessions"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// WizardConfig contains the fake processing timings and the file limit
type WizardConfig struct {
	TickIntervalMs    int     `xml:"TickIntervalMs"`
	MaxIncrement      float64 `xml:"MaxIncrement"`
	CompletionDelayMs int     `xml:"CompletionDelayMs"`
	MaxFiles          int     `xml:"MaxFiles"`
}

// SessionsConfig contains wizard session settings
type SessionsConfig struct {
	MaxSessions            int `xml:"MaxSessions"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	KeepAliveMinutes       int `xml:"KeepAliveMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	RateLimitPerSecond float64 `xml:"RateLimitPerSecond"`
	RateLimitBurst     int     `xml:"RateLimitBurst"`
	SecureCookies      bool    `xml:"SecureCookies"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	LogFormat               string `xml:"LogFormat"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	EnableCompression       bool   `xml:"EnableCompression"`
	CompressionLevel        int    `xml:"CompressionLevel"`
	RequestTimeoutSeconds   int    `xml:"RequestTimeoutSeconds"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
	DefaultTheme            string `xml:"DefaultTheme"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Wizard: WizardConfig{
			TickIntervalMs:    200,
			MaxIncrement:      15,
			CompletionDelayMs: 500,
			MaxFiles:          20,
		},
		Sessions: SessionsConfig{
			MaxSessions:            200,
			SessionTimeoutMinutes:  30,
			KeepAliveMinutes:       5,
			CleanupIntervalMinutes: 5,
		},
		Security: SecurityConfig{
			RateLimitPerSecond: 20,
			RateLimitBurst:     40,
			SecureCookies:      false,
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			LogFormat:               "json",
			EnableRequestLogging:    true,
			EnableCompression:       true,
			CompressionLevel:        5,
			RequestTimeoutSeconds:   30,
			WebSocketMaxMessageSize: 64,
			DefaultTheme:            "light",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		return config, config.Validate()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing elements keep their defaults.
	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PDFTools Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if _, ok := theme.Parse(c.Advanced.DefaultTheme); !ok {
		return fmt.Errorf("invalid default theme %q", c.Advanced.DefaultTheme)
	}
	switch strings.ToLower(c.Advanced.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Advanced.LogLevel)
	}
	switch strings.ToLower(c.Advanced.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Advanced.LogFormat)
	}
	if c.Wizard.MaxFiles < 0 {
		return fmt.Errorf("invalid max files %d", c.Wizard.MaxFiles)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if level := os.Getenv("PDFTOOLS_LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
	if format := os.Getenv("PDFTOOLS_LOG_FORMAT"); format != "" {
		c.Advanced.LogFormat = format
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// Simulation returns the progress animation timings.
func (c *AppConfig) Simulation() wizard.SimulationConfig {
	return wizard.SimulationConfig{
		Interval:        time.Duration(c.Wizard.TickIntervalMs) * time.Millisecond,
		MaxIncrement:    c.Wizard.MaxIncrement,
		CompletionDelay: time.Duration(c.Wizard.CompletionDelayMs) * time.Millisecond,
	}
}

// SessionTimeout returns how long idle sessions are kept.
func (c *AppConfig) SessionTimeout() time.Duration {
	return time.Duration(c.Sessions.SessionTimeoutMinutes) * time.Minute
}

// KeepAlive returns the window that protects recently used sessions.
func (c *AppConfig) KeepAlive() time.Duration {
	return time.Duration(c.Sessions.KeepAliveMinutes) * time.Minute
}

// CleanupInterval returns the period of the session cleanup loop.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Sessions.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Sessions.CleanupIntervalMinutes) * time.Minute
}

// DefaultTheme returns the theme used when a request expresses no preference.
func (c *AppConfig) DefaultTheme() theme.Preference {
	p, _ := theme.Parse(c.Advanced.DefaultTheme)
	return p
}

// LogConfig returns the logger configuration.
func (c *AppConfig) LogConfig() observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Level = strings.ToLower(c.Advanced.LogLevel)
	cfg.Format = strings.ToLower(c.Advanced.LogFormat)
	return cfg
}
