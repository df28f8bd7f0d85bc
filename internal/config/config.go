package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

// Defaults
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultAPIPrefix      = "/test/api"
	DefaultPageSize       = 10
	DefaultTimeoutSeconds = 30
	DefaultEnvironment    = "local"
)

var (
	// ConfigDir is the global configuration directory (~/.apiconsole)
	ConfigDir string

	// ConfigFile is the YAML settings file
	ConfigFile string

	// DatabasePath is the SQLite database file for request templates
	DatabasePath string

	// LogDir holds rotated log files
	LogDir string
)

// Initialize sets up the configuration directories
// It creates ~/.apiconsole/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".apiconsole"))
}

// InitializeAt is Initialize rooted at an explicit directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "apiconsole.db")
	LogDir = filepath.Join(ConfigDir, "logs")

	for _, d := range []string{ConfigDir, LogDir} {
		if err := os.MkdirAll(d, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}
	return nil
}

// Config holds all runtime settings.
// Values come from the YAML file first and environment variables second.
type Config struct {
	BaseURL        string            `yaml:"baseUrl"`        // APICONSOLE_BASE_URL
	APIPrefix      string            `yaml:"apiPrefix"`      // APICONSOLE_API_PREFIX
	PageSize       int               `yaml:"pageSize"`       // APICONSOLE_PAGE_SIZE
	TimeoutSeconds float64           `yaml:"timeoutSeconds"` // APICONSOLE_TIMEOUT_SECONDS
	Environment    string            `yaml:"environment"`    // APICONSOLE_ENVIRONMENT
	AccessToken    string            `yaml:"accessToken"`    // APICONSOLE_TOKEN
	HTTPTimeout    time.Duration     `yaml:"-"`              // APICONSOLE_HTTP_TIMEOUT_MS
	HTTPTimeoutMs  int               `yaml:"httpTimeoutMs"`
	Headers        map[string]string `yaml:"headers,omitempty"`

	Log LogConfig `yaml:"log"`
}

// LogConfig mirrors logging.Config in the settings file
type LogConfig struct {
	Level      string `yaml:"level"`      // LOG_LEVEL
	File       string `yaml:"file"`       // LOG_FILE
	MaxSizeMB  int    `yaml:"maxSizeMb"`  // LOG_MAX_SIZE_MB
	MaxBackups int    `yaml:"maxBackups"` // LOG_MAX_BACKUPS
	MaxAgeDays int    `yaml:"maxAgeDays"` // LOG_MAX_AGE_DAYS
	Compress   bool   `yaml:"compress"`   // LOG_COMPRESS
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		APIPrefix:      DefaultAPIPrefix,
		PageSize:       DefaultPageSize,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Environment:    DefaultEnvironment,
		HTTPTimeoutMs:  10000,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load reads path (if it exists) and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.BaseURL = getEnvString("APICONSOLE_BASE_URL", cfg.BaseURL)
	cfg.APIPrefix = getEnvString("APICONSOLE_API_PREFIX", cfg.APIPrefix)
	cfg.PageSize = getEnvInt("APICONSOLE_PAGE_SIZE", cfg.PageSize)
	cfg.TimeoutSeconds = getEnvFloat("APICONSOLE_TIMEOUT_SECONDS", cfg.TimeoutSeconds)
	cfg.Environment = getEnvString("APICONSOLE_ENVIRONMENT", cfg.Environment)
	cfg.AccessToken = getEnvString("APICONSOLE_TOKEN", cfg.AccessToken)
	cfg.HTTPTimeout = getEnvDurationMs("APICONSOLE_HTTP_TIMEOUT_MS", cfg.HTTPTimeoutMs)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnvString("LOG_FILE", cfg.Log.File)
	cfg.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", cfg.Log.MaxBackups)
	cfg.Log.MaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", cfg.Log.MaxAgeDays)
	cfg.Log.Compress = getEnvBool("LOG_COMPRESS", cfg.Log.Compress)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the console cannot run with
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("baseUrl must not be empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("pageSize must be positive, got %d", c.PageSize)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %v", c.TimeoutSeconds)
	}
	return nil
}

// Save writes the settings file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LogFilePath returns the configured log file or the default under LogDir
func (c *Config) LogFilePath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	if LogDir == "" {
		return ""
	}
	return filepath.Join(LogDir, "apiconsole.log")
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
