package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Security   SecurityConfig   `json:"security" yaml:"security"`
	Scheduling SchedulingConfig `json:"scheduling" yaml:"scheduling"`
	Ringing    RingingConfig    `json:"ringing" yaml:"ringing"`
	Telegram   TelegramConfig   `json:"telegram" yaml:"telegram"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Timezone   string           `json:"timezone" yaml:"timezone"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	Path   string `json:"path" yaml:"path"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	APIKey string `json:"api_key" yaml:"api_key"`
}

// SchedulingConfig controls exact-wake authorisation and the timer loop
type SchedulingConfig struct {
	// RequireExactPermission makes the daemon honour ExactAllowed; when false
	// exact scheduling is always permitted.
	RequireExactPermission bool `json:"require_exact_permission" yaml:"require_exact_permission"`
	ExactAllowed           bool `json:"exact_allowed" yaml:"exact_allowed"`
	MaxSleepSeconds        int  `json:"max_sleep_seconds" yaml:"max_sleep_seconds"`
}

// RingingConfig contains ringing session settings
type RingingConfig struct {
	EnforceIntervalMS int `json:"enforce_interval_ms" yaml:"enforce_interval_ms"`
	SnoozeSeconds     int `json:"snooze_seconds" yaml:"snooze_seconds"`
	SuppressSeconds   int `json:"suppress_seconds" yaml:"suppress_seconds"`
}

// TelegramConfig contains Telegram bridge settings; empty token disables it
type TelegramConfig struct {
	Token         string  `json:"token" yaml:"token"`
	WebhookSecret string  `json:"webhook_secret" yaml:"webhook_secret"`
	AllowedUsers  []int64 `json:"allowed_users" yaml:"allowed_users"`
	ChatIDs       []int64 `json:"chat_ids" yaml:"chat_ids"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Format string `json:"format" yaml:"format"`
	Level  string `json:"level" yaml:"level"`
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage path is required for %s", ErrInvalidConfig, c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Security.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	if c.Scheduling.MaxSleepSeconds < 0 {
		return fmt.Errorf("%w: max_sleep_seconds cannot be negative", ErrInvalidConfig)
	}
	if c.Scheduling.MaxSleepSeconds == 0 {
		c.Scheduling.MaxSleepSeconds = 60
	}

	if c.Ringing.EnforceIntervalMS < 0 || c.Ringing.SnoozeSeconds < 0 || c.Ringing.SuppressSeconds < 0 {
		return fmt.Errorf("%w: ringing settings cannot be negative", ErrInvalidConfig)
	}
	if c.Ringing.EnforceIntervalMS == 0 {
		c.Ringing.EnforceIntervalMS = 250
	}
	if c.Ringing.SnoozeSeconds == 0 {
		c.Ringing.SnoozeSeconds = 60
	}
	if c.Ringing.SuppressSeconds == 0 {
		c.Ringing.SuppressSeconds = 180
	}

	if c.Telegram.Token != "" && len(c.Telegram.AllowedUsers) == 0 {
		return fmt.Errorf("%w: telegram.allowed_users cannot be empty", ErrInvalidConfig)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
		}
	}

	return nil
}

// Location returns the configured timezone, or time.Local when unset
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MaxSleep returns the timer loop's sleep cap
func (c *Config) MaxSleep() time.Duration {
	return time.Duration(c.Scheduling.MaxSleepSeconds) * time.Second
}

// EnforceInterval returns the volume enforcement tick
func (c *Config) EnforceInterval() time.Duration {
	return time.Duration(c.Ringing.EnforceIntervalMS) * time.Millisecond
}

// TelegramEnabled reports whether the Telegram bridge should start
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}

// IsUserAllowed checks if a Telegram user ID is in the whitelist
func (c *Config) IsUserAllowed(userID int64) bool {
	return slices.Contains(c.Telegram.AllowedUsers, userID)
}

// Load loads configuration from a JSON or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("REVEILLE_HOST", "0.0.0.0"),
			Port: getEnvInt("REVEILLE_PORT", 8080),
		},
		Storage: StorageConfig{
			Driver: getEnv("REVEILLE_STORAGE_DRIVER", DriverSQLite),
			Path:   getEnv("REVEILLE_STORAGE_PATH", "./reveille.db"),
		},
		Security: SecurityConfig{
			APIKey: getEnv("REVEILLE_API_KEY", ""),
		},
		Scheduling: SchedulingConfig{
			RequireExactPermission: getEnvBool("REVEILLE_REQUIRE_EXACT_PERMISSION", false),
			ExactAllowed:           getEnvBool("REVEILLE_EXACT_ALLOWED", true),
			MaxSleepSeconds:        getEnvInt("REVEILLE_MAX_SLEEP_SECONDS", 60),
		},
		Ringing: RingingConfig{
			EnforceIntervalMS: getEnvInt("REVEILLE_ENFORCE_INTERVAL_MS", 250),
			SnoozeSeconds:     getEnvInt("REVEILLE_SNOOZE_SECONDS", 60),
			SuppressSeconds:   getEnvInt("REVEILLE_SUPPRESS_SECONDS", 180),
		},
		Telegram: TelegramConfig{
			Token:         getEnv("REVEILLE_TELEGRAM_TOKEN", ""),
			WebhookSecret: getEnv("REVEILLE_TELEGRAM_WEBHOOK_SECRET", ""),
			AllowedUsers:  getEnvInt64List("REVEILLE_TELEGRAM_ALLOWED_USERS"),
			ChatIDs:       getEnvInt64List("REVEILLE_TELEGRAM_CHAT_IDS"),
		},
		Logging: LoggingConfig{
			Format: getEnv("REVEILLE_LOG_FORMAT", "json"),
			Level:  getEnv("REVEILLE_LOG_LEVEL", "info"),
		},
		Timezone: getEnv("REVEILLE_TIMEZONE", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt64List parses a comma separated list, skipping malformed entries
func getEnvInt64List(key string) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
