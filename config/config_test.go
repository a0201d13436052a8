package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Storage:  StorageConfig{Driver: DriverSQLite, Path: "/path/to/db"},
		Security: SecurityConfig{APIKey: "test-key"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing storage path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: true,
		},
		{
			name:    "memory driver needs no path",
			mutate:  func(c *Config) { c.Storage = StorageConfig{Driver: DriverMemory} },
			wantErr: false,
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "postgres" },
			wantErr: true,
		},
		{
			name:    "missing API key",
			mutate:  func(c *Config) { c.Security.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "telegram without allowed users",
			mutate:  func(c *Config) { c.Telegram.Token = "bot-token" },
			wantErr: true,
		},
		{
			name:    "negative snooze",
			mutate:  func(c *Config) { c.Ringing.SnoozeSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Port: 8080},
		Storage:  StorageConfig{Path: "/tmp/reveille.db"},
		Security: SecurityConfig{APIKey: "k"},
	}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 60*time.Second, cfg.MaxSleep())
	assert.Equal(t, 250*time.Millisecond, cfg.EnforceInterval())
	assert.Equal(t, 60, cfg.Ringing.SnoozeSeconds)
	assert.Equal(t, 180, cfg.Ringing.SuppressSeconds)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.Local, cfg.Location())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	jsonConfig := `{
		"server": {"host": "127.0.0.1", "port": 8080},
		"storage": {"driver": "badger", "path": "/var/lib/reveille"},
		"security": {"api_key": "test-key"},
		"scheduling": {"require_exact_permission": true, "exact_allowed": false},
		"telegram": {
			"token": "bot-token",
			"webhook_secret": "webhook-secret",
			"allowed_users": [42],
			"chat_ids": [42, 43]
		},
		"timezone": "Europe/Berlin"
	}`

	err := os.WriteFile(configPath, []byte(jsonConfig), 0644)
	require.NoError(t, err)

	// Test loading valid config
	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, DriverBadger, config.Storage.Driver)
	assert.Equal(t, "/var/lib/reveille", config.Storage.Path)
	assert.True(t, config.Scheduling.RequireExactPermission)
	assert.False(t, config.Scheduling.ExactAllowed)
	assert.True(t, config.TelegramEnabled())
	assert.True(t, config.IsUserAllowed(42))
	assert.False(t, config.IsUserAllowed(7))
	assert.Equal(t, []int64{42, 43}, config.Telegram.ChatIDs)
	assert.Equal(t, "Europe/Berlin", config.Location().String())

	// Test loading non-existent file
	_, err = Load("/nonexistent/config.json")
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	// Test loading invalid JSON
	invalidPath := filepath.Join(tmpDir, "invalid.json")
	err = os.WriteFile(invalidPath, []byte("invalid json"), 0644)
	require.NoError(t, err)

	_, err = Load(invalidPath)
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "reveille.yaml")

	yamlConfig := `
server:
  port: 9000
storage:
  driver: memory
security:
  api_key: yaml-key
ringing:
  snooze_seconds: 300
  suppress_seconds: 30
logging:
  format: text
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlConfig), 0644))

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, DriverMemory, config.Storage.Driver)
	assert.Equal(t, "yaml-key", config.Security.APIKey)
	assert.Equal(t, 300, config.Ringing.SnoozeSeconds)
	assert.Equal(t, 30, config.Ringing.SuppressSeconds)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REVEILLE_HOST", "127.0.0.1")
	t.Setenv("REVEILLE_PORT", "9090")
	t.Setenv("REVEILLE_STORAGE_PATH", "/custom/db/path")
	t.Setenv("REVEILLE_API_KEY", "env-api-key")
	t.Setenv("REVEILLE_REQUIRE_EXACT_PERMISSION", "true")
	t.Setenv("REVEILLE_EXACT_ALLOWED", "0")
	t.Setenv("REVEILLE_TELEGRAM_TOKEN", "env-bot-token")
	t.Setenv("REVEILLE_TELEGRAM_ALLOWED_USERS", "1, 2,bogus")
	t.Setenv("REVEILLE_SNOOZE_SECONDS", "120")

	config, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, DriverSQLite, config.Storage.Driver)
	assert.Equal(t, "/custom/db/path", config.Storage.Path)
	assert.Equal(t, "env-api-key", config.Security.APIKey)
	assert.True(t, config.Scheduling.RequireExactPermission)
	assert.False(t, config.Scheduling.ExactAllowed)
	assert.Equal(t, "env-bot-token", config.Telegram.Token)
	assert.Equal(t, []int64{1, 2}, config.Telegram.AllowedUsers)
	assert.Equal(t, 120, config.Ringing.SnoozeSeconds)
}

func TestLoadFromEnv_MissingAPIKey(t *testing.T) {
	t.Setenv("REVEILLE_API_KEY", "")

	_, err := LoadFromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
