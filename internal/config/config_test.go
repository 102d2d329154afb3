package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "LOG_LEVEL", "STORAGE_DRIVER", "DATA_FILE", "SQLITE_PATH",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"MIGRATIONS_PATH", "SCHEDULER_INTERVAL", "SCHEDULER_CATCH_UP",
		"SESSION_TTL", "SENT_RETENTION",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "test_token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverJSON, cfg.Storage.Driver)
	assert.Equal(t, "data/reminders.json", cfg.Storage.DataFile)
	assert.Equal(t, "data/reminders.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "reminderbot", cfg.Database.Name)
	assert.Equal(t, "reminderbot", cfg.Database.User)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.False(t, cfg.Scheduler.CatchUp)
	assert.Equal(t, 720*time.Hour, cfg.Scheduler.SentRetention)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SCHEDULER_INTERVAL", "30s")
	t.Setenv("SCHEDULER_CATCH_UP", "true")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SENT_RETENTION", "168h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.True(t, cfg.Scheduler.CatchUp)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 168*time.Hour, cfg.Scheduler.SentRetention)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{
			name:     "missing bot token",
			env:      map[string]string{},
			contains: "BOT_TOKEN",
		},
		{
			name:     "postgres without password",
			env:      map[string]string{"BOT_TOKEN": "t", "STORAGE_DRIVER": "postgres"},
			contains: "DB_PASSWORD",
		},
		{
			name:     "unknown driver",
			env:      map[string]string{"BOT_TOKEN": "t", "STORAGE_DRIVER": "mongo"},
			contains: "STORAGE_DRIVER",
		},
		{
			name:     "bad interval",
			env:      map[string]string{"BOT_TOKEN": "t", "SCHEDULER_INTERVAL": "soon"},
			contains: "SCHEDULER_INTERVAL",
		},
		{
			name:     "zero interval",
			env:      map[string]string{"BOT_TOKEN": "t", "SCHEDULER_INTERVAL": "0s"},
			contains: "SCHEDULER_INTERVAL",
		},
		{
			name:     "bad catch-up flag",
			env:      map[string]string{"BOT_TOKEN": "t", "SCHEDULER_CATCH_UP": "maybe"},
			contains: "SCHEDULER_CATCH_UP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
