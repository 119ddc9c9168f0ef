// ABOUTME: Tests for configuration loading, env expansion and validation
// ABOUTME: Exercises defaults, duration parsing and failure cases

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "botdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "localhost:8390"
database:
  driver: sqlite
  path: "/tmp/botdeck-test.db"
discord:
  connect_timeout: "20s"
  message_limit: 25
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8390", cfg.Server.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/botdeck-test.db", cfg.Database.Path)
	assert.Equal(t, 20*time.Second, cfg.Discord.ConnectTimeout)
	assert.Equal(t, 25, cfg.Discord.MessageLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "localhost:8390"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, DefaultMessageLimit, cfg.Discord.MessageLimit)
	assert.Zero(t, cfg.Discord.ConnectTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("BOTDECK_TEST_SECRET", "sekrit-value")

	path := writeConfig(t, `
server:
  http_addr: "localhost:8390"
auth:
  jwt_secret: "${BOTDECK_TEST_SECRET}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit-value", cfg.Auth.JWTSecret)
}

func TestEnvVarExpansionUnset(t *testing.T) {
	assert.Equal(t, "prefix--suffix", expandEnvVars("prefix-${BOTDECK_DEFINITELY_UNSET}-suffix"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name: "tailscale without hostname",
			mutate: func(c *Config) {
				c.Tailscale.Enabled = true
				c.Tailscale.Hostname = ""
			},
			wantErr: "tailscale.hostname",
		},
		{
			name: "tailscale does not need http addr",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale.Enabled = true
				c.Tailscale.Hostname = "botdeck"
			},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "postgres" },
			wantErr: "database.driver",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Database.Driver = "sqlite"
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name: "password hash without jwt secret",
			mutate: func(c *Config) {
				c.Auth.PasswordHash = "$2a$10$something"
				c.Auth.JWTSecret = ""
			},
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "message limit too high",
			mutate:  func(c *Config) { c.Discord.MessageLimit = 101 },
			wantErr: "message_limit",
		},
		{
			name:    "message limit too low",
			mutate:  func(c *Config) { c.Discord.MessageLimit = 0 },
			wantErr: "message_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{HTTPAddr: "localhost:8390"},
				Database: DatabaseConfig{Driver: "memory"},
				Discord:  DiscordConfig{MessageLimit: 50},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseDurationsInvalid(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "localhost:8390"
discord:
  connect_timeout: "not-a-duration"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect_timeout")
}
