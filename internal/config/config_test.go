package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
store:
  backend: memory
content:
  cache_ttl: 30s
kafka:
  brokers: ["k1:9092", "k2:9092"]
`)

	cfg, err := LoadConfig(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Content.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "academy.leads", cfg.Kafka.Topic)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "app:\n  environment: staging\n")
	t.Setenv("APP_SERVER_HTTP_PORT", "9999")
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")

	cfg, err := LoadConfig(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.HTTP.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoDB.URI)
	assert.Equal(t, "staging", cfg.App.Environment)
}

func TestLoadConfig_PrefixedSecretWins(t *testing.T) {
	dir := writeConfig(t, "")
	t.Setenv("APP_AUTH_JWT_SECRET", "prefixed")
	t.Setenv("AUTH_JWT_SECRET", "plain")

	cfg, err := LoadConfig(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Auth.JWTSecret)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, BackendMongoDB, cfg.Store.Backend)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir(), "none")
		require.NoError(t, err)
		cfg.Auth.JWTSecret = "secret"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "cassandra" }},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"memory in production", func(c *Config) {
			c.Store.Backend = BackendMemory
			c.App.Environment = "production"
		}},
		{"kafka without topic", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Topic = ""
		}},
		{"redis disabled", func(c *Config) { c.Redis.Enabled = false }},
		{"bootstrap without password", func(c *Config) { c.Auth.BootstrapEmail = "admin@academy.test" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_VaultSuppliesJWTSecret(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir(), "none")
	require.NoError(t, err)
	cfg.Vault.Enabled = true
	assert.NoError(t, cfg.Validate())
}
