package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
port: 9090
store: postgres
database_url: postgres://jobboard@localhost:5432/jobboard
redis_url: redis://localhost:6379/0
auto_migrate: true
cors_origins:
  - http://localhost:3000
`
	tmpFile := filepath.Join(t.TempDir(), "jobboard.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://jobboard@localhost:5432/jobboard", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "jobboard.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("port: [unclosed"), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/jobboard.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory defaults", Defaults(), ""},
		{"postgres with url", Config{Port: 80, Store: StorePostgres, DatabaseURL: "postgres://x"}, ""},
		{"postgres without url", Config{Port: 80, Store: StorePostgres}, "database_url"},
		{"unknown store", Config{Port: 80, Store: "sqlite"}, "unknown store"},
		{"port out of range", Config{Port: 70000, Store: StoreMemory}, "port"},
		{"zero port", Config{Store: StoreMemory}, "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000, DatabaseURL: "postgres://file"}
	merged := cfg.MergeWithDefaults(Config{
		Port:        8080,
		Store:       StorePostgres,
		DatabaseURL: "postgres://env",
		RedisURL:    "redis://env",
		AutoMigrate: true,
	})

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, StorePostgres, merged.Store)
	assert.Equal(t, "postgres://file", merged.DatabaseURL)
	assert.Equal(t, "redis://env", merged.RedisURL)
	assert.True(t, merged.AutoMigrate)
	assert.Zero(t, cfg.Store, "receiver must not be modified")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PORT", "3001")

	cfg := FromEnv()
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 3001, cfg.Port)
	assert.Empty(t, cfg.RedisURL)
}
