package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "users_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "users_test", cfg.MongoDB.Database)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, 20, cfg.Pagination.DefaultLimit)
	require.Equal(t, 100, cfg.Pagination.MaxLimit)
	require.Equal(t, "mongo", cfg.Store.Driver)
	require.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_DBPartsAndAppPort(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_HOST", "mongo")
	t.Setenv("DB_PORT", "27018")
	t.Setenv("DB_NAME", "people")
	t.Setenv("APP_PORT", "3000")
	t.Setenv("SERVER_ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://mongo:27018/people", cfg.MongoDB.URI)
	require.Equal(t, "people", cfg.MongoDB.Database)
	require.Equal(t, "3000", cfg.Server.Port)
	require.False(t, cfg.IsDevelopment())
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_RejectsBadPagination(t *testing.T) {
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "50")
	t.Setenv("PAGINATION_MAX_LIMIT", "10")
	_, err := LoadConfig()
	require.Error(t, err)
}
