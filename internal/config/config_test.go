package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "skillbridge_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "skillbridge_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, int64(1024), cfg.Uploads.MaxBytes)
	require.Equal(t, "skillbridge", cfg.Storage.Bucket)
	require.Equal(t, "5000", cfg.Server.Port)
}

func TestLoadConfig_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingMongoURI)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SERVER_ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	require.Error(t, err)
}
