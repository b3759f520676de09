package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_USER", "root")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "cc:", cfg.KeyPrefix)
	assert.Equal(t, "./media", cfg.BlobRoot)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Second, cfg.RateLimitWindow)
	assert.Equal(t, int64(8<<20), cfg.WSMaxMessageSize)
	assert.Equal(t, 256, cfg.HubSendBuffer)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("HUB_SEND_BUFFER", "16")
	t.Setenv("LOG_LEVEL", "loud")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 16, cfg.HubSendBuffer)
	assert.Equal(t, "info", cfg.LogLevel, "无效的日志级别回退到 info")
}

func TestLoadConfig_InvalidNumbers(t *testing.T) {
	testCases := []struct {
		key   string
		value string
	}{
		{"REDIS_DB", "zero"},
		{"RATE_LIMIT_MAX", "many"},
		{"WS_MAX_MESSAGE_SIZE", "8MB"},
		{"RATE_LIMIT_WINDOW", "soon"},
	}
	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		t.Setenv("DB_DRIVER", "sqlite")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		cfg.RedisAddr = "localhost:6379"
		cfg.JWTSecret = "secret"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.RedisAddr = ""
	assert.ErrorContains(t, cfg.Validate(), "REDIS_ADDR")

	cfg = valid()
	cfg.JWTSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = valid()
	cfg.DB.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}
