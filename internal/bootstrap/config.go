package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/hub"
	"course-classroom/internal/infra/setup"
)

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	AppEnv     string // development / production
	ServerPort string
	LogLevel   string

	DB setup.DBOptions

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string // Redis Key 前缀

	JWTSecret      string
	JWTExpiryHours int

	BlobRoot          string
	CORSAllowedOrigin string

	RateLimitMax      int
	RateLimitWindow   time.Duration
	WSMaxMessageSize  int64
	HubSendBuffer     int
	WorkerConcurrency int
}

// LoadConfig 从环境变量加载配置，.env 文件存在时先加载它。
// 只做解析和默认值，必填项由 Validate 检查。
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // 忽略错误，允许只使用环境变量

	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DB: setup.DBOptions{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			DSN:      os.Getenv("DB_DSN"),
		},
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:         getEnv("REDIS_KEY_PREFIX", "cc:"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		BlobRoot:          getEnv("BLOB_ROOT", "./media"),
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.JWTExpiryHours, err = getInt("JWT_EXPIRY_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = getInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.HubSendBuffer, err = getInt("HUB_SEND_BUFFER", hub.DefaultSendBuffer); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency, err = getInt("WORKER_CONCURRENCY", 10); err != nil {
		return nil, err
	}
	maxMsg, err := getInt("WS_MAX_MESSAGE_SIZE", hub.DefaultMaxMessageSize)
	if err != nil {
		return nil, err
	}
	cfg.WSMaxMessageSize = int64(maxMsg)

	cfg.RateLimitWindow = time.Second
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if cfg.RateLimitWindow, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("environment variable RATE_LIMIT_WINDOW is not a duration: %w", err)
		}
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate 检查启动服务所需的配置
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if _, err := c.DB.BuildDSN(); err != nil {
		return err
	}
	return nil
}

// IsProduction 判断是否运行在生产环境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return n, nil
}
