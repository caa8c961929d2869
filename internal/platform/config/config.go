// Package config はアプリケーション設定を読み込みます。
//
// 優先順位（後勝ち）:
//  1. デフォルト値
//  2. CONFIG_FILEで指定したYAMLファイル
//  3. 環境変数（.envファイルの内容を含む）
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 環境変数キー
const (
	EnvConfigFile         = "CONFIG_FILE"
	EnvPort               = "PORT"
	EnvStoreDriver        = "STORE_DRIVER"
	EnvSQLitePath         = "SQLITE_PATH"
	EnvDBDSN              = "DB_DSN"
	EnvRedisHost          = "REDIS_HOST"
	EnvRedisPort          = "REDIS_PORT"
	EnvRedisPassword      = "REDIS_PASSWORD"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvGeminiModel        = "GEMINI_MODEL"
	EnvGeminiBaseURL      = "GEMINI_BASE_URL"
	EnvPlanRequestTimeout = "PLAN_REQUEST_TIMEOUT"
	EnvPasswordScheme     = "PASSWORD_SCHEME"
	EnvJWTSecret          = "JWT_SECRET"
	EnvJWTExpiration      = "JWT_EXPIRATION"
	EnvCORSEnabled        = "CORS_ENABLED"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

// STORE_DRIVERの値
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Port        string `yaml:"port"`
	StoreDriver string `yaml:"store_driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	DBDSN       string `yaml:"db_dsn"`

	Redis  RedisConfig  `yaml:"redis"`
	Gemini GeminiConfig `yaml:"gemini"`

	PlanRequestTimeout time.Duration `yaml:"plan_request_timeout"`
	PasswordScheme     string        `yaml:"password_scheme"`

	JWTSecret     string        `yaml:"jwt_secret"`
	JWTExpiration time.Duration `yaml:"jwt_expiration"`
	CORSEnabled   bool          `yaml:"cors_enabled"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// RedisConfig はRedis接続設定です。
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// GeminiConfig は生成サービスの設定です。
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Default はデフォルト値で埋めたConfigを返します。
func Default() Config {
	return Config{
		Port:               "8080",
		StoreDriver:        DriverSQLite,
		SQLitePath:         "dietguide.db",
		Redis:              RedisConfig{Host: "localhost", Port: "6379"},
		Gemini:             GeminiConfig{Model: "gemini-2.5-flash"},
		PlanRequestTimeout: 60 * time.Second,
		PasswordScheme:     "bcrypt",
		JWTExpiration:      24 * time.Hour,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load は.env・YAMLファイル・環境変数から設定を読み込みます。
// .envファイルが存在しない場合はシステムの環境変数のみを使用します。
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	slog.Debug("config file loaded", "path", path)
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, EnvPort)
	setString(&c.StoreDriver, EnvStoreDriver)
	setString(&c.SQLitePath, EnvSQLitePath)
	setString(&c.DBDSN, EnvDBDSN)
	setString(&c.Redis.Host, EnvRedisHost)
	setString(&c.Redis.Port, EnvRedisPort)
	setString(&c.Redis.Password, EnvRedisPassword)
	setString(&c.Gemini.APIKey, EnvGeminiAPIKey)
	setString(&c.Gemini.Model, EnvGeminiModel)
	setString(&c.Gemini.BaseURL, EnvGeminiBaseURL)
	setString(&c.PasswordScheme, EnvPasswordScheme)
	setString(&c.JWTSecret, EnvJWTSecret)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.LogFormat, EnvLogFormat)

	if err := setDuration(&c.PlanRequestTimeout, EnvPlanRequestTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.JWTExpiration, EnvJWTExpiration); err != nil {
		return err
	}
	if v := os.Getenv(EnvCORSEnabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCORSEnabled, v, err)
		}
		c.CORSEnabled = b
	}
	return nil
}

// Validate は設定値の組み合わせを検証します。
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverRedis:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvStoreDriver, DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown %s %q", EnvStoreDriver, c.StoreDriver)
	}
	if c.PlanRequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvPlanRequestTimeout)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
