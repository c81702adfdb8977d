// Package config はアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config はプロセス全体の設定です。起動時に一度だけ読み込まれ、以降は読み取り専用です。
type Config struct {
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret string
	TokenTTL  time.Duration

	RedisURL string
	CacheTTL time.Duration

	AllowOrigins []string

	LogLevel  string
	LogFormat string
	GinMode   string
}

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
	ErrMissingDBName    = errors.New("DB_NAME is not set")
)

// Load は .env と環境変数から設定を読み込みます。
// .env が存在しない場合は環境変数のみを使用します。
func Load(envFiles ...string) (*Config, error) {
	// .env はオプション
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	tokenTTL, err := durationSetting(v, "TOKEN_TTL")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationSetting(v, "CACHE_TTL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         v.GetString("PORT"),
		DBUser:       v.GetString("DB_USER"),
		DBPass:       v.GetString("DB_PASS"),
		DBHost:       v.GetString("DB_HOST"),
		DBPort:       v.GetString("DB_PORT"),
		DBName:       v.GetString("DB_NAME"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		TokenTTL:     tokenTTL,
		RedisURL:     v.GetString("REDIS_URL"),
		CacheTTL:     cacheTTL,
		AllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		GinMode:      v.GetString("GIN_MODE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Validate は必須項目と値の範囲を確認します。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.DBName == "" {
		return ErrMissingDBName
	}
	if c.TokenTTL < time.Second {
		return fmt.Errorf("invalid TOKEN_TTL: %s (must be at least 1s)", c.TokenTTL)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid CACHE_TTL: %s", c.CacheTTL)
	}
	return nil
}

// Addr は HTTP サーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// durationSetting は "90m" のような期間表記を読み込みます。単位のない整数は秒として扱います。
func durationSetting(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
