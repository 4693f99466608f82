// Package config はサーバーの設定を環境変数から読み込みます。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/avireal12/Visionary-ai-v2/internal/logging"
	"github.com/avireal12/Visionary-ai-v2/pkg/generator"
)

// Config はサーバー全体の設定です。起動時に一度だけ読み込みます。
type Config struct {
	// サーバー
	Port     string
	LogLevel slog.Level

	// モデル
	APIKey       string
	Model        string
	TextModel    string
	SafetyPolicy generator.SafetyPolicy

	// ギャラリー
	GalleryBucket string
	GalleryLimit  int

	// 参照画像
	ReferenceCacheTTL time.Duration
}

// Load は .env ファイル (あれば) と環境変数から設定を読み込み、検証して返します。
func Load() (*Config, error) {
	godotenv.Load() // .env があれば読み込む。なければ黙って続行

	cfg := &Config{
		Port:              getEnvOrDefault("VISIONARY_PORT", "8080"),
		APIKey:            os.Getenv(generator.EnvAPIKey),
		Model:             getEnvOrDefault("VISIONARY_MODEL", "gemini-2.5-flash-image-preview"),
		TextModel:         getEnvOrDefault("VISIONARY_TEXT_MODEL", "gemini-2.5-flash"),
		GalleryBucket:     os.Getenv("VISIONARY_GALLERY_BUCKET"),
		GalleryLimit:      getEnvIntOrDefault("VISIONARY_GALLERY_LIMIT", 24),
		ReferenceCacheTTL: getEnvDurationOrDefault("VISIONARY_REFERENCE_CACHE_TTL", time.Hour),
	}

	level, err := logging.ParseLevel(os.Getenv("VISIONARY_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	policy, err := generator.ParseSafetyPolicy(os.Getenv("VISIONARY_SAFETY_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.SafetyPolicy = policy

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は必須項目を検査します。資格情報の欠落はネットワークに触れる前に
// ここで止めます。
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("環境変数 %s が設定されていません。APIキーを設定してから起動してください", generator.EnvAPIKey)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("VISIONARY_PORT が数値ではありません: %s", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
