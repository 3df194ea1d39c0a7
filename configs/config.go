package configs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/config"

	"github.com/joho/godotenv"
)

// Config は、アプリケーション全体の設定を定義します
type Config struct {
	Gemini  config.GeminiConfig
	Storage config.StorageConfig
	Server  config.ServerConfig
	Discord config.DiscordConfig
	Log     config.LogConfig
}

// SecretFetcher は、ホスト型のシークレットストアから値を取得するインターフェースです
type SecretFetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// LoadConfig は、環境変数から設定を読み込みます
// envFiles が空の場合はカレントディレクトリの .env を読み込みます
func LoadConfig(envFiles ...string) (*Config, error) {
	// .envファイルを読み込み（ファイルが存在しない場合は無視）
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Warn(".envファイルの読み込みに失敗しました", "error", err)
	}

	naming, err := domain.ParseNamingPolicy(getEnvOrDefault("OUTPUT_NAMING", string(domain.NamingOverwrite)))
	if err != nil {
		return nil, fmt.Errorf("OUTPUT_NAMING の解析に失敗: %w", err)
	}

	return &Config{
		Gemini: config.GeminiConfig{
			APIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
			APIKeyParam: getEnvOrDefault("GEMINI_API_KEY_PARAM", ""),
			ModelName:   getEnvOrDefault("GEMINI_IMAGE_MODEL", domain.DefaultImageModel),
		},
		Storage: config.StorageConfig{
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "generated_images"),
			Bucket:    getEnvOrDefault("OUTPUT_BUCKET", ""),
			Naming:    naming,
		},
		Server: config.ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Discord: config.DiscordConfig{
			BotToken: getEnvOrDefault("DISCORD_BOT_TOKEN", ""),
		},
		Log: config.LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}, nil
}

// ResolveAPIKey は、APIキーが環境変数で与えられていない場合にシークレットストアから取得します
func (c *Config) ResolveAPIKey(ctx context.Context, fetcher SecretFetcher) error {
	if c.Gemini.APIKey != "" || c.Gemini.APIKeyParam == "" {
		return nil
	}
	if fetcher == nil {
		return fmt.Errorf("GEMINI_API_KEY_PARAM が指定されていますがシークレットストアが利用できません")
	}

	apiKey, err := fetcher.Fetch(ctx, c.Gemini.APIKeyParam)
	if err != nil {
		return fmt.Errorf("シークレットストアからのAPIキー取得に失敗: %w", err)
	}
	c.Gemini.APIKey = apiKey
	return nil
}

// Validate は、設定の妥当性を検証します
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return domain.ErrMissingAPIKey
	}

	if c.Gemini.ModelName == "" {
		return fmt.Errorf("GEMINI_IMAGE_MODEL が設定されていません")
	}

	if c.Storage.Bucket == "" && c.Storage.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR または OUTPUT_BUCKET のいずれかを設定する必要があります")
	}

	return nil
}

// ValidateServer は、Webサーバーの起動に必要な設定を検証します
func (c *Config) ValidateServer() error {
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT は1から65535の整数である必要があります")
	}
	return nil
}

// ValidateDiscord は、Discord Botの起動に必要な設定を検証します
func (c *Config) ValidateDiscord() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN が設定されていません")
	}
	return nil
}

// getEnvOrDefault は、環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
