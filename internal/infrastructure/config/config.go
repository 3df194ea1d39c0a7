package config

import "nanobanana/internal/domain"

// GeminiConfig は、Gemini API関連の設定を定義します
type GeminiConfig struct {
	APIKey      string
	APIKeyParam string // APIキーを保持するSSMパラメータ名（APIKeyが空の場合のみ参照）
	ModelName   string // 画像生成・編集用モデル名
}

// DefaultGeminiConfig は、デフォルトのGemini設定を返します
func DefaultGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		ModelName: domain.DefaultImageModel,
	}
}

// StorageConfig は、生成画像の保存先に関する設定を定義します
type StorageConfig struct {
	OutputDir string
	Bucket    string // 空でなければS3に保存
	Naming    domain.NamingPolicy
}

// ServerConfig は、Webフォームの設定を定義します
type ServerConfig struct {
	Port string
}

// DiscordConfig は、Discord関連の設定を定義します
type DiscordConfig struct {
	BotToken string
}

// LogConfig は、ログ出力の設定を定義します
type LogConfig struct {
	Level string
}
