package discord

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/codec"

	"github.com/bwmarrin/discordgo"
)

// ResponseHandler は、Discordへのレスポンスのフォーマット処理を担当するハンドラーです
type ResponseHandler struct{}

// NewResponseHandler は新しいResponseHandlerインスタンスを作成します
func NewResponseHandler() *ResponseHandler {
	return &ResponseHandler{}
}

// FormatImageResult は、生成結果をフォローアップメッセージに変換します
// 画像が無い場合は再試行を促すメッセージ、エラーの場合はエラーメッセージを返します
func (h *ResponseHandler) FormatImageResult(img *domain.GeneratedImage, err error, filename string) *discordgo.WebhookParams {
	if err != nil {
		return &discordgo.WebhookParams{Content: h.formatError(err)}
	}
	if img == nil {
		return &discordgo.WebhookParams{Content: "❌ 画像を生成できませんでした。もう一度お試しください。"}
	}

	data, err := codec.EncodePNG(img.Image)
	if err != nil {
		return &discordgo.WebhookParams{Content: h.formatError(fmt.Errorf("画像のエンコードに失敗: %w", err))}
	}

	return &discordgo.WebhookParams{
		Content: h.truncate(fmt.Sprintf("🍌 %s", img.Prompt)),
		Files: []*discordgo.File{
			{
				Name:        filename,
				ContentType: "image/png",
				Reader:      bytes.NewReader(data),
			},
		},
	}
}

// isTimeoutError は、エラーがタイムアウトエラーかどうかを判定します
func (h *ResponseHandler) isTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	errorMsg := strings.ToLower(err.Error())
	timeoutKeywords := []string{
		"timeout",
		"タイムアウト",
		"deadline exceeded",
		"context deadline",
	}

	for _, keyword := range timeoutKeywords {
		if strings.Contains(errorMsg, keyword) {
			return true
		}
	}

	return false
}

// formatError は、エラーを適切なメッセージにフォーマットします
func (h *ResponseHandler) formatError(err error) string {
	if h.isTimeoutError(err) {
		return "⏰ **タイムアウトしました**\n\n処理に時間がかかりすぎました。しばらく待ってから再度お試しください。"
	}

	if errors.Is(err, domain.ErrMissingBaseImage) {
		return "⚠️ 編集を適用する前に画像を添付してください。"
	}

	return h.truncate(fmt.Sprintf("❌ **エラーが発生しました**\n%s", err.Error()))
}

// truncate は、メッセージをDiscordの文字数制限に収めます
func (h *ResponseHandler) truncate(message string) string {
	if utf8.RuneCountInString(message) <= DiscordMessageLimit {
		return message
	}
	runes := []rune(message)
	return string(runes[:DiscordMessageLimit-1]) + "…"
}
