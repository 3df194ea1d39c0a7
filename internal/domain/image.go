package domain

import (
	"image"
	"time"
)

// DefaultImageModel は、画像生成・編集に使用するモデル名です
const DefaultImageModel = "gemini-2.5-flash-image-preview"

// GenerationRequest は、1回の画像生成リクエストを表すドメインオブジェクトです
// BaseImage が nil の場合はテキストのみの生成、設定されている場合は編集として扱います
type GenerationRequest struct {
	Prompt    Prompt
	BaseImage image.Image
}

// NewGenerationRequest は新しいGenerationRequestを作成します
func NewGenerationRequest(prompt string, base image.Image) GenerationRequest {
	return GenerationRequest{
		Prompt:    NewPrompt(prompt),
		BaseImage: base,
	}
}

// IsEdit は、このリクエストが既存画像の編集かどうかを判定します
func (r GenerationRequest) IsEdit() bool {
	return r.BaseImage != nil
}

// GeneratedImage は、モデルから返された画像をデコードした結果です
// 呼び出し元に返された後は呼び出し元が所有します
type GeneratedImage struct {
	Image       image.Image
	Data        []byte
	MIMEType    string
	Prompt      string
	Model       string
	GeneratedAt time.Time
}

// Bounds は、生成画像のサイズを返します
func (g *GeneratedImage) Bounds() image.Rectangle {
	if g == nil || g.Image == nil {
		return image.Rectangle{}
	}
	return g.Image.Bounds()
}
