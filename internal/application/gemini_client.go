package application

import (
	"context"

	"nanobanana/internal/domain"
)

// ImageGenerator は、Gemini APIで画像を生成・編集するクライアントのインターフェースです
type ImageGenerator interface {
	// GenerateImage は、リクエストから1枚の画像を生成します
	// 応答に画像が無い場合は (nil, nil) を返します
	GenerateImage(ctx context.Context, request domain.GenerationRequest) (*domain.GeneratedImage, error)
}
