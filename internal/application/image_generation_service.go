package application

import (
	"context"
	"fmt"
	"image"
	"time"

	"nanobanana/internal/domain"
	"nanobanana/internal/log"
)

// ImageGenerationService は、画像の生成・編集・保存を制御するアプリケーションサービスです
type ImageGenerationService struct {
	generator ImageGenerator
	store     domain.ImageStore
	naming    domain.NamingPolicy
	now       func() time.Time
}

// NewImageGenerationService は新しいImageGenerationServiceインスタンスを作成します
func NewImageGenerationService(generator ImageGenerator, store domain.ImageStore, naming domain.NamingPolicy) *ImageGenerationService {
	return &ImageGenerationService{
		generator: generator,
		store:     store,
		naming:    naming,
		now:       time.Now,
	}
}

// Generate は、プロンプトのみから画像を生成します
func (s *ImageGenerationService) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	return s.generate(ctx, domain.NewGenerationRequest(prompt, nil))
}

// Edit は、元画像をプロンプトに従って編集します
// 元画像が無い場合はAPIを呼び出さずに domain.ErrMissingBaseImage を返します
func (s *ImageGenerationService) Edit(ctx context.Context, prompt string, base image.Image) (*domain.GeneratedImage, error) {
	if base == nil {
		return nil, domain.ErrMissingBaseImage
	}
	return s.generate(ctx, domain.NewGenerationRequest(prompt, base))
}

func (s *ImageGenerationService) generate(ctx context.Context, request domain.GenerationRequest) (*domain.GeneratedImage, error) {
	img, err := s.generator.GenerateImage(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗: %w", err)
	}
	return img, nil
}

// Save は、生成画像を命名ポリシーに従った名前で保存し、保存先を返します
func (s *ImageGenerationService) Save(ctx context.Context, img *domain.GeneratedImage, name string) (string, error) {
	if img == nil {
		return "", domain.ErrNoImageGenerated
	}
	if s.store == nil {
		return "", fmt.Errorf("保存先が設定されていません")
	}

	resolved := s.naming.Apply(name, img.Data, s.now())
	location, err := s.store.Save(ctx, resolved, img)
	if err != nil {
		return "", fmt.Errorf("画像の保存に失敗 (%s): %w", resolved, err)
	}

	log.FromContextOrDiscard(ctx).Info("画像を保存しました", "name", resolved, "location", location)
	return location, nil
}
