package gemini

import (
	"context"
	"fmt"
	"image"
	"time"

	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/codec"
	"nanobanana/internal/infrastructure/config"
	"nanobanana/internal/log"

	"google.golang.org/genai"
)

// ContentGenerator は、Gemini APIのコンテンツ生成呼び出しを抽象化するインターフェースです
// *genai.Models がこのインターフェースを満たします
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAPIClient は、プロンプトと任意の元画像から1枚の画像を生成するアダプターです
type GeminiAPIClient struct {
	models ContentGenerator
	config *config.GeminiConfig
}

// NewGeminiAPIClient は新しいGeminiAPIClientインスタンスを作成します
func NewGeminiAPIClient(apiKey string, geminiConfig *config.GeminiConfig) (*GeminiAPIClient, error) {
	ctx := context.Background()
	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini APIクライアントの作成に失敗: %w", err)
	}

	return NewGeminiAPIClientWithGenerator(client.Models, geminiConfig), nil
}

// NewGeminiAPIClientWithGenerator は、任意のContentGeneratorを使うGeminiAPIClientを作成します
func NewGeminiAPIClientWithGenerator(models ContentGenerator, geminiConfig *config.GeminiConfig) *GeminiAPIClient {
	if geminiConfig == nil {
		geminiConfig = config.DefaultGeminiConfig()
	}

	return &GeminiAPIClient{
		models: models,
		config: geminiConfig,
	}
}

// BuildContents は、リクエストのコンテンツを組み立てます
// 元画像がある場合は [画像, プロンプト] の順の1コンテンツ、無い場合はプロンプトのみです
func BuildContents(prompt string, base image.Image) ([]*genai.Content, error) {
	if base == nil {
		return genai.Text(prompt), nil
	}

	data, err := codec.EncodePNG(base)
	if err != nil {
		return nil, fmt.Errorf("元画像のエンコードに失敗: %w", err)
	}

	// 画像を先、指示文を後に置く（編集として解釈させるため順序を変えない）
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, "image/png"),
		genai.NewPartFromText(prompt),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// GenerateImage は、1回のAPI呼び出しで画像を生成または編集します
// 応答に画像が含まれない場合は (nil, nil) を返します
func (g *GeminiAPIClient) GenerateImage(ctx context.Context, request domain.GenerationRequest) (*domain.GeneratedImage, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", g.config.ModelName, "edit", request.IsEdit())
	prompt := request.Prompt.Content()
	logger.Info("Gemini APIに画像生成をリクエスト中", "prompt_length", len(prompt))

	contents, err := BuildContents(prompt, request.BaseImage)
	if err != nil {
		return nil, err
	}

	resp, err := g.models.GenerateContent(ctx, g.config.ModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini APIからの応答取得に失敗: %w", err)
	}

	blob, ok := FirstInlineData(resp)
	if !ok {
		logger.Warn("Gemini APIの応答に画像データが含まれていません", "candidates", candidateCount(resp))
		return nil, nil
	}
	// 最初の画像パートで探索を打ち切る。データが空なら画像なしとして扱う
	if len(blob.Data) == 0 {
		logger.Warn("Gemini APIの応答の画像データが空です")
		return nil, nil
	}
	if extra := CountInlineData(resp) - 1; extra > 0 {
		logger.Warn("最初の画像以外を破棄しました", "dropped", extra)
	}

	img, format, err := codec.Decode(blob.Data)
	if err != nil {
		return nil, fmt.Errorf("生成画像のデコードに失敗: %w", err)
	}

	mimeType := blob.MIMEType
	if mimeType == "" {
		mimeType = "image/" + format
	}

	logger.Info("Gemini APIから画像を取得", "mime_type", mimeType, "bytes", len(blob.Data))
	return &domain.GeneratedImage{
		Image:       img,
		Data:        blob.Data,
		MIMEType:    mimeType,
		Prompt:      prompt,
		Model:       g.config.ModelName,
		GeneratedAt: time.Now(),
	}, nil
}
