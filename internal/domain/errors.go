package domain

import "errors"

// ドメイン固有のエラー型を定義
var (
	// ErrMissingAPIKey は、APIキーが設定されていない場合のエラーです
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY が設定されていません")

	// ErrMissingBaseImage は、編集対象の画像が指定されていない場合のエラーです
	ErrMissingBaseImage = errors.New("編集する画像が指定されていません")

	// ErrEmptyPrompt は、プロンプトが空の場合のエラーです
	ErrEmptyPrompt = errors.New("プロンプトが空です")

	// ErrNoImageGenerated は、モデルの応答に画像が含まれていなかった場合のエラーです
	ErrNoImageGenerated = errors.New("画像が生成されませんでした")

	// ErrInvalidNamingPolicy は、未知のファイル命名ポリシーが指定された場合のエラーです
	ErrInvalidNamingPolicy = errors.New("無効なファイル命名ポリシーです")
)
