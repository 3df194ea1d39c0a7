package domain

import (
	"fmt"
	"strings"
)

// Prompt は、モデルに送信する指示文を表現する値オブジェクトです
// 長さや内容の検証は行いません
type Prompt struct {
	content string
}

// NewPrompt は新しいPromptを作成します
func NewPrompt(content string) Prompt {
	return Prompt{content: content}
}

// Content は、プロンプトの文字列を返します
func (p Prompt) Content() string {
	return p.content
}

// IsBlank は、プロンプトが空白のみかどうかを判定します
func (p Prompt) IsBlank() bool {
	return strings.TrimSpace(p.content) == ""
}

// ChainStep は、編集チェーンの1ステップを表現する値オブジェクトです
type ChainStep struct {
	Prompt      string `yaml:"prompt"`
	Filename    string `yaml:"filename"`
	Description string `yaml:"description,omitempty"`
}

// String はChainStepの文字列表現を返します
func (s ChainStep) String() string {
	return fmt.Sprintf("ChainStep{Prompt: %s, Filename: %s, Description: %s}", s.Prompt, s.Filename, s.Description)
}

// EditChain は、初期画像の生成とそれに続く反復編集の手順です
// 各編集は直前に成功した結果を元画像として使用します
type EditChain struct {
	Initial ChainStep   `yaml:"initial"`
	Edits   []ChainStep `yaml:"edits"`
}

// DefaultEditChain は、風景画を生成して納屋と夕焼けを順に加える既定のチェーンを返します
func DefaultEditChain() EditChain {
	return EditChain{
		Initial: ChainStep{
			Prompt:      "A picturesque landscape with a clear blue sky, green rolling hills, and a small river flowing through it.",
			Filename:    "landscape_base.png",
			Description: "Initial image generated and",
		},
		Edits: []ChainStep{
			{
				Prompt:      "Add a red barn on the right side of the rolling hills.",
				Filename:    "landscape_with_barn.png",
				Description: "Edit 1 (red barn) applied and",
			},
			{
				Prompt:      "Make the sky look like a dramatic sunset with orange and purple hues.",
				Filename:    "landscape_sunset.png",
				Description: "Edit 2 (sunset) applied and",
			},
		},
	}
}

// Validate は、チェーンの各ステップにプロンプトとファイル名があるかを検証します
func (c EditChain) Validate() error {
	steps := append([]ChainStep{c.Initial}, c.Edits...)
	for i, step := range steps {
		if strings.TrimSpace(step.Prompt) == "" {
			return fmt.Errorf("ステップ %d: %w", i, ErrEmptyPrompt)
		}
		if strings.TrimSpace(step.Filename) == "" {
			return fmt.Errorf("ステップ %d: ファイル名が指定されていません", i)
		}
	}
	return nil
}
