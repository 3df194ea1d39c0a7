package domain

import (
	"errors"
	"image"
	"strings"
	"testing"
	"time"
)

func TestNewGenerationRequest(t *testing.T) {
	req := NewGenerationRequest("a red circle on white background", nil)

	if req.Prompt.Content() != "a red circle on white background" {
		t.Errorf("Expected prompt 'a red circle on white background', got '%s'", req.Prompt.Content())
	}
	if req.IsEdit() {
		t.Error("元画像なしのリクエストは編集として扱われるべきではありません")
	}

	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	edit := NewGenerationRequest("add a blue square in the corner", base)
	if !edit.IsEdit() {
		t.Error("元画像ありのリクエストは編集として扱われるべきです")
	}
}

func TestPromptIsBlank(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"", true},
		{"   \n\t", true},
		{"a dog", false},
	}

	for _, tt := range tests {
		if got := NewPrompt(tt.content).IsBlank(); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestGeneratedImageBounds_Nil(t *testing.T) {
	var img *GeneratedImage
	if !img.Bounds().Empty() {
		t.Error("nilのGeneratedImageは空の矩形を返すべきです")
	}
}

func TestDefaultEditChain(t *testing.T) {
	chain := DefaultEditChain()

	if err := chain.Validate(); err != nil {
		t.Fatalf("既定のチェーンは有効であるべきです: %v", err)
	}
	if chain.Initial.Filename != "landscape_base.png" {
		t.Errorf("Expected initial filename 'landscape_base.png', got '%s'", chain.Initial.Filename)
	}
	if len(chain.Edits) != 2 {
		t.Fatalf("Expected 2 edits, got %d", len(chain.Edits))
	}
	if !strings.Contains(chain.Edits[0].Prompt, "red barn") {
		t.Errorf("最初の編集は納屋の追加であるべきです: %s", chain.Edits[0].Prompt)
	}
}

func TestEditChainValidate(t *testing.T) {
	tests := []struct {
		name    string
		chain   EditChain
		wantErr error
	}{
		{
			name:  "有効なチェーン",
			chain: EditChain{Initial: ChainStep{Prompt: "a dog", Filename: "dog.png"}},
		},
		{
			name:    "初期プロンプトが空",
			chain:   EditChain{Initial: ChainStep{Prompt: " ", Filename: "dog.png"}},
			wantErr: ErrEmptyPrompt,
		},
		{
			name: "編集プロンプトが空",
			chain: EditChain{
				Initial: ChainStep{Prompt: "a dog", Filename: "dog.png"},
				Edits:   []ChainStep{{Prompt: "", Filename: "edit.png"}},
			},
			wantErr: ErrEmptyPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chain.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}

	missingName := EditChain{Initial: ChainStep{Prompt: "a dog"}}
	if err := missingName.Validate(); err == nil {
		t.Error("ファイル名なしのステップはエラーになるべきです")
	}
}

func TestChainStepString(t *testing.T) {
	step := ChainStep{Prompt: "a dog", Filename: "dog.png", Description: "dog"}

	expected := "ChainStep{Prompt: a dog, Filename: dog.png, Description: dog}"
	if step.String() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, step.String())
	}
}

func TestParseNamingPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    NamingPolicy
		wantErr bool
	}{
		{"", NamingOverwrite, false},
		{"overwrite", NamingOverwrite, false},
		{"TIMESTAMP", NamingTimestamp, false},
		{" content ", NamingContent, false},
		{"uuid", NamingUUID, false},
		{"random", "", true},
	}

	for _, tt := range tests {
		got, err := ParseNamingPolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNamingPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNamingPolicy(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNamingPolicyApply(t *testing.T) {
	now := time.Date(2025, 8, 28, 4, 4, 36, 0, time.UTC)
	data := []byte("png-bytes")

	if got := NamingOverwrite.Apply("generated_image.png", data, now); got != "generated_image.png" {
		t.Errorf("overwrite should keep the name, got %s", got)
	}

	if got := NamingTimestamp.Apply("generated_image.png", data, now); got != "generated_image_20250828T040436.000000000.png" {
		t.Errorf("unexpected timestamp name: %s", got)
	}

	first := NamingContent.Apply("edited_image.png", data, now)
	second := NamingContent.Apply("edited_image.png", data, now.Add(time.Hour))
	if first != second {
		t.Errorf("content names should only depend on data: %s != %s", first, second)
	}
	if other := NamingContent.Apply("edited_image.png", []byte("other"), now); other == first {
		t.Error("different data should produce different names")
	}

	a := NamingUUID.Apply("dog.png", data, now)
	b := NamingUUID.Apply("dog.png", data, now)
	if a == b || !strings.HasPrefix(a, "dog_") || !strings.HasSuffix(a, ".png") {
		t.Errorf("unexpected uuid names: %s, %s", a, b)
	}
}
