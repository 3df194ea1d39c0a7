package application

import (
	"context"
	"fmt"
	"image"

	"nanobanana/internal/domain"
	"nanobanana/internal/log"
)

// ChainStepResult は、編集チェーンの1ステップの結果です
type ChainStepResult struct {
	Index    int // 0 は初期画像
	Step     domain.ChainStep
	Location string
	Skipped  bool // 応答に画像が無く、直前の画像を引き継いだ場合に true
}

// ChainObserver は、編集チェーンの各ステップ完了時に呼び出されます
type ChainObserver func(result ChainStepResult)

// RunChain は、初期画像を生成し、各編集ステップを直前の画像に順に適用します
// 初期画像が得られない場合はそこで中断し、編集結果が得られない場合は直前の画像で続行します
func (s *ImageGenerationService) RunChain(ctx context.Context, chain domain.EditChain, observer ChainObserver) ([]ChainStepResult, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = func(ChainStepResult) {}
	}
	logger := log.FromContextOrDiscard(ctx).With("steps", len(chain.Edits)+1)

	results := make([]ChainStepResult, 0, len(chain.Edits)+1)
	report := func(r ChainStepResult) {
		results = append(results, r)
		observer(r)
	}

	logger.Info("初期画像を生成中", "description", chain.Initial.Description)
	initial, err := s.Generate(ctx, chain.Initial.Prompt)
	if err != nil {
		return results, err
	}
	if initial == nil {
		return results, fmt.Errorf("初期画像 %s: %w", chain.Initial.Filename, domain.ErrNoImageGenerated)
	}

	location, err := s.Save(ctx, initial, chain.Initial.Filename)
	if err != nil {
		return results, err
	}
	report(ChainStepResult{Index: 0, Step: chain.Initial, Location: location})

	var current image.Image = initial.Image
	for i, step := range chain.Edits {
		logger.Info("編集ステップを実行中", "index", i+1, "description", step.Description)

		edited, err := s.Edit(ctx, step.Prompt, current)
		if err != nil {
			return results, fmt.Errorf("編集ステップ %d: %w", i+1, err)
		}
		if edited == nil {
			logger.Warn("編集結果が得られなかったため直前の画像で続行します", "index", i+1)
			report(ChainStepResult{Index: i + 1, Step: step, Skipped: true})
			continue
		}

		location, err := s.Save(ctx, edited, step.Filename)
		if err != nil {
			return results, err
		}
		report(ChainStepResult{Index: i + 1, Step: step, Location: location})
		current = edited.Image
	}

	return results, nil
}
