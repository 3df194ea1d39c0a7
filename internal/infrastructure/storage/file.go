package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"nanobanana/internal/domain"
	"nanobanana/internal/log"
)

// FileImageStore は、生成画像をローカルディレクトリにPNGで保存します
type FileImageStore struct {
	dir string
}

// NewFileImageStore は新しいFileImageStoreインスタンスを作成します
func NewFileImageStore(dir string) *FileImageStore {
	return &FileImageStore{dir: dir}
}

// Save は、出力ディレクトリを必要に応じて作成し、同名ファイルを上書きして保存します
func (s *FileImageStore) Save(ctx context.Context, name string, img *domain.GeneratedImage) (string, error) {
	if img == nil {
		return "", domain.ErrNoImageGenerated
	}

	data, err := pngBytes(img)
	if err != nil {
		return "", fmt.Errorf("PNGへのエンコードに失敗: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
	}

	path := filepath.Join(s.dir, name)
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("writing", "file", path, "bytes", len(data))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("ファイルの書き込みに失敗: %w", err)
	}
	return path, nil
}
