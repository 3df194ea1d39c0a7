package domain

import "context"

// ImageStore は、生成画像の永続化を行うインターフェースです
// 同じ名前への保存は無条件に上書きされます
type ImageStore interface {
	// Save は、PNGデータを指定された名前で保存し、保存先の場所を返します
	Save(ctx context.Context, name string, img *GeneratedImage) (string, error)
}
