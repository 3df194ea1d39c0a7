package storage

import (
	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/codec"
)

const pngContentType = "image/png"

// pngBytes は、生成画像をPNGとして保存するためのバイト列を返します
// 応答データが既にPNGであればそのまま使い、それ以外は再エンコードします
func pngBytes(img *domain.GeneratedImage) ([]byte, error) {
	if len(img.Data) > 0 && codec.DetectMIMEType(img.Data) == pngContentType {
		return img.Data, nil
	}
	return codec.EncodePNG(img.Image)
}
