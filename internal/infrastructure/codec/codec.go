package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// Decode は、バイト列をラスター画像にデコードし、検出したフォーマット名と共に返します
// 対応フォーマット: png, jpeg, gif, webp
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("画像データが空です")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("画像のデコードに失敗: %w", err)
	}
	return img, format, nil
}

// EncodePNG は、ラスター画像をPNGのバイト列にエンコードします
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("エンコードする画像がありません")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNGへのエンコードに失敗: %w", err)
	}
	return buf.Bytes(), nil
}

// DetectMIMEType は、バイト列の先頭からMIMEタイプを推定します
func DetectMIMEType(data []byte) string {
	return http.DetectContentType(data)
}
