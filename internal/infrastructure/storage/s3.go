package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"nanobanana/internal/domain"
	"nanobanana/internal/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PutObjectAPI は、S3ImageStoreが使うS3クライアントのメソッドです
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore は、生成画像をS3バケットにPNGで保存します
type S3ImageStore struct {
	client PutObjectAPI
	bucket string
}

// NewS3ImageStore は新しいS3ImageStoreインスタンスを作成します
func NewS3ImageStore(client PutObjectAPI, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket}
}

// Save は、画像をオブジェクトとしてアップロードし、s3:// 形式の場所を返します
func (s *S3ImageStore) Save(ctx context.Context, name string, img *domain.GeneratedImage) (string, error) {
	if img == nil {
		return "", domain.ErrNoImageGenerated
	}

	data, err := pngBytes(img)
	if err != nil {
		return "", fmt.Errorf("PNGへのエンコードに失敗: %w", err)
	}

	metadata := map[string]string{
		"prompt": metadataValue(img.Prompt),
		"model":  img.Model,
	}
	logger := log.FromContextOrDiscard(ctx).WithGroup("s3").With("bucket", s.bucket, "key", name)
	logger.Info("uploading to s3", "bytes", len(data))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(name),
		ContentType:  aws.String(pngContentType),
		Body:         bytes.NewReader(data),
		Metadata:     metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	if err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

// S3のユーザー定義メタデータは合計2KBまでのため、プロンプトはエスケープして切り詰める
const maxMetadataValue = 1024

func metadataValue(v string) string {
	escaped := url.QueryEscape(v)
	if len(escaped) > maxMetadataValue {
		return escaped[:maxMetadataValue]
	}
	return escaped
}
