package discord

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"nanobanana/internal/infrastructure/codec"
	"nanobanana/internal/log"

	"github.com/bwmarrin/discordgo"
)

// MaxAttachmentSize は、編集対象として受け付ける添付ファイルの最大サイズです
const MaxAttachmentSize = 20 << 20 // 20MB

// AttachmentRepository は、Discordの添付ファイルをダウンロードして画像として読み込みます
type AttachmentRepository struct {
	client *http.Client
}

// NewAttachmentRepository は新しいAttachmentRepositoryインスタンスを作成します
func NewAttachmentRepository(client *http.Client) *AttachmentRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &AttachmentRepository{client: client}
}

// FetchImage は、添付ファイルを取得し、デコードした画像を返します
func (r *AttachmentRepository) FetchImage(ctx context.Context, attachment *discordgo.MessageAttachment) (image.Image, error) {
	if attachment == nil {
		return nil, fmt.Errorf("添付ファイルが指定されていません")
	}
	if attachment.ContentType != "" && !strings.HasPrefix(attachment.ContentType, "image/") {
		return nil, fmt.Errorf("画像ではない添付ファイルです: %s", attachment.ContentType)
	}
	if attachment.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("添付ファイルが大きすぎます: %d bytes", attachment.Size)
	}

	log.FromContextOrDiscard(ctx).Info("Discordから添付ファイルを取得中", "filename", attachment.Filename, "size", attachment.Size)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("添付ファイルのダウンロードに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("添付ファイルのダウンロードに失敗: status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("添付ファイルの読み込みに失敗: %w", err)
	}
	if len(data) > MaxAttachmentSize {
		return nil, fmt.Errorf("添付ファイルが大きすぎます")
	}

	img, _, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("添付画像のデコードに失敗: %w", err)
	}
	return img, nil
}
