package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NamingPolicy は、保存ファイル名の決め方を表す定数です
type NamingPolicy string

const (
	// NamingOverwrite は、指定された名前をそのまま使います（後勝ちで上書き）
	NamingOverwrite NamingPolicy = "overwrite"
	// NamingTimestamp は、名前にUTCタイムスタンプを付与します
	NamingTimestamp NamingPolicy = "timestamp"
	// NamingContent は、名前に画像データのSHA-256先頭12桁を付与します
	NamingContent NamingPolicy = "content"
	// NamingUUID は、名前にランダムなUUIDを付与します
	NamingUUID NamingPolicy = "uuid"
)

// ParseNamingPolicy は、文字列からNamingPolicyを解析します。空文字列は NamingOverwrite です
func ParseNamingPolicy(s string) (NamingPolicy, error) {
	switch p := NamingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return NamingOverwrite, nil
	case NamingOverwrite, NamingTimestamp, NamingContent, NamingUUID:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidNamingPolicy, s)
	}
}

// Apply は、ポリシーに従って保存ファイル名を決定します
func (p NamingPolicy) Apply(name string, data []byte, now time.Time) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	switch p {
	case NamingTimestamp:
		return fmt.Sprintf("%s_%s%s", stem, now.UTC().Format("20060102T150405.000000000"), ext)
	case NamingContent:
		sum := sha256.Sum256(data)
		return fmt.Sprintf("%s_%s%s", stem, hex.EncodeToString(sum[:])[:12], ext)
	case NamingUUID:
		return fmt.Sprintf("%s_%s%s", stem, uuid.NewString(), ext)
	default:
		return name
	}
}
