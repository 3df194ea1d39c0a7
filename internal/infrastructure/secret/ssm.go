package secret

import (
	"context"
	"fmt"

	"nanobanana/internal/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// GetParameterAPI は、ParameterStoreFetcherが使うSSMクライアントのメソッドです
type GetParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterStoreFetcher は、SSMパラメータストアから暗号化された値を取得します
type ParameterStoreFetcher struct {
	client GetParameterAPI
}

// NewParameterStoreFetcher は新しいParameterStoreFetcherインスタンスを作成します
func NewParameterStoreFetcher(client GetParameterAPI) *ParameterStoreFetcher {
	return &ParameterStoreFetcher{client: client}
}

func (f *ParameterStoreFetcher) Fetch(ctx context.Context, path string) (string, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("parameter store").With("path", path)
	logger.Info("fetching single parameter")

	out, err := f.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗: %w", path, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("パラメータ %s が見つかりません", path)
	}
	return aws.ToString(out.Parameter.Value), nil
}
