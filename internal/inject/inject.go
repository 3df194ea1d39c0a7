package inject

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"nanobanana/configs"
	"nanobanana/internal/application"
	"nanobanana/internal/domain"
	discordinfra "nanobanana/internal/infrastructure/discord"
	"nanobanana/internal/infrastructure/gemini"
	"nanobanana/internal/infrastructure/secret"
	"nanobanana/internal/infrastructure/storage"
	"nanobanana/internal/log"
	discordpres "nanobanana/internal/presentation/discord"
	"nanobanana/internal/presentation/web"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/samber/do"
)

// Setup は、設定とコンテキストのロガーからDIコンテナを構築します
// AWSクライアントはS3やSSMが必要になった時点で初めて作成されます
func Setup(ctx context.Context, cfg *configs.Config) *do.Injector {
	logger := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*configs.Config](injector, cfg)
	do.ProvideValue[*slog.Logger](injector, logger)
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[configs.SecretFetcher](injector, func(i *do.Injector) (configs.SecretFetcher, error) {
		return secret.NewParameterStoreFetcher(do.MustInvoke[*ssm.Client](i)), nil
	})

	do.Provide[*gemini.GeminiAPIClient](injector, func(i *do.Injector) (*gemini.GeminiAPIClient, error) {
		cfg := do.MustInvoke[*configs.Config](i)
		if cfg.Gemini.APIKey == "" && cfg.Gemini.APIKeyParam != "" {
			fetcher, err := do.Invoke[configs.SecretFetcher](i)
			if err != nil {
				return nil, err
			}
			if err := cfg.ResolveAPIKey(ctx, fetcher); err != nil {
				return nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return gemini.NewGeminiAPIClient(cfg.Gemini.APIKey, &cfg.Gemini)
	})
	do.Provide[domain.ImageStore](injector, func(i *do.Injector) (domain.ImageStore, error) {
		cfg := do.MustInvoke[*configs.Config](i)
		if cfg.Storage.Bucket != "" {
			return storage.NewS3ImageStore(do.MustInvoke[*s3.Client](i), cfg.Storage.Bucket), nil
		}
		return storage.NewFileImageStore(cfg.Storage.OutputDir), nil
	})
	do.Provide[*application.ImageGenerationService](injector, func(i *do.Injector) (*application.ImageGenerationService, error) {
		client, err := do.Invoke[*gemini.GeminiAPIClient](i)
		if err != nil {
			return nil, err
		}
		store, err := do.Invoke[domain.ImageStore](i)
		if err != nil {
			return nil, err
		}
		return application.NewImageGenerationService(client, store, do.MustInvoke[*configs.Config](i).Storage.Naming), nil
	})

	do.Provide[*web.Handler](injector, func(i *do.Injector) (*web.Handler, error) {
		service, err := do.Invoke[*application.ImageGenerationService](i)
		if err != nil {
			return nil, err
		}
		return web.NewHandler(service, do.MustInvoke[*slog.Logger](i).WithGroup("web")), nil
	})
	do.Provide[*discordpres.SlashCommandHandler](injector, func(i *do.Injector) (*discordpres.SlashCommandHandler, error) {
		service, err := do.Invoke[*application.ImageGenerationService](i)
		if err != nil {
			return nil, err
		}
		attachments := discordinfra.NewAttachmentRepository(do.MustInvoke[*http.Client](i))
		return discordpres.NewSlashCommandHandler(service, attachments, do.MustInvoke[*slog.Logger](i).WithGroup("discord")), nil
	})

	return injector
}
