package discord

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"nanobanana/internal/domain"
	"nanobanana/internal/log"

	"github.com/bwmarrin/discordgo"
)

// ImageService は、スラッシュコマンドが使う画像生成サービスのインターフェースです
type ImageService interface {
	Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error)
	Edit(ctx context.Context, prompt string, base image.Image) (*domain.GeneratedImage, error)
}

// AttachmentFetcher は、添付ファイルを画像として取得するインターフェースです
type AttachmentFetcher interface {
	FetchImage(ctx context.Context, attachment *discordgo.MessageAttachment) (image.Image, error)
}

// InteractionSession は、インタラクションへの応答に使うセッションのメソッドです
type InteractionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// CommandRegistrar は、スラッシュコマンドの登録に使うセッションのメソッドです
type CommandRegistrar interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// SlashCommandHandler は、Discordのスラッシュコマンドを処理するハンドラーです
type SlashCommandHandler struct {
	service         ImageService
	attachments     AttachmentFetcher
	responseHandler *ResponseHandler
	logger          *slog.Logger
}

// NewSlashCommandHandler は新しいSlashCommandHandlerインスタンスを作成します
func NewSlashCommandHandler(service ImageService, attachments AttachmentFetcher, logger *slog.Logger) *SlashCommandHandler {
	return &SlashCommandHandler{
		service:         service,
		attachments:     attachments,
		responseHandler: NewResponseHandler(),
		logger:          logger,
	}
}

// Commands は、登録するスラッシュコマンドの定義を返します
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "generate",
			Description: "プロンプトから画像を生成します",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prompt",
					Description: "生成する画像の説明",
					Required:    true,
				},
			},
		},
		{
			Name:        "edit",
			Description: "添付した画像をプロンプトに従って編集します",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "image",
					Description: "編集する画像",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prompt",
					Description: "加える編集の説明",
					Required:    true,
				},
			},
		},
	}
}

// SetupSlashCommands は、スラッシュコマンドをグローバルコマンドとして登録します
func (h *SlashCommandHandler) SetupSlashCommands(s CommandRegistrar) error {
	user, err := s.User("@me")
	if err != nil {
		return fmt.Errorf("Botユーザー情報の取得に失敗: %w", err)
	}

	for _, command := range Commands() {
		if _, err := s.ApplicationCommandCreate(user.ID, "", command); err != nil {
			return fmt.Errorf("スラッシュコマンド %s の登録に失敗: %w", command.Name, err)
		}
		h.logger.Info("スラッシュコマンドを登録しました", "command", command.Name)
	}
	return nil
}

func (h *SlashCommandHandler) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.handleInteraction(s, i)
}

// handleInteraction は、インタラクション作成イベントを処理します
func (h *SlashCommandHandler) handleInteraction(s InteractionSession, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	logger := h.logger.With("command", data.Name, "interaction", i.ID)
	ctx := log.NewContext(context.Background(), logger)

	switch data.Name {
	case "generate":
		h.handleGenerateCommand(ctx, s, i, data)
	case "edit":
		h.handleEditCommand(ctx, s, i, data)
	default:
		logger.Warn("未知のスラッシュコマンド")
	}
}

// handleGenerateCommand は、/generateコマンドを処理します
func (h *SlashCommandHandler) handleGenerateCommand(ctx context.Context, s InteractionSession, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	prompt := stringOption(data.Options, "prompt")
	if prompt == "" {
		h.respondToInteraction(ctx, s, i, "❌ プロンプトが指定されていません。", true)
		return
	}

	if !h.deferResponse(ctx, s, i) {
		return
	}

	img, err := h.service.Generate(ctx, prompt)
	h.followup(ctx, s, i, h.responseHandler.FormatImageResult(img, err, "generated_image.png"))
}

// handleEditCommand は、/editコマンドを処理します
// 添付画像が無い場合はAPIを呼び出さずに警告を返します
func (h *SlashCommandHandler) handleEditCommand(ctx context.Context, s InteractionSession, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	attachment := attachmentOption(data, "image")
	if attachment == nil {
		h.respondToInteraction(ctx, s, i, "⚠️ 編集を適用する前に画像を添付してください。", true)
		return
	}
	prompt := stringOption(data.Options, "prompt")
	if prompt == "" {
		h.respondToInteraction(ctx, s, i, "❌ プロンプトが指定されていません。", true)
		return
	}

	if !h.deferResponse(ctx, s, i) {
		return
	}

	base, err := h.attachments.FetchImage(ctx, attachment)
	if err != nil {
		log.FromContextOrDiscard(ctx).Warn("添付画像の取得に失敗", "error", err)
		h.followup(ctx, s, i, &discordgo.WebhookParams{Content: "⚠️ 添付ファイルを画像として読み込めませんでした。"})
		return
	}

	img, err := h.service.Edit(ctx, prompt, base)
	h.followup(ctx, s, i, h.responseHandler.FormatImageResult(img, err, "edited_image.png"))
}

func (h *SlashCommandHandler) deferResponse(ctx context.Context, s InteractionSession, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.FromContextOrDiscard(ctx).Error("インタラクションへの応答に失敗", "error", err)
		return false
	}
	return true
}

func (h *SlashCommandHandler) followup(ctx context.Context, s InteractionSession, i *discordgo.InteractionCreate, params *discordgo.WebhookParams) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		log.FromContextOrDiscard(ctx).Error("フォローアップメッセージの送信に失敗", "error", err)
	}
}

// respondToInteraction は、インタラクションに応答します
func (h *SlashCommandHandler) respondToInteraction(ctx context.Context, s InteractionSession, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}

	if !ephemeral {
		response.Data.Flags = 0
	}

	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		log.FromContextOrDiscard(ctx).Error("インタラクションへの応答に失敗", "error", err)
	}
}

func stringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, option := range options {
		if option.Name == name && option.Type == discordgo.ApplicationCommandOptionString {
			return option.StringValue()
		}
	}
	return ""
}

func attachmentOption(data discordgo.ApplicationCommandInteractionData, name string) *discordgo.MessageAttachment {
	if data.Resolved == nil {
		return nil
	}
	for _, option := range data.Options {
		if option.Name != name || option.Type != discordgo.ApplicationCommandOptionAttachment {
			continue
		}
		id, ok := option.Value.(string)
		if !ok {
			return nil
		}
		return data.Resolved.Attachments[id]
	}
	return nil
}
