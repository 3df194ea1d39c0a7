package discord

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/codec"

	"github.com/bwmarrin/discordgo"
)

// mockSession は、送信内容を記録するテスト用セッションです
type mockSession struct {
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
}

func (m *mockSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	m.responses = append(m.responses, resp)
	return nil
}

func (m *mockSession) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.followups = append(m.followups, data)
	return &discordgo.Message{}, nil
}

// mockService は、テスト用のImageServiceモックです
type mockService struct {
	result  *domain.GeneratedImage
	err     error
	prompts []string
	bases   []image.Image
}

func (m *mockService) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	m.prompts = append(m.prompts, prompt)
	return m.result, m.err
}

func (m *mockService) Edit(ctx context.Context, prompt string, base image.Image) (*domain.GeneratedImage, error) {
	m.prompts = append(m.prompts, prompt)
	m.bases = append(m.bases, base)
	return m.result, m.err
}

// mockFetcher は、固定の画像を返すテスト用AttachmentFetcherです
type mockFetcher struct {
	img image.Image
	err error
}

func (m *mockFetcher) FetchImage(ctx context.Context, attachment *discordgo.MessageAttachment) (image.Image, error) {
	return m.img, m.err
}

// mockRegistrar は、登録されたコマンドを記録するテスト用セッションです
type mockRegistrar struct {
	created []*discordgo.ApplicationCommand
	appID   string
}

func (m *mockRegistrar) User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{ID: "bot123"}, nil
}

func (m *mockRegistrar) ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	m.appID = appID
	m.created = append(m.created, cmd)
	return cmd, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func generatedImage() *domain.GeneratedImage {
	return &domain.GeneratedImage{
		Image:  image.NewRGBA(image.Rect(0, 0, 4, 4)),
		Prompt: "a red circle on white background",
	}
}

func commandInteraction(data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "interaction1",
			Type: discordgo.InteractionApplicationCommand,
			Data: data,
		},
	}
}

func generateInteraction(prompt string) *discordgo.InteractionCreate {
	return commandInteraction(discordgo.ApplicationCommandInteractionData{
		Name: "generate",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "prompt", Type: discordgo.ApplicationCommandOptionString, Value: prompt},
		},
	})
}

func editInteraction(prompt string, withAttachment bool) *discordgo.InteractionCreate {
	data := discordgo.ApplicationCommandInteractionData{
		Name: "edit",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "prompt", Type: discordgo.ApplicationCommandOptionString, Value: prompt},
		},
	}
	if withAttachment {
		data.Options = append(data.Options, &discordgo.ApplicationCommandInteractionDataOption{
			Name: "image", Type: discordgo.ApplicationCommandOptionAttachment, Value: "att1",
		})
		data.Resolved = &discordgo.ApplicationCommandInteractionDataResolved{
			Attachments: map[string]*discordgo.MessageAttachment{
				"att1": {ID: "att1", Filename: "landscape.png", ContentType: "image/png"},
			},
		}
	}
	return commandInteraction(data)
}

func TestNewDiscordHandler(t *testing.T) {
	session := &discordgo.Session{}
	slashCommandHandler := NewSlashCommandHandler(&mockService{}, &mockFetcher{}, testLogger())

	handler := NewDiscordHandler(session, slashCommandHandler)

	if handler.session != session {
		t.Error("セッションが正しく設定されていません")
	}
	if handler.slashCommandHandler != slashCommandHandler {
		t.Error("スラッシュコマンドハンドラーが正しく設定されていません")
	}
}

func TestSlashCommandHandler_SetupSlashCommands(t *testing.T) {
	registrar := &mockRegistrar{}
	handler := NewSlashCommandHandler(&mockService{}, &mockFetcher{}, testLogger())

	if err := handler.SetupSlashCommands(registrar); err != nil {
		t.Fatalf("予期しないエラーが発生しました: %v", err)
	}

	if registrar.appID != "bot123" {
		t.Errorf("期待されるアプリケーションID: bot123, 実際: %s", registrar.appID)
	}
	if len(registrar.created) != 2 || registrar.created[0].Name != "generate" || registrar.created[1].Name != "edit" {
		t.Errorf("generate と edit が登録されるべきです: %+v", registrar.created)
	}
}

func TestSlashCommandHandler_Generate(t *testing.T) {
	session := &mockSession{}
	service := &mockService{result: generatedImage()}
	handler := NewSlashCommandHandler(service, &mockFetcher{}, testLogger())

	handler.handleInteraction(session, generateInteraction("a red circle on white background"))

	if len(session.responses) != 1 || session.responses[0].Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
		t.Fatalf("遅延応答が送信されるべきです: %+v", session.responses)
	}
	if len(service.prompts) != 1 || service.prompts[0] != "a red circle on white background" {
		t.Errorf("プロンプトがサービスに渡されるべきです: %v", service.prompts)
	}
	if len(session.followups) != 1 || len(session.followups[0].Files) != 1 {
		t.Fatalf("画像付きのフォローアップが送信されるべきです: %+v", session.followups)
	}

	file := session.followups[0].Files[0]
	if file.Name != "generated_image.png" || file.ContentType != "image/png" {
		t.Errorf("期待されるファイル: generated_image.png (image/png), 実際: %s (%s)", file.Name, file.ContentType)
	}
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		t.Fatalf("添付ファイルの読み込みに失敗: %v", err)
	}
	if _, format, err := codec.Decode(data); err != nil || format != "png" {
		t.Errorf("添付ファイルはPNGであるべきです: format=%s err=%v", format, err)
	}
}

func TestSlashCommandHandler_GenerateAbsent(t *testing.T) {
	session := &mockSession{}
	handler := NewSlashCommandHandler(&mockService{}, &mockFetcher{}, testLogger())

	handler.handleInteraction(session, generateInteraction("a banana"))

	if len(session.followups) != 1 || len(session.followups[0].Files) != 0 {
		t.Fatalf("画像なしのフォローアップが送信されるべきです: %+v", session.followups)
	}
	if !strings.Contains(session.followups[0].Content, "もう一度お試しください") {
		t.Errorf("再試行を促すメッセージが期待されます: %s", session.followups[0].Content)
	}
}

func TestSlashCommandHandler_Edit(t *testing.T) {
	session := &mockSession{}
	base := image.NewRGBA(image.Rect(0, 0, 6, 6))
	service := &mockService{result: generatedImage()}
	handler := NewSlashCommandHandler(service, &mockFetcher{img: base}, testLogger())

	handler.handleInteraction(session, editInteraction("add a blue square in the corner", true))

	if len(service.bases) != 1 || service.bases[0] != base {
		t.Fatalf("添付画像が元画像として渡されるべきです")
	}
	if len(session.followups) != 1 || session.followups[0].Files[0].Name != "edited_image.png" {
		t.Errorf("edited_image.png が添付されるべきです: %+v", session.followups)
	}
}

func TestSlashCommandHandler_EditWithoutAttachment(t *testing.T) {
	session := &mockSession{}
	service := &mockService{result: generatedImage()}
	handler := NewSlashCommandHandler(service, &mockFetcher{}, testLogger())

	handler.handleInteraction(session, editInteraction("make it blue", false))

	if len(service.prompts) != 0 {
		t.Error("添付画像が無い場合はAPIを呼び出すべきではありません")
	}
	if len(session.responses) != 1 || session.responses[0].Data == nil {
		t.Fatalf("即時応答が送信されるべきです: %+v", session.responses)
	}
	if session.responses[0].Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Error("警告はエフェメラルで送信されるべきです")
	}
}

func TestSlashCommandHandler_EditUnreadableAttachment(t *testing.T) {
	session := &mockSession{}
	service := &mockService{result: generatedImage()}
	handler := NewSlashCommandHandler(service, &mockFetcher{err: errors.New("unsupported format")}, testLogger())

	handler.handleInteraction(session, editInteraction("make it blue", true))

	if len(service.prompts) != 0 {
		t.Error("画像を読み込めない場合はAPIを呼び出すべきではありません")
	}
	if len(session.followups) != 1 || len(session.followups[0].Files) != 0 {
		t.Errorf("警告のフォローアップが送信されるべきです: %+v", session.followups)
	}
}

func TestSlashCommandHandler_IgnoresNonCommandInteractions(t *testing.T) {
	session := &mockSession{}
	handler := NewSlashCommandHandler(&mockService{}, &mockFetcher{}, testLogger())

	handler.handleInteraction(session, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{Type: discordgo.InteractionPing},
	})

	if len(session.responses) != 0 || len(session.followups) != 0 {
		t.Error("コマンド以外のインタラクションには応答するべきではありません")
	}
}

func TestResponseHandler_FormatImageResult(t *testing.T) {
	handler := NewResponseHandler()

	params := handler.FormatImageResult(nil, errors.New("quota exceeded"), "generated_image.png")
	if !strings.Contains(params.Content, "quota exceeded") || len(params.Files) != 0 {
		t.Errorf("エラーメッセージが期待されます: %+v", params)
	}

	params = handler.FormatImageResult(nil, context.DeadlineExceeded, "generated_image.png")
	if !strings.Contains(params.Content, "タイムアウト") {
		t.Errorf("タイムアウトメッセージが期待されます: %s", params.Content)
	}

	params = handler.FormatImageResult(generatedImage(), nil, "generated_image.png")
	if len(params.Files) != 1 || !strings.Contains(params.Content, "a red circle") {
		t.Errorf("画像とプロンプトが含まれるべきです: %+v", params)
	}
}

func TestResponseHandler_Truncate(t *testing.T) {
	handler := NewResponseHandler()

	short := "短いメッセージ"
	if handler.truncate(short) != short {
		t.Error("短いメッセージは変更されるべきではありません")
	}

	long := strings.Repeat("あ", DiscordMessageLimit+10)
	if got := handler.truncate(long); utf8.RuneCountInString(got) != DiscordMessageLimit {
		t.Errorf("期待される文字数: %d, 実際: %d", DiscordMessageLimit, utf8.RuneCountInString(got))
	}
}
