package discord

import (
	"github.com/bwmarrin/discordgo"
)

// DiscordHandler は、Discordのイベントハンドラです
type DiscordHandler struct {
	session             *discordgo.Session
	slashCommandHandler *SlashCommandHandler
}

// DiscordMessageLimit は、Discordのメッセージ長制限です
const DiscordMessageLimit = 2000

// NewDiscordHandler は新しいDiscordHandlerインスタンスを作成します
func NewDiscordHandler(session *discordgo.Session, slashCommandHandler *SlashCommandHandler) *DiscordHandler {
	return &DiscordHandler{
		session:             session,
		slashCommandHandler: slashCommandHandler,
	}
}

// SetupHandlers は、Discordのイベントハンドラを設定します
func (h *DiscordHandler) SetupHandlers() {
	if h.slashCommandHandler != nil {
		h.session.AddHandler(h.slashCommandHandler.handleInteractionCreate)
	}
}

// RegisterCommands は、接続済みのセッションにスラッシュコマンドを登録します
func (h *DiscordHandler) RegisterCommands() error {
	if h.slashCommandHandler == nil {
		return nil
	}
	return h.slashCommandHandler.SetupSlashCommands(h.session)
}
