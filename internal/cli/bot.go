package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nanobanana/internal/log"
	discordpres "nanobanana/internal/presentation/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Discord Botを起動します",
	Long:  "/generate と /edit のスラッシュコマンドを提供するDiscord Botを起動します。",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.FromContextOrDiscard(ctx)

	if err := cfg.ValidateDiscord(); err != nil {
		return err
	}

	slashCommandHandler, err := do.Invoke[*discordpres.SlashCommandHandler](injector)
	if err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		return fmt.Errorf("Discordセッションの作成に失敗: %w", err)
	}

	handler := discordpres.NewDiscordHandler(session, slashCommandHandler)
	handler.SetupHandlers()

	if err := session.Open(); err != nil {
		return fmt.Errorf("Discordへの接続に失敗: %w", err)
	}
	defer session.Close()

	if err := handler.RegisterCommands(); err != nil {
		return err
	}

	logger.Info("Discord Botを起動しました。Ctrl+Cで終了します")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Discord Botを停止しています")
	return nil
}
