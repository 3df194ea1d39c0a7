package cli

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
)

// botPermissions は、画像付きの応答に必要な権限の合計です
// View Channels (1024) + Send Messages (2048) + Attach Files (32768)
const botPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Discord Botの招待URLを表示します",
	RunE:  runInvite,
}

func init() {
	rootCmd.AddCommand(inviteCmd)
}

func runInvite(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateDiscord(); err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		return fmt.Errorf("Discordセッションの作成に失敗: %w", err)
	}
	defer session.Close()

	user, err := session.User("@me")
	if err != nil {
		return fmt.Errorf("Bot情報の取得に失敗: %w", err)
	}

	printInvite(cmd.OutOrStdout(), user)
	return nil
}

// inviteURL は、スラッシュコマンドを含むBotの招待URLを組み立てます
func inviteURL(clientID string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("permissions", strconv.FormatInt(botPermissions, 10))
	q.Set("scope", "bot applications.commands")
	return "https://discord.com/api/oauth2/authorize?" + q.Encode()
}

func printInvite(out io.Writer, user *discordgo.User) {
	fmt.Fprintf(out, "🤖 Bot情報:\n")
	fmt.Fprintf(out, "   名前: %s\n", user.Username)
	fmt.Fprintf(out, "   ID: %s\n", user.ID)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "🔗 Bot招待URL:\n")
	fmt.Fprintf(out, "   %s\n", inviteURL(user.ID))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "📋 必要な権限:\n")
	fmt.Fprintf(out, "   - View Channels (1024)\n")
	fmt.Fprintf(out, "   - Send Messages (2048)\n")
	fmt.Fprintf(out, "   - Attach Files (32768)\n")
	fmt.Fprintf(out, "   - 合計: %d\n", botPermissions)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "🎯 Botの使い方:\n")
	fmt.Fprintf(out, "   /generate prompt:<説明> で画像を生成\n")
	fmt.Fprintf(out, "   /edit image:<画像> prompt:<編集内容> で画像を編集\n")
}
