// Package cli は、Cobraを使ったコマンドライン構成を実装します
package cli

import (
	"context"
	"os"

	"nanobanana/configs"
	"nanobanana/internal/inject"
	"nanobanana/internal/log"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var (
	// グローバルフラグ
	envFile string
	verbose bool

	// 読み込み済みの設定とDIコンテナ
	cfg      *configs.Config
	injector *do.Injector
)

// rootCmd は、CLIのベースコマンドです
var rootCmd = &cobra.Command{
	Use:   "nanobanana",
	Short: "Nano Banana - Gemini画像生成・編集キット",
	Long: `Gemini の画像モデルでテキストから画像を生成し、既存の画像に編集を加えます。

単発の生成、編集チェーンの実行、Webフォーム、Discord Botの4つの入口を提供します。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage: true,
}

// Execute は、ルートコマンドを実行します
// コマンドが失敗した場合もDIコンテナを停止します
func Execute() (err error) {
	defer func() {
		if shutdownErr := shutdownInjector(); err == nil {
			err = shutdownErr
		}
	}()
	return rootCmd.Execute()
}

// shutdownInjector は、構築済みのDIコンテナを停止して破棄します
func shutdownInjector() error {
	if injector == nil {
		return nil
	}
	i := injector
	injector = nil
	return i.Shutdown()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "読み込む.envファイル（デフォルトはカレントディレクトリの.env）")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "デバッグログを有効にする")
}

// initConfig は、設定を読み込み、ロガーとDIコンテナを準備します
func initConfig(cmd *cobra.Command) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	var err error
	cfg, err = configs.LoadConfig(envFiles...)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger := log.New(os.Stderr, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.NewContext(ctx, logger)
	cmd.SetContext(ctx)

	injector = inject.Setup(ctx, cfg)
	return nil
}
