package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"nanobanana/internal/application"
	"nanobanana/internal/domain"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var chainFile string

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "初期画像を生成し、編集を順に適用します",
	Long: `初期画像を生成し、各ステップの結果に次の編集を重ねて保存します。

--file を指定しない場合は、風景画に納屋と夕焼けを加える既定のチェーンを実行します。

チェーンファイルの形式:
  initial:
    prompt: "A picturesque landscape..."
    filename: landscape_base.png
  edits:
    - prompt: "Add a red barn..."
      filename: landscape_with_barn.png`,
	RunE: runChain,
}

func init() {
	rootCmd.AddCommand(chainCmd)

	chainCmd.Flags().StringVarP(&chainFile, "file", "f", "", "チェーン定義のYAMLファイル")
}

func runChain(cmd *cobra.Command, args []string) error {
	chain := domain.DefaultEditChain()
	if chainFile != "" {
		loaded, err := loadChain(chainFile)
		if err != nil {
			return err
		}
		chain = loaded
	}

	service, err := do.Invoke[*application.ImageGenerationService](injector)
	if err != nil {
		return err
	}
	return runEditChain(cmd.Context(), cmd.OutOrStdout(), service, chain)
}

// loadChain は、YAMLファイルから編集チェーンを読み込みます
func loadChain(path string) (domain.EditChain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.EditChain{}, fmt.Errorf("チェーンファイルの読み込みに失敗: %w", err)
	}

	var chain domain.EditChain
	if err := yaml.Unmarshal(data, &chain); err != nil {
		return domain.EditChain{}, fmt.Errorf("チェーンファイルの解析に失敗: %w", err)
	}
	if err := chain.Validate(); err != nil {
		return domain.EditChain{}, err
	}
	return chain, nil
}

// runEditChain は、チェーンを実行して各ステップの保存先を表示します
// 初期画像が得られなかった場合はメッセージを表示して正常終了します
func runEditChain(ctx context.Context, out io.Writer, service *application.ImageGenerationService, chain domain.EditChain) error {
	fmt.Fprintln(out, "Generating initial image...")

	_, err := service.RunChain(ctx, chain, func(r application.ChainStepResult) {
		if r.Skipped {
			fmt.Fprintf(out, "Edit %d returned no image; continuing with the previous image.\n", r.Index)
			return
		}
		description := r.Step.Description
		if description == "" {
			description = fmt.Sprintf("Step %d", r.Index)
		}
		fmt.Fprintf(out, "%s saved to '%s'\n", description, r.Location)
	})
	if errors.Is(err, domain.ErrNoImageGenerated) {
		fmt.Fprintln(out, "Failed to generate initial image.")
		return nil
	}
	return err
}
