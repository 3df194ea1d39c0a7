package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"nanobanana/internal/application"
	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/codec"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

const (
	defaultGeneratePrompt = "Create a photorealistic image of an orange dog with green eyes, sitting on a couch."
	defaultGenerateName   = "dog.png"
)

var (
	generatePrompt string
	generateName   string
	generateBase   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "プロンプトから画像を1枚生成します",
	Long: `プロンプトから画像を1枚生成して保存します。--base を指定した場合はその画像を編集します。

Examples:
  nanobanana generate
  nanobanana generate --prompt "a red circle on white background" --name circle.png
  nanobanana generate --base circle.png --prompt "add a blue square in the corner" --name edited.png`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generatePrompt, "prompt", defaultGeneratePrompt, "生成または編集の指示")
	generateCmd.Flags().StringVar(&generateName, "name", defaultGenerateName, "保存するファイル名")
	generateCmd.Flags().StringVar(&generateBase, "base", "", "編集する元画像のパス")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	service, err := do.Invoke[*application.ImageGenerationService](injector)
	if err != nil {
		return err
	}
	return generateImage(cmd.Context(), cmd.OutOrStdout(), service, generatePrompt, generateName, generateBase)
}

// generateImage は、1回の生成または編集を行い、結果を保存して保存先を表示します
// 画像が得られなかった場合はメッセージを表示し、エラーにはしません
func generateImage(ctx context.Context, out io.Writer, service *application.ImageGenerationService, prompt, name, basePath string) error {
	fmt.Fprintln(out, "Generating image...")

	var (
		img *domain.GeneratedImage
		err error
	)
	if basePath != "" {
		data, readErr := os.ReadFile(basePath)
		if readErr != nil {
			return fmt.Errorf("元画像の読み込みに失敗: %w", readErr)
		}
		base, _, decodeErr := codec.Decode(data)
		if decodeErr != nil {
			return fmt.Errorf("元画像のデコードに失敗: %w", decodeErr)
		}
		img, err = service.Edit(ctx, prompt, base)
	} else {
		img, err = service.Generate(ctx, prompt)
	}
	if err != nil {
		return err
	}
	if img == nil {
		fmt.Fprintln(out, "Failed to generate image. Please try again.")
		return nil
	}

	location, err := service.Save(ctx, img, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Image saved to '%s'\n", location)
	return nil
}
