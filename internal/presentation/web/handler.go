package web

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"nanobanana/internal/domain"
	"nanobanana/internal/infrastructure/codec"
	"nanobanana/internal/log"

	"github.com/gorilla/mux"
)

//go:embed assets/index.html
var indexTmpl string

const (
	// GeneratedFilename は、生成画像の保存名とダウンロード名です
	GeneratedFilename = "generated_image.png"
	// EditedFilename は、編集画像の保存名とダウンロード名です
	EditedFilename = "edited_image.png"

	defaultGeneratePrompt = "A picturesque landscape with a clear blue sky, green rolling hills, and a small river flowing through it."
	defaultEditPrompt     = "Add a red barn on the right side of the rolling hills."

	maxUploadSize = 32 << 20 // 32MB
)

// ImageService は、Webフォームが使う画像生成サービスのインターフェースです
type ImageService interface {
	Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error)
	Edit(ctx context.Context, prompt string, base image.Image) (*domain.GeneratedImage, error)
	Save(ctx context.Context, img *domain.GeneratedImage, name string) (string, error)
}

type pageResult struct {
	Caption  string
	DataURI  template.URL
	Filename string
	Message  string
}

type pageParams struct {
	GeneratePrompt string
	EditPrompt     string
	Warning        string
	Error          string
	Result         *pageResult
}

// Handler は、画像生成・編集フォームのHTTPハンドラーです
type Handler struct {
	service       ImageService
	logger        *slog.Logger
	tmpl          *template.Template
	maxUploadSize int64
}

// NewHandler は新しいHandlerインスタンスを作成します
func NewHandler(service ImageService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		tmpl:    template.Must(template.New("index").Parse(indexTmpl)),

		maxUploadSize: maxUploadSize,
	}
}

// Router は、ルーティングを設定したmux.Routerを返します
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.withLogger)
	r.HandleFunc("/", h.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/generate", h.HandleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/edit", h.HandleEdit).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.HandleHealth).Methods(http.MethodGet)
	return r
}

func (h *Handler) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.logger.With("method", r.Method, "path", r.URL.Path)
		logger.Debug("リクエストを受信")
		next.ServeHTTP(w, r.WithContext(log.NewContext(r.Context(), logger)))
	})
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, defaultParams())
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleGenerate は、プロンプトから画像を生成し、保存して表示します
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := defaultParams()
	params.GeneratePrompt = r.FormValue("prompt")

	if strings.TrimSpace(params.GeneratePrompt) == "" {
		params.Warning = "画像の説明を入力してください。"
		h.render(w, r, http.StatusBadRequest, params)
		return
	}

	img, err := h.service.Generate(ctx, params.GeneratePrompt)
	if err != nil {
		h.fail(w, r, params, "画像の生成に失敗しました", err)
		return
	}
	if img == nil {
		params.Error = "画像を生成できませんでした。もう一度お試しください。"
		h.render(w, r, http.StatusOK, params)
		return
	}

	h.showResult(w, r, params, img, "生成画像", GeneratedFilename, "画像を保存しました: ")
}

// HandleEdit は、アップロードされた画像をプロンプトに従って編集し、保存して表示します
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := defaultParams()

	// リクエスト全体の大きさを制限する（ParseMultipartFormの上限はメモリ上の分のみ）
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			params.Warning = fmt.Sprintf("アップロードできる画像は%dMBまでです。", h.maxUploadSize>>20)
			h.render(w, r, http.StatusRequestEntityTooLarge, params)
			return
		}
		params.Error = "フォームデータの解析に失敗しました。"
		h.render(w, r, http.StatusBadRequest, params)
		return
	}
	params.EditPrompt = r.FormValue("prompt")

	base, err := readUpload(r)
	if err != nil {
		log.FromContextOrDiscard(ctx).Warn("アップロード画像を取得できません", "error", err)
		params.Warning = "編集を適用する前に画像をアップロードしてください。"
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			params.Warning = "有効な画像ファイルを選択してください。"
		}
		h.render(w, r, http.StatusBadRequest, params)
		return
	}
	if strings.TrimSpace(params.EditPrompt) == "" {
		params.Warning = "編集内容を入力してください。"
		h.render(w, r, http.StatusBadRequest, params)
		return
	}

	img, err := h.service.Edit(ctx, params.EditPrompt, base)
	if err != nil {
		h.fail(w, r, params, "画像の編集に失敗しました", err)
		return
	}
	if img == nil {
		params.Error = "編集に失敗しました。もう一度お試しください。"
		h.render(w, r, http.StatusOK, params)
		return
	}

	h.showResult(w, r, params, img, "編集画像", EditedFilename, "編集を適用して保存しました: ")
}

func (h *Handler) showResult(w http.ResponseWriter, r *http.Request, params pageParams, img *domain.GeneratedImage, caption, filename, message string) {
	location, err := h.service.Save(r.Context(), img, filename)
	if err != nil {
		h.fail(w, r, params, "画像の保存に失敗しました", err)
		return
	}

	data, err := codec.EncodePNG(img.Image)
	if err != nil {
		h.fail(w, r, params, "画像のエンコードに失敗しました", err)
		return
	}

	params.Result = &pageResult{
		Caption:  caption,
		DataURI:  template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)),
		Filename: filename,
		Message:  message + location,
	}
	h.render(w, r, http.StatusOK, params)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, params pageParams, message string, err error) {
	log.FromContextOrDiscard(r.Context()).Error(message, "error", err)
	params.Error = message + ": " + err.Error()
	h.render(w, r, http.StatusInternalServerError, params)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, params pageParams) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, params); err != nil {
		log.FromContextOrDiscard(r.Context()).Error("テンプレートの実行に失敗", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func defaultParams() pageParams {
	return pageParams{
		GeneratePrompt: defaultGeneratePrompt,
		EditPrompt:     defaultEditPrompt,
	}
}

// readUpload は、フォームの image フィールドから画像を読み込みます
func readUpload(r *http.Request) (image.Image, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, http.ErrMissingFile
	}

	img, _, err := codec.Decode(data)
	return img, err
}
