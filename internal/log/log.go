package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/term"
)

type contextKey struct{}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// New は、出力先が端末ならテキスト形式、それ以外ならJSON形式のロガーを作成します
func New(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
		return lo.Ternary(a.Key == slog.TimeKey, slog.Attr{}, a)
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel は、文字列のログレベルを slog.Level に変換します。未知の値は Info です
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

func FromContextOrDiscard(ctx context.Context) *slog.Logger {
	if v, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return v
	}
	return discardLogger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
