package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nanobanana/configs"
	"nanobanana/internal/log"
	"nanobanana/internal/presentation/web"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "画像生成・編集のWebフォームを起動します",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "待ち受けアドレス（デフォルトは :$PORT）")
}

func runServe(cmd *cobra.Command, args []string) error {
	handler, err := do.Invoke[*web.Handler](injector)
	if err != nil {
		return err
	}

	addr, err := listenAddr(cfg, serveAddr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveHTTP(ctx, addr, handler.Router())
}

// listenAddr は、--addr が無ければ PORT から待ち受けアドレスを決めます
func listenAddr(cfg *configs.Config, flagAddr string) (string, error) {
	if flagAddr != "" {
		return flagAddr, nil
	}
	if err := cfg.ValidateServer(); err != nil {
		return "", err
	}
	return ":" + cfg.Server.Port, nil
}

// serveHTTP は、ctx がキャンセルされるまでHTTPサーバーを動かし、その後グレースフルに停止します
func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	logger := log.FromContextOrDiscard(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Webサーバーを起動しました", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Webサーバーを停止しています")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
