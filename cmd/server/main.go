package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/do"

	"github.com/avireal12/Visionary-ai-v2/internal/config"
	"github.com/avireal12/Visionary-ai-v2/internal/inject"
	"github.com/avireal12/Visionary-ai-v2/internal/logging"
	"github.com/avireal12/Visionary-ai-v2/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(ctx, cfg)
	defer func() { _ = injector.Shutdown() }()

	handler, err := do.Invoke[*web.Handler](injector)
	if err != nil {
		slog.Error("依存関係の初期化に失敗しました", "error", err)
		os.Exit(1)
	}

	router := mux.NewRouter()
	handler.Register(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("サーバーを起動します", "port", cfg.Port, "model", cfg.Model, "safety_policy", string(cfg.SafetyPolicy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("サーバーが異常終了しました", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("終了シグナルを受信しました。シャットダウンします")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("シャットダウンが時間内に完了しませんでした", "error", err)
	}
}
