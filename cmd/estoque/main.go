package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/estoque/internal/config"
	"github.com/Spok95/estoque/internal/infra/db"
	httpx "github.com/Spok95/estoque/internal/infra/http"
	"github.com/Spok95/estoque/internal/infra/logger"

	"github.com/subosito/gotenv"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	log.Info("using store", "path", cfg.Store.Path)

	store, err := db.Open(cfg.Store.Path)
	if err != nil {
		// Без стора ядру делать нечего — интерфейс открывать нельзя.
		log.Error("store open failed", "err", err)
		return
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Bootstrap(ctx, store, log); err != nil {
		log.Error("bootstrap failed", "err", err)
		return
	}
	log.Info("store ready")

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
