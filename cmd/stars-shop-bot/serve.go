package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/stars-shop-bot/internal/catalog"
	"github.com/fairyhunter13/stars-shop-bot/internal/config"
	httpapi "github.com/fairyhunter13/stars-shop-bot/internal/http"
	"github.com/fairyhunter13/stars-shop-bot/internal/model"
	"github.com/fairyhunter13/stars-shop-bot/internal/obs"
	"github.com/fairyhunter13/stars-shop-bot/internal/queue"
	"github.com/fairyhunter13/stars-shop-bot/internal/shop"
	"github.com/fairyhunter13/stars-shop-bot/internal/store"
	"github.com/fairyhunter13/stars-shop-bot/internal/telegram"
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (long polling) and the ops HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

func runServe(parent context.Context, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("bot_starting", "workers", cfg.WorkerCount, "ops_addr", cfg.OpsAddr)

	bundle, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	st := store.New()

	// The handler needs the API client and the client's router needs the
	// queue, so the service is bound after the bot exists.
	var svc *shop.Service
	mgr := queue.NewManager(cfg.WorkerCount, queue.New(cfg.QueueBuffer), func(ctx context.Context, u model.Update) error {
		return svc.Handle(ctx, u)
	})
	b, err := telegram.New(cfg.BotToken, cfg.PollTimeout, telegram.NewRouter(mgr))
	if err != nil {
		return err
	}
	svc = shop.NewService(telegram.NewClient(b), bundle.Catalog, bundle.Messages, st)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mgr.Start(context.WithoutCancel(ctx))

	var srv *http.Server
	if cfg.OpsAddr != "" {
		srv = &http.Server{
			Addr:              cfg.OpsAddr,
			Handler:           httpapi.NewRouter(httpapi.NewApp(bundle.Catalog, st, mgr)),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			obs.Logger.Info("http_listen", "addr", cfg.OpsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				obs.Logger.Error("http_server_error", "error", err)
				cancel()
			}
		}()
	}

	obs.Logger.Info("bot_running", "items", bundle.Catalog.Len())
	b.Start(ctx)

	obs.Logger.Info("shutdown_signal")
	mgr.CloseIntake()
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout", "backlog_size", mgr.Metrics().Backlog)
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}
	mgr.Stop()

	if srv != nil {
		ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSrv()
		if err := srv.Shutdown(ctxSrv); err != nil {
			return fmt.Errorf("ops server shutdown: %w", err)
		}
	}
	obs.Logger.Info("bot_stopped")
	return nil
}
