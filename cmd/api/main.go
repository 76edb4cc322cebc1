package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fetullahyldz/qr.menux.com-sub001/internal/api/http"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/api/http/handlers"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/events"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/menu"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/observability"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/persistence"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/service"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/settings"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := persistence.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, metrics))

	api := apiclient.New(cfg.Backend, logger)
	shared := storage.WithPrefix(store, "shared:")

	content := settings.NewClient(api,
		settings.WithTTL(cfg.Cache.TTL()),
		settings.WithFallbackTTL(cfg.Cache.FallbackTTL()),
		settings.WithLogger(logger),
		settings.WithObserver(metrics),
		settings.WithDispatcher(dispatcher),
		settings.WithMirror(shared),
	)
	menuClient := menu.NewClient(api, menu.WithLogger(logger), menu.WithMirror(shared))

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 10 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, api),
		Metrics:   handlers.NewMetricsHandler(metrics),
		Auth:      handlers.NewAuthHandler(),
		Content:   handlers.NewContentHandler(content),
		Menu:      handlers.NewMenuHandler(menuClient),
		Cart:      handlers.NewCartHandler(menuClient, dispatcher, logger),
		Pages:     handlers.NewPagesHandler(cfg.App.StaticDir),
		Sessions:  auth.NewSessionMiddleware(api, store, cfg.Session, logger),
		Guard:     auth.NewGuard(cfg.Guard),
		StaticDir: cfg.App.StaticDir,
	})

	go func() {
		logger.Info("gateway listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
