package app

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eumenides/internal/classifier"
	"eumenides/internal/config"
	"eumenides/internal/eventbus"
	"eumenides/internal/infrastructure/api"
	"eumenides/internal/infrastructure/export"
	"eumenides/internal/infrastructure/scheduler"
	"eumenides/internal/infrastructure/storage"
	"eumenides/internal/infrastructure/telegram"
	"eumenides/internal/logging"
	"eumenides/internal/ports"
	"eumenides/internal/source"
	"eumenides/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	repo    ports.AccountRepository
	crawler *usecase.Crawler
	server  *http.Server
}

// New builds a runnable application instance. The event bus is constructed
// here once per process and handed to every component that needs it.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repo, err := buildRepository(ctx, cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(baseLogger.With("component", "eventbus"))

	exporter := export.NewExporter(
		cfg.Export.Dir,
		decodeKey(cfg.Export.Key, "EXPORT_KEY", baseLogger),
		decodeKey(cfg.Export.HMACKey, "EXPORT_HMAC_KEY", baseLogger),
		cfg.Export.Contact,
		baseLogger.With("component", "export"),
	)
	bus.Subscribe(eventbus.AccountFlagged, exporter.Handle)

	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier := telegram.NewAlertNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
		bus.Subscribe(eventbus.AccountFlagged, notifier.Handle)
	}

	registry := source.NewRegistry()
	registry.Register(telegram.NewPreviewSource(nil))

	ingest := usecase.NewIngest(usecase.IngestDeps{
		Sources:    registry,
		Repository: repo,
		Engine:     classifier.New(classifier.DefaultTables()),
		Bus:        bus,
		Threshold:  cfg.Risk.Threshold,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	crawler := usecase.NewCrawler(
		scheduler.NewPollScheduler(cfg.Crawler.PollInterval()),
		ingest,
		cfg.Crawler.Platform,
		cfg.Crawler.Seeds,
		cfg.Crawler.HandleDelay(),
		baseLogger.With("component", "crawler"),
	)

	apiServer := api.NewServer(usecase.NewListFlagged(repo), repo, baseLogger.With("component", "api"))
	server := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		repo:    repo,
		crawler: crawler,
		server:  server,
	}, nil
}

// Run starts the crawler and the listing API and blocks until the context
// is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.crawler.Start(ctx); err != nil {
		return fmt.Errorf("start crawler: %w", err)
	}
	defer func() {
		_ = a.crawler.Stop(context.Background())
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	}
}

func buildRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.AccountRepository, error) {
	if cfg.Database.DSN == "" {
		logger.Warn("no database DSN configured, using in-memory repository")
		return storage.NewMemoryRepository(), nil
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func decodeKey(value, name string, logger *slog.Logger) []byte {
	if value == "" {
		return nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		logger.Error("invalid hex key, ignoring", "name", name, "error", err)
		return nil
	}
	return key
}
