// Package app initializes and holds the long-lived services of the checker.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/config"
	"github.com/pastchais/check-notion-url/internal/logging"
	"github.com/pastchais/check-notion-url/internal/notion"
	"github.com/pastchais/check-notion-url/internal/telemetry"
)

// App holds the shared services for one invocation: configuration, logger,
// the record store client and the optional metrics endpoint.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Store  *notion.Store

	metricsSrv *http.Server
}

// New loads configuration and initializes every service. It fails fast on a
// missing credential or database ID.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := notion.NewClient(notion.ClientConfig{
		Token:          cfg.Notion.Token,
		Timeout:        time.Duration(cfg.Notion.TimeoutSeconds) * time.Second,
		MaxRetries:     cfg.Notion.MaxRetries,
		BackoffInitial: time.Duration(cfg.Notion.BackoffInitialMs) * time.Millisecond,
		BackoffMax:     time.Duration(cfg.Notion.BackoffMaxMs) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init notion client: %w", err)
	}

	store, err := notion.NewStore(client, notion.StoreConfig{
		DatabaseID:     cfg.Notion.DatabaseID,
		TitleProperty:  cfg.Notion.TitleProperty,
		URLProperty:    cfg.Notion.URLProperty,
		StatusProperty: cfg.Notion.StatusProperty,
		StatusFilter:   cfg.Notion.StatusFilter,
		Labels: notion.StatusLabels{
			Available: cfg.Notion.LabelAvailable,
			Redirect:  cfg.Notion.LabelRedirect,
			Dead:      cfg.Notion.LabelDead,
			Error:     cfg.Notion.LabelError,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init notion store: %w", err)
	}

	telemetry.Init()

	a := &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
	}
	if cfg.Metrics.Enabled {
		a.startMetricsServer(cfg.Metrics.Port)
	}
	return a, nil
}

func (a *App) startMetricsServer(port int) {
	r := chi.NewRouter()
	r.Handle("/metrics", telemetry.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	a.metricsSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.Logger.Info("metrics endpoint listening", zap.Int("port", port))
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// Close shuts down the metrics endpoint and flushes the logger.
func (a *App) Close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.Logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
