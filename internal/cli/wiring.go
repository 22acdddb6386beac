package cli

import (
	"fmt"

	"github.com/ppiankov/factlens/internal/app"
	"github.com/ppiankov/factlens/internal/classify"
	"github.com/ppiankov/factlens/internal/client"
	"github.com/ppiankov/factlens/internal/direct"
	"github.com/ppiankov/factlens/internal/extract/adapters"
	"github.com/ppiankov/factlens/internal/fetch"
	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/theme"
	"github.com/ppiankov/factlens/internal/util"
	"github.com/ppiankov/factlens/internal/worker"
)

// newBackend builds the configured backend
func newBackend(cfg *model.Config, log logger.Logger) (app.Backend, error) {
	if cfg.Backend != "direct" {
		log.Debug("using fact-check service", logger.String("base_url", cfg.Service.BaseURL))
		return client.New(cfg.Service), nil
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.Service))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	transport := util.NewTransport(cfg.Service.HTTPProxy, cfg.Service.HTTPSProxy, cfg.Service.NoProxy)
	limiter := worker.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst)
	fetcher := fetch.NewFetcher(cfg.Fetch, transport, limiter)

	log.Debug("using direct backend",
		logger.String("provider", provider.Name()),
		logger.String("model", cfg.LLM.Model),
	)

	return direct.New(direct.Options{
		Checker:       llm.NewFactChecker(provider),
		Extractor:     adapters.NewRegistry(fetcher),
		Logger:        log,
		Limits:        cfg.LLM,
		Workers:       cfg.Concurrency.Workers,
		FailedVerdict: llm.FailedVerdict,
	}), nil
}

// newController wires a controller around backend
func newController(cfg *model.Config, backend app.Backend, log logger.Logger, m *metrics.Metrics) *app.Controller {
	rule := classify.RuleAnchored
	if cfg.Input.ScanEmbeddedURLs {
		rule = classify.RuleEmbedded
	}

	return app.NewController(app.Options{
		Backend:       backend,
		Classifier:    classify.New(rule),
		Logger:        log,
		Metrics:       m,
		MaxImageBytes: cfg.Input.MaxImageBytes,
	})
}

// newThemeManager opens the preference store
func newThemeManager(cfg *model.Config) *theme.Manager {
	return theme.NewManager(store.NewLayeredStore(cfg.Prefs.Dir))
}

// setup loads config and builds the logger and backend shared by commands
func setup(format string) (*model.Config, logger.Logger, app.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if format != "" {
		cfg.Log.Format = format
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	backend, err := newBackend(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, backend, nil
}
