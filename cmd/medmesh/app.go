package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/medmesh"
	"github.com/hupe1980/medmesh/config"
	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/engine"
	"github.com/hupe1980/medmesh/history"
	"github.com/hupe1980/medmesh/history/postgres"
	"github.com/hupe1980/medmesh/logging"
	"github.com/hupe1980/medmesh/metrics"
	"github.com/hupe1980/medmesh/model"
	"github.com/hupe1980/medmesh/model/registry"
	"github.com/hupe1980/medmesh/tracing"
)

// app holds everything built from configuration.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	mesh    *medmesh.MedMesh
	store   core.AnalysisStore
	closers []func(ctx context.Context) error
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewSlogLogger(level, cfg.Log.Format, cfg.Log.AddSource)

	a := &app{cfg: cfg, logger: logger}

	tracingCfg := cfg.Tracing
	if tracingCfg.ServiceVersion == "" {
		tracingCfg.ServiceVersion = version
	}
	tp, err := tracing.NewProvider(ctx, tracingCfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, tp.Shutdown)

	load, err := registry.LoadFunc(cfg.Model.Provider, registry.Settings{
		APIKey:      cfg.APIKey(),
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
	})
	if err != nil {
		return nil, a.closeWith(ctx, err)
	}
	loader := model.NewLoader(cfg.Model.ID, load, func(o *model.LoaderOptions) {
		o.Logger = logger
	})

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, a.closeWith(ctx, err)
	}
	a.store = store

	a.mesh = medmesh.New(loader, func(o *medmesh.Options) {
		o.EngineConfig = engine.Config{
			MaxConcurrentInvocations: cfg.Engine.MaxConcurrentInvocations,
			GenerationTimeout:        cfg.Engine.GenerationTimeout,
			MaxModelCalls:            cfg.Engine.MaxModelCalls,
		}
		o.LenientRepair = cfg.Repair.Lenient
		o.Store = store
		o.Metrics = metrics.Default()
		o.Logger = logger
	})

	logger.Info("app.ready",
		"provider", cfg.Model.Provider,
		"model", cfg.Model.ID,
		"lenient_repair", cfg.Repair.Lenient,
		"postgres", cfg.Database.URL != "",
	)

	return a, nil
}

func (a *app) openStore(ctx context.Context) (core.AnalysisStore, error) {
	if a.cfg.Database.URL == "" {
		return history.NewInMemoryStore(a.cfg.Database.HistoryCapacity), nil
	}

	pool, err := postgres.Open(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error {
		pool.Close()
		return nil
	})

	store := postgres.New(pool, func(o *postgres.Options) {
		o.Table = a.cfg.Database.Table
		o.Logger = a.logger
	})

	if a.cfg.Database.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) closeWith(ctx context.Context, err error) error {
	if cerr := a.Close(ctx); cerr != nil {
		return fmt.Errorf("%w (cleanup: %v)", err, cerr)
	}
	return err
}
