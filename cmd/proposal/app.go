package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	cacheredis "github.com/goliatone/go-proposal/adapters/cache/redis"
	cachefs "github.com/goliatone/go-proposal/adapters/cache/fs"
	proposalpdf "github.com/goliatone/go-proposal/adapters/pdf"
	storebun "github.com/goliatone/go-proposal/adapters/store/bun"
	storepgx "github.com/goliatone/go-proposal/adapters/store/pgx"
	"github.com/goliatone/go-proposal/config"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// documentStore is what the commands need from a configured store.
type documentStore interface {
	proposal.DocumentStore
	proposal.DocumentWriter
	List(ctx context.Context) ([]string, error)
}

// App holds the wired dependencies for one CLI invocation.
type App struct {
	Config  config.Config
	Logger  proposal.Logger
	Store   documentStore
	Service proposal.Service

	closers []func() error
}

// NewApp builds the store, cache, PDF engine and service from cfg.
func NewApp(ctx context.Context, cfg config.Config, logger proposal.Logger) (*App, error) {
	if logger == nil {
		logger = proposal.NopLogger{}
	}
	app := &App{Config: cfg, Logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store

	cache, err := app.openCache(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	composer, err := proposal.NewComposer(
		proposal.WithAssetBaseURL(cfg.Render.AssetBaseURL),
		proposal.WithComposerLogger(logger),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	serviceCfg := proposal.ServiceConfig{
		Store:    store,
		Composer: composer,
		Cache:    cache,
		Logger:   logger,
	}
	if converter := app.openPDF(); converter != nil {
		serviceCfg.PDF = converter
	}

	svc, err := proposal.NewService(serviceCfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Service = svc
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) openStore(ctx context.Context) (documentStore, error) {
	switch a.Config.Store.Driver {
	case config.StoreMemory:
		return proposal.NewMemoryStore(), nil
	case config.StoreSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, a.Config.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		a.onClose(db.Close)
		store := storebun.NewStore(db)
		if err := store.CreateSchema(ctx); err != nil {
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
		return store, nil
	case config.StorePostgres:
		store, err := storepgx.Open(ctx, a.Config.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.onClose(func() error {
			store.Close()
			return nil
		})
		if err := store.CreateSchema(ctx); err != nil {
			return nil, fmt.Errorf("create postgres schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, a.Config.Store.Driver)
	}
}

func (a *App) openCache(ctx context.Context) (proposal.ArtifactCache, error) {
	cfg := a.Config.Cache
	switch cfg.Driver {
	case config.CacheNone, "":
		return nil, nil
	case config.CacheMemory:
		return proposal.NewMemoryCache(cfg.TTL), nil
	case config.CacheFS:
		return cachefs.NewCache(cfg.Dir, cfg.TTL), nil
	case config.CacheRedis:
		cache, err := cacheredis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
		if err != nil {
			return nil, err
		}
		a.onClose(cache.Close)
		return cache, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

// openPDF returns nil when PDF rendering is disabled.
func (a *App) openPDF() *proposalpdf.Converter {
	cfg := a.Config.PDF
	var engine proposalpdf.Engine
	switch cfg.Engine {
	case config.EngineChromium:
		chromium := &proposalpdf.ChromiumEngine{
			BrowserPath: cfg.BrowserPath,
			Headless:    true,
			Timeout:     cfg.Timeout,
			Args:        cfg.Args,
		}
		a.onClose(chromium.Close)
		engine = chromium
	case config.EngineRod:
		rodEngine := &proposalpdf.RodEngine{
			BrowserPath: cfg.BrowserPath,
			NoSandbox:   true,
			Timeout:     cfg.Timeout,
		}
		a.onClose(rodEngine.Close)
		engine = rodEngine
	case config.EngineWKHTMLTOPDF:
		engine = proposalpdf.WKHTMLTOPDFEngine{
			Command: cfg.WKHTMLTOPDFPath,
			Args:    cfg.Args,
			Timeout: cfg.Timeout,
		}
	default:
		return nil
	}

	converter := proposalpdf.NewConverter(engine)
	converter.Options.PageSize = cfg.PageSize
	converter.Options.BaseURL = cfg.BaseURL
	if cfg.ExternalAssetsPolicy != "" {
		converter.Options.ExternalAssetsPolicy = proposalpdf.ExternalAssetsPolicy(cfg.ExternalAssetsPolicy)
	}
	return converter
}
