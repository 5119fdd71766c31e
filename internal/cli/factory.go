package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/internal/config"
	"github.com/aretw0/tally/internal/metrics"
	"github.com/aretw0/tally/internal/runtime"
	"github.com/aretw0/tally/pkg/adapters/loam"
	"github.com/aretw0/tally/pkg/adapters/redis"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/aretw0/tally/pkg/theme"
	backend "github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a crashed writer can block a collection.
const lockTTL = 5 * time.Second

// App is a dashboard together with the trigger sources that feed it and
// the resources it must release.
type App struct {
	Dashboard *tally.Dashboard
	Sources   []ports.TriggerSource
	Metrics   *metrics.Metrics

	closers []func() error
}

// Close closes the dashboard, then every backing resource.
func (a *App) Close() error {
	errs := []error{a.Dashboard.Close()}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// BuildOption customizes the dashboard assembled by Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	renderer ports.Renderer
	metrics  *metrics.Metrics
}

// WithRenderer sets the renderer charts are drawn with.
func WithRenderer(r ports.Renderer) BuildOption {
	return func(o *buildOptions) {
		o.renderer = r
	}
}

// WithMetrics records lifecycle events in m.
func WithMetrics(m *metrics.Metrics) BuildOption {
	return func(o *buildOptions) {
		o.metrics = m
	}
}

// Build assembles a dashboard following cfg: the record store, the theme
// root and the refresh policy. The dashboard is not initialized.
func Build(cfg *config.Config, logger *slog.Logger, opts ...BuildOption) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	mode, err := runtime.ParseRefreshMode(cfg.RefreshMode)
	if err != nil {
		return nil, err
	}

	app := &App{Metrics: bo.metrics}
	dashOpts := []tally.Option{
		tally.WithLogger(logger),
		tally.WithDebounce(cfg.Debounce),
		tally.WithRefreshMode(mode),
	}
	if bo.renderer != nil {
		dashOpts = append(dashOpts, tally.WithRenderer(bo.renderer))
	}
	if bo.metrics != nil {
		dashOpts = append(dashOpts, tally.WithLifecycleHooks(bo.metrics.Hooks(logger)))
	} else {
		dashOpts = append(dashOpts, tally.WithLifecycleHooks(createDebugHooks(logger)))
	}

	root, watcher, err := createThemeRoot(cfg, logger)
	if err != nil {
		return nil, err
	}
	dashOpts = append(dashOpts, tally.WithThemeRoot(root))
	if watcher != nil {
		app.Sources = append(app.Sources, watcher)
	}

	storeOpts, err := app.createStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	dashOpts = append(dashOpts, storeOpts...)

	d, err := tally.New(dashOpts...)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("error initializing dashboard: %w", err)
	}
	app.Dashboard = d
	return app, nil
}

func (a *App) closeResources() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// createStore selects the record store named by cfg.Store and registers
// the trigger source announcing its changes.
func (a *App) createStore(cfg *config.Config, logger *slog.Logger) ([]tally.Option, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redis.NewFromClient(client,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix), lockTTL),
		)
		a.closers = append(a.closers, store.Close)
		a.Sources = append(a.Sources, store.Changes(logger))
		logger.Debug("using redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return []tally.Option{tally.WithStore(store)}, nil

	case config.StoreLoam:
		src, err := loam.Open(cfg.DataDir, loam.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		a.Sources = append(a.Sources, src)
		logger.Debug("using loam records", "dir", cfg.DataDir)
		return []tally.Option{tally.WithSource(src)}, nil

	default:
		return nil, nil
	}
}

// createThemeRoot loads the theme file when one is configured and returns
// the watcher that keeps it current.
func createThemeRoot(cfg *config.Config, logger *slog.Logger) (*theme.Root, *theme.FileWatcher, error) {
	if cfg.ThemeFile == "" {
		root, err := theme.NewRoot(nil, cfg.Theme)
		return root, nil, err
	}

	f, err := theme.LoadFile(cfg.ThemeFile)
	if err != nil {
		return nil, nil, err
	}
	active := cfg.Theme
	if _, ok := f.Themes[active]; !ok {
		active = f.Default
	}
	root, err := theme.NewRoot(f.Themes, active)
	if err != nil {
		return nil, nil, err
	}
	return root, &theme.FileWatcher{Path: cfg.ThemeFile, Root: root, Logger: logger}, nil
}
