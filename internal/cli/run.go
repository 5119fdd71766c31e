package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/internal/metrics"
	"github.com/aretw0/tally/internal/presentation/tui"
	httpAdapter "github.com/aretw0/tally/pkg/adapters/http"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout gives outstanding requests a deadline on shutdown.
const shutdownTimeout = 5 * time.Second

// ServeOptions configure RunServe.
type ServeOptions struct {
	Options
	// Addr overrides the configured listen address when set.
	Addr string
}

// RunServe serves the live dashboard over HTTP until ctx is done.
func RunServe(ctx context.Context, opts ServeOptions) error {
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	logger := CreateLogger(cfg)

	streams := httpAdapter.NewStreamManager(logger)
	m := metrics.New()
	app, err := Build(cfg, logger,
		WithRenderer(httpAdapter.NewRenderer(streams)),
		WithMetrics(m),
	)
	if err != nil {
		return err
	}
	defer app.Close()

	d := app.Dashboard
	tally.SetDefault(d)
	if err := d.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize charts: %w", err)
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpAdapter.NewHandler(d,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(m.Handler()),
			httpAdapter.WithLogger(logger),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tally server", "addr", cfg.Addr, "store", cfg.Store, "version", tally.Version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return d.Run(gctx, app.Sources...)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("tally server stopped gracefully")
		return nil
	})
	return g.Wait()
}

// ReportOptions configure RunReport.
type ReportOptions struct {
	Options
	// Style is a glamour style name; empty picks one from the terminal.
	Style string
	// Raw prints the markdown without rendering it.
	Raw    bool
	Width  int
	Banner bool
}

// RunReport writes a one-shot summary of the current records and charts.
func RunReport(ctx context.Context, w io.Writer, opts ReportOptions) error {
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	logger := CreateLogger(cfg)

	app, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	md, err := Report(ctx, app.Dashboard, time.Now())
	if err != nil {
		return err
	}

	if opts.Banner {
		tui.PrintBanner(w)
	}
	if opts.Raw {
		_, err = io.WriteString(w, md)
		return err
	}
	render, err := tui.NewRenderer(opts.Style, opts.Width)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Report builds the charts once and summarizes them with the records they
// were built from.
func Report(ctx context.Context, d *tally.Dashboard, now time.Time) (string, error) {
	if err := d.Initialize(ctx); err != nil {
		return "", fmt.Errorf("failed to build charts: %w", err)
	}
	snap, err := d.Store().Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read records: %w", err)
	}
	return tui.Report(d.Charts(), snap, now), nil
}
