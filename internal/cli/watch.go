package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/tally/pkg/adapters/terminal"
	"github.com/aretw0/tally/pkg/ports"
)

// WatchOptions configure RunWatch.
type WatchOptions struct {
	Options
	// Out is where the dashboard is drawn. Defaults to Stdout.
	Out io.Writer
}

// RunWatch draws the dashboard in the terminal and keeps it current until
// ctx is done. Terminal resizes redraw the charts at the new width.
func RunWatch(ctx context.Context, opts WatchOptions) error {
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	logger := CreateLogger(cfg)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var rendererOpts []terminal.Option
	var sources []ports.TriggerSource
	fd := int(os.Stdout.Fd())
	tty := out == os.Stdout && terminal.IsTerminal(fd)
	if tty {
		rendererOpts = append(rendererOpts, terminal.WithClear(true))
	}
	renderer := terminal.NewRenderer(out, rendererOpts...)

	if tty {
		resize := terminal.NewResizeSource(fd,
			terminal.OnResize(func(w, _ int) { renderer.SetWidth(w) }),
			terminal.WithResizeLogger(logger),
		)
		if w, _, err := resize.Size(); err == nil {
			renderer.SetWidth(w)
		}
		sources = append(sources, resize)
	}

	app, err := Build(cfg, logger, WithRenderer(renderer))
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Info("Starting watcher", "store", cfg.Store, "theme", cfg.Theme)
	if err := app.Dashboard.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize charts: %w", err)
	}
	return app.Dashboard.Run(ctx, append(app.Sources, sources...)...)
}
