package terminal

import (
	"context"
	"log/slog"
	"os"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"golang.org/x/term"
)

// ResizeSource publishes a viewport signal whenever the terminal attached
// to fd changes size.
type ResizeSource struct {
	fd       int
	onResize func(width, height int)
	logger   *slog.Logger

	notify func() (<-chan struct{}, func())
	size   func() (int, int, error)
}

var _ ports.TriggerSource = (*ResizeSource)(nil)

// ResizeOption configures a ResizeSource.
type ResizeOption func(*ResizeSource)

// OnResize is called with the new size before the signal is published.
// Renderer.SetWidth is the usual target.
func OnResize(fn func(width, height int)) ResizeOption {
	return func(s *ResizeSource) {
		s.onResize = fn
	}
}

// WithResizeLogger sets the logger.
func WithResizeLogger(logger *slog.Logger) ResizeOption {
	return func(s *ResizeSource) {
		s.logger = logger
	}
}

// NewResizeSource watches the terminal on fd.
func NewResizeSource(fd int, opts ...ResizeOption) *ResizeSource {
	s := &ResizeSource{
		fd:     fd,
		logger: slog.New(slog.DiscardHandler),
		notify: resizeNotify,
	}
	s.size = func() (int, int, error) { return term.GetSize(s.fd) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stdout watches the terminal standard output is attached to.
func Stdout(opts ...ResizeOption) *ResizeSource {
	return NewResizeSource(int(os.Stdout.Fd()), opts...)
}

// IsTerminal reports whether fd is attached to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Size returns the current terminal size.
func (s *ResizeSource) Size() (width, height int, err error) {
	return s.size()
}

// Run blocks until ctx is cancelled.
func (s *ResizeSource) Run(ctx context.Context, pub ports.Publisher) error {
	events, stop := s.notify()
	defer stop()

	lastW, lastH, err := s.size()
	if err != nil {
		s.logger.Debug("terminal size unknown", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
			w, h, err := s.size()
			if err != nil {
				s.logger.Debug("terminal size unavailable", "err", err)
				continue
			}
			if w == lastW && h == lastH {
				continue
			}
			lastW, lastH = w, h
			s.logger.Debug("terminal resized", "width", w, "height", h)
			if s.onResize != nil {
				s.onResize(w, h)
			}
			pub.Publish(domain.NewTrigger(domain.TriggerViewportResized, "terminal"))
		}
	}
}
