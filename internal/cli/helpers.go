package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/tally/internal/config"
	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	EnvFiles   []string
	Debug      bool
}

// LoadConfig resolves the configuration named by opts. --debug wins over
// the configured log level.
func LoadConfig(opts Options) (*config.Config, error) {
	env, err := config.Environ(opts.EnvFiles...)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath, env)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// CreateLogger configures the application logger from cfg.
// Servers log JSON, interactive commands text; both go to Stderr.
func CreateLogger(cfg *config.Config) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return logging.NewJSON(os.Stderr, level)
	}
	return logging.New(level)
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrigger: func(ctx context.Context, t domain.Trigger) {
			logger.Debug("Trigger", "kind", t.Kind, "source", t.Source)
		},
		OnRefresh: func(ctx context.Context, e *domain.RefreshEvent) {
			if len(e.Failed) > 0 {
				logger.Warn("Refresh incomplete", "reason", e.Reason, "failed", e.Failed)
				return
			}
			logger.Debug("Refresh", "reason", e.Reason, "duration", e.Duration)
		},
		OnInstanceCreate: func(ctx context.Context, e *domain.InstanceEvent) {
			if e.Err != nil {
				logger.Warn("Chart create failed", "slot", e.Slot, "err", e.Err)
				return
			}
			logger.Debug("Chart created", "slot", e.Slot)
		},
		OnInstanceDestroy: func(ctx context.Context, e *domain.InstanceEvent) {
			if e.Err != nil {
				logger.Warn("Chart destroy failed", "slot", e.Slot, "err", e.Err)
				return
			}
			logger.Debug("Chart destroyed", "slot", e.Slot)
		},
		OnDebounced: func(ctx context.Context, t domain.Trigger) {
			logger.Debug("Resize superseded", "source", t.Source)
		},
	}
}
