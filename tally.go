package tally

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/tally/internal/runtime"
	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/aretw0/tally/pkg/signals"
	"github.com/aretw0/tally/pkg/theme"
)

//go:embed VERSION
var version string

// Version is the release of this module.
var Version = strings.TrimSpace(version)

// ErrNoDefault is returned by the package-level shim before SetDefault.
var ErrNoDefault = errors.New("no default dashboard registered")

// Dashboard is the high-level entry point: a chart coordinator wired to its
// record store, renderer, theme root and trigger bus.
type Dashboard struct {
	coord    *runtime.Coordinator
	source   ports.SnapshotSource
	renderer ports.Renderer
	root     *theme.Root
	bus      *signals.Bus
	logger   *slog.Logger
	hooks    domain.LifecycleHooks

	runtimeOpts []runtime.Option

	closeOnce sync.Once
	unbind    func()
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithStore sets the record store charts are built from.
// Defaults to an in-memory store publishing on the dashboard bus.
func WithStore(s ports.RecordStore) Option {
	return func(d *Dashboard) {
		d.source = s
	}
}

// WithSource sets a read-only record source. Store writes then fail with
// domain.ErrReadOnly.
func WithSource(s ports.SnapshotSource) Option {
	return func(d *Dashboard) {
		d.source = s
	}
}

// WithRenderer sets the renderer that materializes chart instances.
// Defaults to an in-memory renderer.
func WithRenderer(r ports.Renderer) Option {
	return func(d *Dashboard) {
		d.renderer = r
	}
}

// WithThemeRoot sets the style-carrying root. Defaults to the builtin
// light and dark themes with light active.
func WithThemeRoot(root *theme.Root) Option {
	return func(d *Dashboard) {
		d.root = root
	}
}

// WithBus sets the trigger bus. Stores that announce data changes must
// publish on the same bus.
func WithBus(bus *signals.Bus) Option {
	return func(d *Dashboard) {
		d.bus = bus
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		d.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dashboard) {
		d.hooks = hooks
	}
}

// WithDebounce sets the quiet window applied to resize bursts.
func WithDebounce(window time.Duration) Option {
	return func(d *Dashboard) {
		d.runtimeOpts = append(d.runtimeOpts, runtime.WithDebounce(window))
	}
}

// WithRefreshMode selects between in-place updates and recreation.
func WithRefreshMode(mode runtime.RefreshMode) Option {
	return func(d *Dashboard) {
		d.runtimeOpts = append(d.runtimeOpts, runtime.WithRefreshMode(mode))
	}
}

// New assembles a Dashboard. Charts are not created until Initialize.
func New(opts ...Option) (*Dashboard, error) {
	d := &Dashboard{}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.bus == nil {
		d.bus = signals.NewBus(d.logger)
	}
	if d.source == nil {
		d.source = memory.NewStore(d.bus)
	}
	if d.renderer == nil {
		d.renderer = memory.NewRenderer()
	}
	if d.root == nil {
		root, err := theme.NewRoot(nil, "light")
		if err != nil {
			return nil, err
		}
		d.root = root
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(d.logger),
		runtime.WithLifecycleHooks(d.hooks),
		runtime.WithBus(d.bus),
	}
	runtimeOpts = append(runtimeOpts, d.runtimeOpts...)

	d.coord = runtime.NewCoordinator(d.source, d.renderer, d.root, runtimeOpts...)
	d.unbind = theme.Bind(d.root, d.bus)
	return d, nil
}

// Initialize creates one chart per slot and binds every trigger.
// It is safe to call again; the previous charts are torn down first.
func (d *Dashboard) Initialize(ctx context.Context) error {
	return d.coord.Initialize(ctx)
}

// RefreshAll brings every chart up to date with the records and theme.
func (d *Dashboard) RefreshAll(ctx context.Context) error {
	return d.coord.RefreshAll(ctx)
}

// TeardownAll destroys every chart.
func (d *Dashboard) TeardownAll() error {
	return d.coord.TeardownAll()
}

// Close unbinds triggers and destroys every chart.
func (d *Dashboard) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.unbind()
		err = d.coord.Close()
		defaultDashboard.CompareAndSwap(d, nil)
	})
	return err
}

// Run feeds every source into the dashboard bus until ctx is done.
// It returns the first source failure.
func (d *Dashboard) Run(ctx context.Context, sources ...ports.TriggerSource) error {
	return runSources(ctx, d.bus, d.logger, sources)
}

// Resize announces a viewport change. Bursts collapse into one refresh.
func (d *Dashboard) Resize(source string) {
	d.bus.Publish(domain.NewTrigger(domain.TriggerViewportResized, source))
}

// SetTheme switches the active theme; charts refresh immediately.
func (d *Dashboard) SetTheme(name string) error {
	return d.root.SetTheme(name)
}

// Theme returns the active theme name.
func (d *Dashboard) Theme() string {
	return d.root.Active()
}

// Themes returns the known theme names, sorted.
func (d *Dashboard) Themes() []string {
	return d.root.Themes()
}

// Chart returns the configuration of the live chart in slot.
func (d *Dashboard) Chart(slot domain.Slot) (domain.ChartConfig, bool) {
	return d.coord.Chart(slot)
}

// Charts returns the configuration of every live chart.
func (d *Dashboard) Charts() map[domain.Slot]domain.ChartConfig {
	return d.coord.Charts()
}

// State reports whether slot holds a live chart.
func (d *Dashboard) State(slot domain.Slot) domain.SlotState {
	return d.coord.State(slot)
}

// Style resolves the current style descriptor.
func (d *Dashboard) Style() domain.Style {
	return d.coord.Style()
}

// Store returns the record store. Writes fail with domain.ErrReadOnly when
// the dashboard was built over a read-only source.
func (d *Dashboard) Store() ports.RecordStore {
	if rs, ok := d.source.(ports.RecordStore); ok {
		return rs
	}
	return readOnly{d.source}
}

type readOnly struct {
	ports.SnapshotSource
}

func (readOnly) ReplaceLeads(context.Context, []domain.Lead) error { return domain.ErrReadOnly }
func (readOnly) ReplaceProjects(context.Context, []domain.Project) error { return domain.ErrReadOnly }
func (readOnly) ReplacePayments(context.Context, []domain.Payment) error { return domain.ErrReadOnly }

// ThemeRoot returns the style-carrying root.
func (d *Dashboard) ThemeRoot() *theme.Root { return d.root }

// Bus returns the trigger bus.
func (d *Dashboard) Bus() *signals.Bus { return d.bus }

var defaultDashboard atomic.Pointer[Dashboard]

// SetDefault registers d as the target of the package-level RefreshAll.
// Passing nil unregisters it.
func SetDefault(d *Dashboard) {
	defaultDashboard.Store(d)
}

// Default returns the registered dashboard, or nil.
func Default() *Dashboard {
	return defaultDashboard.Load()
}

// RefreshAll refreshes the default dashboard. It lets code with no reference
// to the dashboard, such as form handlers after a save, request a refresh.
func RefreshAll(ctx context.Context) error {
	d := Default()
	if d == nil {
		return ErrNoDefault
	}
	return d.RefreshAll(ctx)
}
