package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tally/internal/debounce"
	"github.com/aretw0/tally/pkg/charts"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/aretw0/tally/pkg/registry"
	"github.com/aretw0/tally/pkg/signals"
	"github.com/aretw0/tally/pkg/theme"
)

// DefaultDebounce is the quiet window applied to viewport resize bursts.
const DefaultDebounce = 250 * time.Millisecond

const resizeTask = "refresh:resize"

// RefreshMode selects how a refresh applies new configurations to live charts.
type RefreshMode int

const (
	// RefreshUpdate updates live instances in place and recreates empty slots.
	RefreshUpdate RefreshMode = iota
	// RefreshRecreate destroys and recreates every instance on each refresh.
	RefreshRecreate
)

func (m RefreshMode) String() string {
	if m == RefreshRecreate {
		return "recreate"
	}
	return "update"
}

// ParseRefreshMode maps "update" or "recreate" to a RefreshMode.
func ParseRefreshMode(s string) (RefreshMode, error) {
	switch s {
	case "", "update":
		return RefreshUpdate, nil
	case "recreate":
		return RefreshRecreate, nil
	default:
		return RefreshUpdate, fmt.Errorf("unknown refresh mode %q", s)
	}
}

// Coordinator keeps one chart per slot in sync with records, theme and viewport.
// Every operation runs under a single mutex: triggers arrive on arbitrary
// goroutines but the slot table is only ever mutated by one of them at a time.
type Coordinator struct {
	mu sync.Mutex

	source   ports.SnapshotSource
	renderer ports.Renderer
	resolver *theme.Resolver
	registry *registry.Registry
	bus      *signals.Bus
	bindings signals.Set

	scheduler *debounce.Scheduler
	debounce  time.Duration
	mode      RefreshMode

	hooks  domain.LifecycleHooks
	logger *slog.Logger

	initialized bool
	epoch       uint64
	baseCtx     context.Context
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = hooks
	}
}

// WithBus binds the coordinator to an existing signal bus.
func WithBus(bus *signals.Bus) Option {
	return func(c *Coordinator) {
		c.bus = bus
	}
}

// WithDebounce sets the resize quiet window.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		c.debounce = d
	}
}

// WithRefreshMode selects update-in-place or destroy-and-recreate refreshes.
func WithRefreshMode(m RefreshMode) Option {
	return func(c *Coordinator) {
		c.mode = m
	}
}

// WithScheduler replaces the debounce scheduler (tests drive time with it).
func WithScheduler(s *debounce.Scheduler) Option {
	return func(c *Coordinator) {
		c.scheduler = s
	}
}

// NewCoordinator creates a coordinator. No chart exists until Initialize.
func NewCoordinator(source ports.SnapshotSource, renderer ports.Renderer, styles ports.StyleSource, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:   source,
		renderer: renderer,
		resolver: theme.NewResolver(styles),
		debounce: DefaultDebounce,
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.bus == nil {
		c.bus = signals.NewBus(c.logger)
	}
	if c.scheduler == nil {
		c.scheduler = debounce.New()
	}
	c.registry = registry.NewRegistry(
		registry.WithLogger(c.logger),
		registry.WithDestroyHook(c.onDestroy),
	)
	return c
}

// Bus returns the signal bus the coordinator is bound to.
func (c *Coordinator) Bus() *signals.Bus {
	return c.bus
}

// Initialize tears down any existing charts, creates one chart per slot and
// (re)binds every trigger. Calling it again leaves exactly one chart per slot
// and one handler per signal. Slots whose creation fails stay empty and are
// retried on the next refresh; their errors are returned joined.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.baseCtx = context.WithoutCancel(ctx)

	style := c.resolver.Resolve()
	snap := c.loadSnapshot(ctx)

	var errs []error
	for _, slot := range domain.Slots() {
		if err := c.createLocked(ctx, slot, snap, style); err != nil {
			errs = append(errs, err)
		}
	}

	c.bindLocked()
	c.initialized = true
	c.flushLocked()
	c.logger.Info("charts initialized", "live", c.registry.Live(), "mode", c.mode)

	return errors.Join(errs...)
}

// RefreshAll resolves the style once and brings every slot up to date with
// the current records. A failing slot does not stop the others.
func (c *Coordinator) RefreshAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx, "manual")
}

// TeardownAll destroys every chart and cancels a pending debounced refresh.
// Every slot is empty afterwards, even when some destroys fail.
func (c *Coordinator) TeardownAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.teardownLocked()
	c.flushLocked()
	return err
}

// Close unbinds every trigger and tears the charts down.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bindings.Dispose()
	c.scheduler.CancelAll()
	c.initialized = false
	err := c.teardownLocked()
	c.flushLocked()
	return err
}

// State reports whether slot holds a live chart.
func (c *Coordinator) State(slot domain.Slot) domain.SlotState {
	return c.registry.State(slot)
}

// Chart returns the configuration of the live chart in slot.
func (c *Coordinator) Chart(slot domain.Slot) (domain.ChartConfig, bool) {
	inst, ok := c.registry.Get(slot)
	if !ok {
		return domain.ChartConfig{}, false
	}
	return inst.Config(), true
}

// Charts returns the configuration of every live chart.
func (c *Coordinator) Charts() map[domain.Slot]domain.ChartConfig {
	return c.registry.Configs()
}

// Style resolves the current style descriptor.
func (c *Coordinator) Style() domain.Style {
	return c.resolver.Resolve()
}

// Bindings returns the number of live trigger subscriptions.
func (c *Coordinator) Bindings() int {
	return c.bindings.Len()
}

func (c *Coordinator) teardownLocked() error {
	c.epoch++
	c.scheduler.Cancel(resizeTask)
	err := c.registry.ClearAll()
	if err != nil {
		c.logger.Warn("teardown completed with errors", "err", err)
	}
	return err
}

// bindLocked disposes every prior subscription before subscribing again.
func (c *Coordinator) bindLocked() {
	c.bindings.Dispose()
	for _, kind := range domain.DataTriggers() {
		c.bindings.Add(c.bus.Subscribe(kind, c.onImmediate))
	}
	c.bindings.Add(c.bus.Subscribe(domain.TriggerThemeChanged, c.onImmediate))
	c.bindings.Add(c.bus.Subscribe(domain.TriggerViewportResized, c.onResize))
}

func (c *Coordinator) onImmediate(t domain.Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.baseCtx
	if c.hooks.OnTrigger != nil {
		c.hooks.OnTrigger(ctx, t)
	}
	if err := c.refreshLocked(ctx, string(t.Kind)); err != nil {
		c.logger.Warn("refresh after trigger failed", "trigger", t.Kind, "err", err)
	}
}

func (c *Coordinator) onResize(t domain.Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.baseCtx
	if c.hooks.OnTrigger != nil {
		c.hooks.OnTrigger(ctx, t)
	}

	epoch := c.epoch
	superseded := c.scheduler.Schedule(resizeTask, c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A teardown since scheduling invalidates this refresh.
		if c.epoch != epoch {
			return
		}
		if err := c.refreshLocked(c.baseCtx, string(domain.TriggerViewportResized)); err != nil {
			c.logger.Warn("debounced refresh failed", "err", err)
		}
	})
	if superseded && c.hooks.OnDebounced != nil {
		c.hooks.OnDebounced(ctx, t)
	}
}

func (c *Coordinator) refreshLocked(ctx context.Context, reason string) error {
	if !c.initialized {
		return domain.ErrNotInitialized
	}

	start := time.Now()
	style := c.resolver.Resolve()
	snap := c.loadSnapshot(ctx)

	event := &domain.RefreshEvent{Reason: reason}
	var errs []error
	for _, slot := range domain.Slots() {
		if err := c.refreshSlotLocked(ctx, slot, snap, style); err != nil {
			event.Failed = append(event.Failed, slot)
			errs = append(errs, err)
		}
	}
	c.flushLocked()
	event.Duration = time.Since(start)

	c.logger.Debug("charts refreshed", "reason", reason, "duration", event.Duration, "failed", len(event.Failed))
	if c.hooks.OnRefresh != nil {
		c.hooks.OnRefresh(ctx, event)
	}
	return errors.Join(errs...)
}

func (c *Coordinator) refreshSlotLocked(ctx context.Context, slot domain.Slot, snap *domain.Snapshot, style domain.Style) error {
	inst, live := c.registry.Get(slot)
	if !live || c.mode == RefreshRecreate {
		return c.createLocked(ctx, slot, snap, style)
	}

	cfg, err := charts.Build(slot, snap, style)
	if err != nil {
		return err
	}
	if err := inst.Update(cfg); err != nil {
		c.logger.Warn("in-place update failed, recreating", "slot", slot, "err", err)
		return c.createLocked(ctx, slot, snap, style)
	}
	return nil
}

// createLocked builds and installs a fresh instance, destroying the old one first.
func (c *Coordinator) createLocked(ctx context.Context, slot domain.Slot, snap *domain.Snapshot, style domain.Style) error {
	cfg, err := charts.Build(slot, snap, style)
	if err != nil {
		return err
	}

	// Clear reports its own failures; the slot is empty either way.
	_ = c.registry.Clear(slot)

	inst, err := c.renderer.Create(ctx, cfg)
	if err != nil {
		c.logger.Error("chart creation failed", "slot", slot, "err", err)
		c.fireCreate(ctx, slot, err)
		return fmt.Errorf("create %s: %w", slot, err)
	}
	c.registry.Set(slot, inst)
	c.fireCreate(ctx, slot, nil)
	return nil
}

// flushLocked presents the charts touched by the current operation.
func (c *Coordinator) flushLocked() {
	f, ok := c.renderer.(ports.Flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		c.logger.Warn("renderer flush failed", "err", err)
	}
}

// loadSnapshot never fails: an unreadable source renders empty charts.
func (c *Coordinator) loadSnapshot(ctx context.Context) *domain.Snapshot {
	if c.source == nil {
		return &domain.Snapshot{}
	}
	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		c.logger.Error("snapshot unavailable, rendering empty charts", "err", err)
		return &domain.Snapshot{}
	}
	if snap == nil {
		return &domain.Snapshot{}
	}
	return snap
}

func (c *Coordinator) fireCreate(ctx context.Context, slot domain.Slot, err error) {
	if c.hooks.OnInstanceCreate != nil {
		c.hooks.OnInstanceCreate(ctx, &domain.InstanceEvent{Slot: slot, Err: err})
	}
}

func (c *Coordinator) onDestroy(slot domain.Slot, err error) {
	if c.hooks.OnInstanceDestroy != nil {
		c.hooks.OnInstanceDestroy(c.baseCtx, &domain.InstanceEvent{Slot: slot, Err: err})
	}
}
