// Package registry keeps the one-live-chart-per-slot bookkeeping.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Registry maps each slot to at most one live chart instance.
// A slot is never left holding an instance whose Destroy was attempted.
type Registry struct {
	mu        sync.RWMutex
	instances map[domain.Slot]ports.Instance
	logger    *slog.Logger
	onDestroy func(slot domain.Slot, err error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report contained destroy failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithDestroyHook is called after every destroy attempt, successful or not.
func WithDestroyHook(fn func(slot domain.Slot, err error)) Option {
	return func(r *Registry) {
		r.onDestroy = fn
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		instances: make(map[domain.Slot]ports.Instance),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set stores inst in slot. An instance already in the slot is destroyed
// first; a failure to destroy it is logged and does not prevent the store.
func (r *Registry) Set(slot domain.Slot, inst ports.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.instances[slot]; ok {
		delete(r.instances, slot)
		if err := r.destroy(slot, old); err != nil {
			r.logger.Warn("registry: replacing slot after failed destroy", "slot", slot, "err", err)
		}
	}
	if inst == nil {
		return
	}
	r.instances[slot] = inst
}

// Get returns the instance in slot, if any.
func (r *Registry) Get(slot domain.Slot) (ports.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[slot]
	return inst, ok
}

// State reports whether slot is empty or live.
func (r *Registry) State(slot domain.Slot) domain.SlotState {
	if _, ok := r.Get(slot); ok {
		return domain.SlotLive
	}
	return domain.SlotEmpty
}

// Clear destroys the instance in slot, if any, and leaves the slot empty.
// The destroy error is returned for reporting only; the slot is emptied regardless.
func (r *Registry) Clear(slot domain.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[slot]
	if !ok {
		return nil
	}
	delete(r.instances, slot)
	return r.destroy(slot, inst)
}

// ClearAll clears every slot. Each slot is attempted even when another fails;
// the failures are joined.
func (r *Registry) ClearAll() error {
	var errs []error
	for _, slot := range domain.Slots() {
		if err := r.Clear(slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Live returns the number of occupied slots.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Configs returns the configuration of every live instance, keyed by slot.
func (r *Registry) Configs() map[domain.Slot]domain.ChartConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.Slot]domain.ChartConfig, len(r.instances))
	for slot, inst := range r.instances {
		out[slot] = inst.Config()
	}
	return out
}

// destroy runs inst.Destroy, converting a panic into an error.
func (r *Registry) destroy(slot domain.Slot, inst ports.Instance) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("destroy %s panicked: %v", slot, p)
		}
		if err != nil {
			r.logger.Error("registry: destroy failed", "slot", slot, "err", err)
		}
		if r.onDestroy != nil {
			r.onDestroy(slot, err)
		}
	}()

	if err := inst.Destroy(); err != nil {
		return fmt.Errorf("destroy %s: %w", slot, err)
	}
	return nil
}
