package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// ErrDestroyed is returned by operations on a destroyed instance.
var ErrDestroyed = errors.New("chart instance already destroyed")

// Renderer keeps chart instances in memory. It is the renderer used by
// headless runs and tests; failures can be injected per slot.
type Renderer struct {
	mu          sync.Mutex
	nextID      int
	live        map[int]*Instance
	created     int
	destroyed   int
	flushes     int
	createErr   map[domain.Slot]error
	destroyErr  map[domain.Slot]error
	updateErr   map[domain.Slot]error
	lastConfigs map[domain.Slot]domain.ChartConfig
}

var (
	_ ports.Renderer = (*Renderer)(nil)
	_ ports.Flusher  = (*Renderer)(nil)
)

// NewRenderer creates an empty renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		live:        make(map[int]*Instance),
		createErr:   make(map[domain.Slot]error),
		destroyErr:  make(map[domain.Slot]error),
		updateErr:   make(map[domain.Slot]error),
		lastConfigs: make(map[domain.Slot]domain.ChartConfig),
	}
}

// Create materializes cfg.
func (r *Renderer) Create(ctx context.Context, cfg domain.ChartConfig) (ports.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.createErr[cfg.Slot]; err != nil {
		return nil, err
	}
	r.nextID++
	inst := &Instance{id: r.nextID, slot: cfg.Slot, cfg: cfg, renderer: r}
	r.live[inst.id] = inst
	r.created++
	r.lastConfigs[cfg.Slot] = cfg
	return inst, nil
}

// Flush counts the batches presented so far.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

// Flushes returns how many times Flush was called.
func (r *Renderer) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// FailCreate makes Create fail for slot until cleared with a nil error.
func (r *Renderer) FailCreate(slot domain.Slot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr[slot] = err
}

// FailDestroy makes Destroy of instances in slot fail with err.
// The instance is still released.
func (r *Renderer) FailDestroy(slot domain.Slot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyErr[slot] = err
}

// FailUpdate makes in-place updates in slot fail with err.
func (r *Renderer) FailUpdate(slot domain.Slot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateErr[slot] = err
}

// Live returns the number of instances created and not yet destroyed.
func (r *Renderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// LiveIn returns the number of live instances in slot.
func (r *Renderer) LiveIn(slot domain.Slot) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, inst := range r.live {
		if inst.slot == slot {
			n++
		}
	}
	return n
}

// Created returns the number of Create calls that succeeded.
func (r *Renderer) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// Destroyed returns the number of Destroy calls on live instances.
func (r *Renderer) Destroyed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// Instance is a chart held in memory.
type Instance struct {
	id       int
	slot     domain.Slot
	renderer *Renderer

	mu        sync.Mutex
	cfg       domain.ChartConfig
	updates   int
	destroyed bool
}

var _ ports.Instance = (*Instance)(nil)

// Slot returns the slot the instance was created for.
func (i *Instance) Slot() domain.Slot { return i.slot }

// Config returns the last applied configuration.
func (i *Instance) Config() domain.ChartConfig {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg
}

// Updates returns how many in-place updates were applied.
func (i *Instance) Updates() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.updates
}

// Update applies cfg in place.
func (i *Instance) Update(cfg domain.ChartConfig) error {
	i.renderer.mu.Lock()
	err := i.renderer.updateErr[i.slot]
	i.renderer.mu.Unlock()
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return ErrDestroyed
	}
	i.cfg = cfg
	i.updates++
	return nil
}

// Destroy releases the instance.
func (i *Instance) Destroy() error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return ErrDestroyed
	}
	i.destroyed = true
	i.mu.Unlock()

	r := i.renderer
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, i.id)
	r.destroyed++
	return r.destroyErr[i.slot]
}
