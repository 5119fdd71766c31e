package http

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

var errDestroyed = errors.New("chart already destroyed")

// Renderer materializes charts for browser clients: every lifecycle change
// of an instance is broadcast as a ChartEvent.
type Renderer struct {
	streams *StreamManager
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer broadcasting on streams.
func NewRenderer(streams *StreamManager) *Renderer {
	return &Renderer{streams: streams}
}

// Create announces a new chart.
func (r *Renderer) Create(ctx context.Context, cfg domain.ChartConfig) (ports.Instance, error) {
	inst := &instance{slot: cfg.Slot, cfg: cfg, streams: r.streams}
	r.streams.Broadcast(ChartEvent{Kind: EventCreate, Slot: cfg.Slot, Config: &cfg})
	return inst, nil
}

type instance struct {
	slot    domain.Slot
	streams *StreamManager

	mu        sync.Mutex
	cfg       domain.ChartConfig
	destroyed bool
}

func (i *instance) Slot() domain.Slot { return i.slot }

func (i *instance) Config() domain.ChartConfig {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg
}

func (i *instance) Update(cfg domain.ChartConfig) error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return errDestroyed
	}
	i.cfg = cfg
	i.mu.Unlock()

	i.streams.Broadcast(ChartEvent{Kind: EventUpdate, Slot: i.slot, Config: &cfg})
	return nil
}

func (i *instance) Destroy() error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return errDestroyed
	}
	i.destroyed = true
	i.mu.Unlock()

	i.streams.Broadcast(ChartEvent{Kind: EventDestroy, Slot: i.slot})
	return nil
}
