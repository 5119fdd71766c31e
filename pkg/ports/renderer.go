package ports

import (
	"context"

	"github.com/aretw0/tally/pkg/domain"
)

// Instance is a live chart owned by exactly one registry slot.
type Instance interface {
	Slot() domain.Slot
	// Config returns the configuration last applied to the instance.
	Config() domain.ChartConfig
	// Update replaces the instance data in place.
	Update(cfg domain.ChartConfig) error
	// Destroy releases the instance. It is called at most once by the registry.
	Destroy() error
}

// Renderer materializes chart configurations as live instances.
type Renderer interface {
	Create(ctx context.Context, cfg domain.ChartConfig) (Instance, error)
}

// Flusher is implemented by renderers that batch their output. The
// coordinator calls Flush once after every operation that touched the
// charts, so a refresh of every slot is presented as a single frame.
type Flusher interface {
	Flush() error
}
