package ports

import (
	"context"

	"github.com/aretw0/tally/pkg/domain"
)

// Publisher accepts trigger signals.
type Publisher interface {
	Publish(t domain.Trigger)
}

// TriggerSource is a long-running producer of trigger signals.
// Run blocks until ctx is cancelled or the source fails.
type TriggerSource interface {
	Run(ctx context.Context, pub Publisher) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(t domain.Trigger)

// Publish calls f(t).
func (f PublisherFunc) Publish(t domain.Trigger) { f(t) }
