package redis

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// ChangeSource relays data-change triggers published by any Store sharing the
// same Redis instance and prefix.
type ChangeSource struct {
	client  *backend.Client
	channel string
	logger  *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

var _ ports.TriggerSource = (*ChangeSource)(nil)

// Changes returns a trigger source listening on the store's channel.
func (s *Store) Changes(logger *slog.Logger) *ChangeSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChangeSource{
		client:  s.client,
		channel: s.Channel(),
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the subscription is confirmed by the server.
func (c *ChangeSource) Ready() <-chan struct{} {
	return c.ready
}

// Run subscribes and publishes a trigger per valid message until ctx is done.
func (c *ChangeSource) Run(ctx context.Context, pub ports.Publisher) error {
	ps := c.client.Subscribe(ctx, c.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", c.channel, err)
	}
	c.readyOnce.Do(func() { close(c.ready) })

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			kind := domain.TriggerKind(msg.Payload)
			if !slices.Contains(domain.DataTriggers(), kind) {
				c.logger.Warn("ignoring unknown change message", "payload", msg.Payload)
				continue
			}
			pub.Publish(domain.NewTrigger(kind, "redis"))
		}
	}
}
