package signals_test

import (
	"testing"

	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/signals"
	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesKindOnly(t *testing.T) {
	bus := signals.NewBus(logging.NewNop())

	var leads, resize int
	bus.Subscribe(domain.TriggerLeadsChanged, func(domain.Trigger) { leads++ })
	bus.Subscribe(domain.TriggerViewportResized, func(domain.Trigger) { resize++ })

	bus.Publish(domain.NewTrigger(domain.TriggerLeadsChanged, "test"))

	assert.Equal(t, 1, leads)
	assert.Equal(t, 0, resize)
}

func TestSubscription_DisposeIsIdempotent(t *testing.T) {
	bus := signals.NewBus(logging.NewNop())

	var calls int
	sub := bus.Subscribe(domain.TriggerThemeChanged, func(domain.Trigger) { calls++ })
	assert.Equal(t, 1, bus.Count(domain.TriggerThemeChanged))

	sub.Dispose()
	sub.Dispose()
	bus.Publish(domain.NewTrigger(domain.TriggerThemeChanged, "test"))

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.Count(domain.TriggerThemeChanged))
}

func TestSet_DisposeThenResubscribeKeepsSingleHandler(t *testing.T) {
	bus := signals.NewBus(logging.NewNop())
	var set signals.Set

	var calls int
	bind := func() {
		set.Dispose()
		set.Add(bus.Subscribe(domain.TriggerPaymentsChanged, func(domain.Trigger) { calls++ }))
	}

	bind()
	bind()
	bind()

	bus.Publish(domain.NewTrigger(domain.TriggerPaymentsChanged, "test"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, set.Len())
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := signals.NewBus(logging.NewNop())

	var reached bool
	bus.Subscribe(domain.TriggerLeadsChanged, func(domain.Trigger) { panic("boom") })
	bus.Subscribe(domain.TriggerLeadsChanged, func(domain.Trigger) { reached = true })

	assert.NotPanics(t, func() {
		bus.Publish(domain.NewTrigger(domain.TriggerLeadsChanged, "test"))
	})
	assert.True(t, reached)
}
