// Package signals routes trigger signals from their sources to subscribers.
//
// Every subscription is an explicit handle. Disposing the handle is the only
// way to remove a handler, so a caller that disposes before re-subscribing is
// guaranteed a single registration per signal.
package signals

import (
	"log/slog"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Handler receives a trigger.
type Handler func(domain.Trigger)

// Bus fans out triggers to the handlers subscribed to their kind.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[domain.TriggerKind]map[uint64]Handler
	logger *slog.Logger
}

var _ ports.Publisher = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[domain.TriggerKind]map[uint64]Handler),
		logger: logger,
	}
}

// Subscribe registers h for kind and returns the handle that removes it.
func (b *Bus) Subscribe(kind domain.TriggerKind, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if _, ok := b.subs[kind]; !ok {
		b.subs[kind] = make(map[uint64]Handler)
	}
	b.subs[kind][id] = h

	return &Subscription{bus: b, kind: kind, id: id}
}

// Publish delivers t synchronously to every handler of its kind.
// A panicking handler is logged and does not stop delivery to the others.
func (b *Bus) Publish(t domain.Trigger) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[t.Kind]))
	for _, h := range b.subs[t.Kind] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.logger.Debug("signals: publishing", "kind", t.Kind, "source", t.Source, "handlers", len(handlers))
	for _, h := range handlers {
		b.deliver(h, t)
	}
}

func (b *Bus) deliver(h Handler, t domain.Trigger) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("signals: handler panicked", "kind", t.Kind, "panic", r)
		}
	}()
	h(t)
}

// Count returns the number of handlers subscribed to kind.
func (b *Bus) Count(kind domain.TriggerKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

func (b *Bus) remove(kind domain.TriggerKind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subs[kind]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.subs, kind)
		}
	}
}

// Subscription is the handle of one registered handler.
type Subscription struct {
	once sync.Once
	bus  *Bus
	kind domain.TriggerKind
	id   uint64
}

// Kind returns the signal this subscription listens to.
func (s *Subscription) Kind() domain.TriggerKind { return s.kind }

// Dispose removes the handler. Safe to call more than once.
func (s *Subscription) Dispose() {
	s.once.Do(func() {
		s.bus.remove(s.kind, s.id)
	})
}

// Set groups subscriptions that are disposed together.
type Set struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add keeps s in the set.
func (set *Set) Add(s *Subscription) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.subs = append(set.subs, s)
}

// Len returns the number of held subscriptions.
func (set *Set) Len() int {
	set.mu.Lock()
	defer set.mu.Unlock()
	return len(set.subs)
}

// Dispose disposes every held subscription and empties the set.
func (set *Set) Dispose() {
	set.mu.Lock()
	subs := set.subs
	set.subs = nil
	set.mu.Unlock()

	for _, s := range subs {
		s.Dispose()
	}
}
