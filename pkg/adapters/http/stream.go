package http

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
)

// Chart event kinds sent to SSE clients.
const (
	EventCreate  = "create"
	EventUpdate  = "update"
	EventDestroy = "destroy"
)

// ChartEvent is one change of a live chart.
type ChartEvent struct {
	Kind   string              `json:"kind"`
	Slot   domain.Slot         `json:"slot"`
	Config *domain.ChartConfig `json:"config,omitempty"`
}

// StreamManager fans chart events out to SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan ChartEvent][]domain.Slot // nil filter receives every slot
	logger      *slog.Logger
}

// NewStreamManager creates a manager with no subscribers.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StreamManager{
		subscribers: make(map[chan ChartEvent][]domain.Slot),
		logger:      logger,
	}
}

// Subscribe returns a channel receiving events for slots (all when empty)
// and the function that closes it.
func (sm *StreamManager) Subscribe(slots ...domain.Slot) (<-chan ChartEvent, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan ChartEvent, 16)
	sm.subscribers[ch] = slots

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of open subscriptions.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast delivers evt without blocking; slow clients lose events.
func (sm *StreamManager) Broadcast(evt ChartEvent) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch, filter := range sm.subscribers {
		if len(filter) > 0 && !slices.Contains(filter, evt.Slot) {
			continue
		}
		select {
		case ch <- evt:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping event", "slot", evt.Slot, "kind", evt.Kind)
		}
	}
}

func (evt ChartEvent) encode() ([]byte, error) {
	return json.Marshal(evt)
}
