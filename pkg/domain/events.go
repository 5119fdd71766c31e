package domain

import (
	"context"
	"time"
)

// TriggerKind names a signal that causes a chart refresh.
type TriggerKind string

const (
	TriggerLeadsChanged    TriggerKind = "leads:changed"
	TriggerProjectsChanged TriggerKind = "projects:changed"
	TriggerPaymentsChanged TriggerKind = "payments:changed"
	TriggerViewportResized TriggerKind = "viewport:resized"
	TriggerThemeChanged    TriggerKind = "theme:changed"
)

// DataTriggers returns the data-change signal kinds.
func DataTriggers() []TriggerKind {
	return []TriggerKind{TriggerLeadsChanged, TriggerProjectsChanged, TriggerPaymentsChanged}
}

// TriggerKinds returns every signal kind the coordinator binds to.
func TriggerKinds() []TriggerKind {
	return append(DataTriggers(), TriggerViewportResized, TriggerThemeChanged)
}

// Trigger is a signal occurrence. The coordinator needs no payload;
// Source is informational (e.g. "redis", "http", "sigwinch").
type Trigger struct {
	Kind   TriggerKind `json:"kind"`
	Source string      `json:"source,omitempty"`
	At     time.Time   `json:"at"`
}

// NewTrigger stamps a trigger with the current time.
func NewTrigger(kind TriggerKind, source string) Trigger {
	return Trigger{Kind: kind, Source: source, At: time.Now()}
}

// RefreshEvent describes a completed refresh cycle.
type RefreshEvent struct {
	Reason   string        `json:"reason"`
	Duration time.Duration `json:"duration"`
	Failed   []Slot        `json:"failed,omitempty"`
}

// InstanceEvent describes a chart instance entering or leaving a slot.
type InstanceEvent struct {
	Slot Slot  `json:"slot"`
	Err  error `json:"-"`
}

// LifecycleHooks defines callbacks for coordinator observability.
type LifecycleHooks struct {
	OnTrigger         func(context.Context, Trigger)
	OnRefresh         func(context.Context, *RefreshEvent)
	OnInstanceCreate  func(context.Context, *InstanceEvent)
	OnInstanceDestroy func(context.Context, *InstanceEvent)
	OnDebounced       func(context.Context, Trigger)
}
