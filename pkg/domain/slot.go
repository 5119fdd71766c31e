package domain

import "fmt"

// Slot identifies a fixed chart position on the dashboard.
type Slot string

const (
	SlotStatus   Slot = "status"
	SlotProjects Slot = "projects"
	SlotRevenue  Slot = "revenue"
)

// Slots returns every chart slot in render order.
func Slots() []Slot {
	return []Slot{SlotStatus, SlotProjects, SlotRevenue}
}

// ParseSlot validates a slot name.
func ParseSlot(name string) (Slot, error) {
	for _, s := range Slots() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, name)
}

// SlotState is the lifecycle state of a single slot.
type SlotState string

const (
	SlotEmpty SlotState = "empty"
	SlotLive  SlotState = "live"
)
