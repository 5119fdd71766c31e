package domain

import "errors"

// ErrUnknownSlot is returned when a slot name is not one of Slots().
var ErrUnknownSlot = errors.New("unknown chart slot")

// ErrNotInitialized is returned when an operation needs a prior Initialize.
var ErrNotInitialized = errors.New("dashboard not initialized")

// ErrUnknownTheme is returned when a theme name has no variable set.
var ErrUnknownTheme = errors.New("unknown theme")

// ErrNoBuilder is returned when no chart builder is registered for a slot.
var ErrNoBuilder = errors.New("no chart builder for slot")

// ErrReadOnly is returned by writes to a record source that cannot be written.
var ErrReadOnly = errors.New("record source is read-only")
