package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// Record stores shared between dashboard replicas use it to serialize writes
// to the same record collection.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is cancelled.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
