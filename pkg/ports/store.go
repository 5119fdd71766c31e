package ports

import (
	"context"

	"github.com/aretw0/tally/pkg/domain"
)

// SnapshotSource provides the records a refresh cycle reads.
type SnapshotSource interface {
	// Snapshot returns the current records. Implementations return an
	// empty snapshot, not an error, when no records exist.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// RecordStore is a writable SnapshotSource.
// Each Replace call announces the matching data-change trigger.
type RecordStore interface {
	SnapshotSource
	ReplaceLeads(ctx context.Context, leads []domain.Lead) error
	ReplaceProjects(ctx context.Context, projects []domain.Project) error
	ReplacePayments(ctx context.Context, payments []domain.Payment) error
}
