package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Store implements ports.RecordStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	snap domain.Snapshot
	pub  ports.Publisher
}

var _ ports.RecordStore = (*Store)(nil)

// NewStore creates a new in-memory store. Each write publishes the matching
// data-change trigger to pub when pub is non-nil.
func NewStore(pub ports.Publisher) *Store {
	return &Store{pub: pub}
}

// NewStoreFrom creates a store seeded with snap.
func NewStoreFrom(snap *domain.Snapshot, pub ports.Publisher) *Store {
	return &Store{snap: *snap.Clone(), pub: pub}
}

// Snapshot returns a copy so callers can't mutate store state through it.
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone(), nil
}

// ReplaceLeads swaps the lead collection.
func (s *Store) ReplaceLeads(ctx context.Context, leads []domain.Lead) error {
	s.mu.Lock()
	s.snap.Leads = append([]domain.Lead(nil), leads...)
	s.mu.Unlock()
	s.announce(domain.TriggerLeadsChanged)
	return nil
}

// ReplaceProjects swaps the project collection.
func (s *Store) ReplaceProjects(ctx context.Context, projects []domain.Project) error {
	s.mu.Lock()
	s.snap.Projects = append([]domain.Project(nil), projects...)
	s.mu.Unlock()
	s.announce(domain.TriggerProjectsChanged)
	return nil
}

// ReplacePayments swaps the payment collection.
func (s *Store) ReplacePayments(ctx context.Context, payments []domain.Payment) error {
	s.mu.Lock()
	s.snap.Payments = append([]domain.Payment(nil), payments...)
	s.mu.Unlock()
	s.announce(domain.TriggerPaymentsChanged)
	return nil
}

// announce runs outside the lock: subscribers read the store synchronously.
func (s *Store) announce(kind domain.TriggerKind) {
	if s.pub != nil {
		s.pub.Publish(domain.NewTrigger(kind, "memory"))
	}
}
