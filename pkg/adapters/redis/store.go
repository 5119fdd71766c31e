// Package redis stores dashboard records in Redis and announces changes
// over Redis pub/sub, so several dashboard processes can share one data set.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const (
	keyLeads    = "leads"
	keyProjects = "projects"
	keyPayments = "payments"
	keyChanges  = "changes"
)

// Store implements ports.RecordStore using Redis.
// Each collection is one JSON document; writes publish the trigger kind on
// the changes channel.
type Store struct {
	client  *backend.Client
	prefix  string
	locker  ports.DistributedLocker
	lockTTL time.Duration
}

var _ ports.RecordStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLocker serializes writes to a collection across processes.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Store) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "tally:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Channel is the pub/sub channel carrying data-change triggers.
func (s *Store) Channel() string {
	return s.key(keyChanges)
}

// Snapshot reads all three collections in one round trip.
// Missing keys read as empty collections.
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	vals, err := s.client.MGet(ctx, s.key(keyLeads), s.key(keyProjects), s.key(keyPayments)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records from redis: %w", err)
	}

	snap := &domain.Snapshot{}
	targets := []any{&snap.Leads, &snap.Projects, &snap.Payments}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", []string{keyLeads, keyProjects, keyPayments}[i], err)
		}
	}
	return snap, nil
}

// ReplaceLeads swaps the lead collection.
func (s *Store) ReplaceLeads(ctx context.Context, leads []domain.Lead) error {
	return s.replace(ctx, keyLeads, domain.TriggerLeadsChanged, leads)
}

// ReplaceProjects swaps the project collection.
func (s *Store) ReplaceProjects(ctx context.Context, projects []domain.Project) error {
	return s.replace(ctx, keyProjects, domain.TriggerProjectsChanged, projects)
}

// ReplacePayments swaps the payment collection.
func (s *Store) ReplacePayments(ctx context.Context, payments []domain.Payment) error {
	return s.replace(ctx, keyPayments, domain.TriggerPaymentsChanged, payments)
}

func (s *Store) replace(ctx context.Context, name string, kind domain.TriggerKind, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, name, s.lockTTL)
		if err != nil {
			return err
		}
		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(name), data, 0)
	pipe.Publish(ctx, s.Channel(), string(kind))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", name, err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
