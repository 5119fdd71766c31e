// Package loam reads dashboard records from a directory of documents.
//
// Records live one per file under leads/, projects/ and payments/. Any
// format loam understands works (Markdown frontmatter, JSON, YAML); only the
// metadata is read. The directory is opened read-only.
package loam

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Collection directories.
const (
	DirLeads    = "leads"
	DirProjects = "projects"
	DirPayments = "payments"
)

const watchPattern = "**/*.{md,json,yaml,yml}"

// Source implements ports.SnapshotSource over a loam repository.
type Source struct {
	Repo   *loam.TypedRepository[RecordMetadata]
	logger *slog.Logger
}

var (
	_ ports.SnapshotSource = (*Source)(nil)
	_ ports.TriggerSource  = (*Source)(nil)
)

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used to report skipped documents.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New creates a source over an existing typed repository.
func New(repo *loam.TypedRepository[RecordMetadata], opts ...Option) *Source {
	s := &Source{Repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Open initializes a read-only loam repository at dir.
func Open(dir string, opts ...Option) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across formats.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[RecordMetadata](repo), opts...), nil
}

// Snapshot lists every document and decodes it into its collection.
// Documents outside the collection directories are ignored; undecodable
// ones are logged and skipped.
func (s *Source) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	snap := &domain.Snapshot{}
	for _, doc := range docs {
		dir, name := split(doc.ID)
		id := doc.Data.ID
		if id == "" {
			id = name
		}
		fields := doc.Data.fields(id)

		var derr error
		switch dir {
		case DirLeads:
			var l domain.Lead
			if derr = decode(fields, &l); derr == nil {
				snap.Leads = append(snap.Leads, l)
			}
		case DirProjects:
			var p domain.Project
			if derr = decode(fields, &p); derr == nil {
				snap.Projects = append(snap.Projects, p)
			}
		case DirPayments:
			var p domain.Payment
			if derr = decode(fields, &p); derr == nil {
				snap.Payments = append(snap.Payments, p)
			}
		default:
			continue
		}
		if derr != nil {
			s.logger.Warn("skipping record", "doc", doc.ID, "err", derr)
		}
	}
	return snap, nil
}

// Run watches the repository and publishes the data-change trigger of the
// collection a changed document belongs to.
func (s *Source) Run(ctx context.Context, pub ports.Publisher) error {
	events, err := s.Repo.Watch(ctx, watchPattern)
	if err != nil {
		return fmt.Errorf("failed to start loam watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			dir, _ := split(evt.ID)
			kind, ok := triggerFor(dir)
			if !ok {
				continue
			}
			pub.Publish(domain.NewTrigger(kind, "loam"))
		}
	}
}

func triggerFor(dir string) (domain.TriggerKind, bool) {
	switch dir {
	case DirLeads:
		return domain.TriggerLeadsChanged, true
	case DirProjects:
		return domain.TriggerProjectsChanged, true
	case DirPayments:
		return domain.TriggerPaymentsChanged, true
	}
	return "", false
}

// split returns the top-level directory of a document ID and its base name
// without extension.
func split(id string) (dir, name string) {
	id = filepath.ToSlash(id)
	if i := strings.IndexByte(id, '/'); i >= 0 {
		dir = id[:i]
	}
	name = path.Base(id)
	return dir, strings.TrimSuffix(name, path.Ext(name))
}
