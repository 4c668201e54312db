package loam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/loam"
)

// Catalog adapts a Loam repository of journey definitions to ports.JourneyReader.
// Each document (Markdown frontmatter, YAML or JSON) describes one journey.
// A document without a name is named after its file.
type Catalog struct {
	Repo   *loam.TypedRepository[dto.Definition]
	logger *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used to report skipped documents.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New creates a catalog over an existing typed repository.
func New(repo *loam.TypedRepository[dto.Definition], opts ...Option) *Catalog {
	c := &Catalog{Repo: repo}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Open initializes a read-only Loam repository at dir.
// Strict mode makes every format decode numbers the same way.
func Open(dir string, opts ...Option) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[dto.Definition](repo), opts...), nil
}

type entry struct {
	doc     string
	journey *domain.Journey
	err     error
}

// scan decodes and validates every document, keyed by journey ID.
func (c *Catalog) scan(ctx context.Context) (map[string]entry, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	entries := make(map[string]entry, len(docs))
	for _, doc := range docs {
		def := doc.Data
		if def.Name == "" {
			def.Name = trimExtension(filepath.Base(doc.ID))
		}
		id := domain.JourneyID(def.Name)

		if existing, ok := entries[id]; ok {
			return nil, fmt.Errorf("collision detected: journey '%s' is defined in both '%s' and '%s'", id, existing.doc, doc.ID)
		}

		j, err := def.Build()
		if err != nil {
			err = fmt.Errorf("%s: %w", doc.ID, err)
		}
		entries[id] = entry{doc: doc.ID, journey: j, err: err}
	}
	return entries, nil
}

// Load returns the journey with the given ID. A document that fails
// validation returns its validation error.
func (c *Catalog) Load(ctx context.Context, id string) (*domain.Journey, error) {
	entries, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := entries[id]
	if !ok {
		return nil, domain.ErrJourneyNotFound
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.journey, nil
}

// List returns the IDs of all valid journeys in lexical order.
// Invalid documents are logged and skipped.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	entries, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for id, e := range entries {
		if e.err != nil {
			c.logger.Warn("skipping invalid journey document", "doc", e.doc, "err", e.err)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
