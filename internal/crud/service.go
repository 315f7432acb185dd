// Package crud builds the standard create/read/update/delete/search
// operations over any document store.
package crud

import (
	"context"
	"strings"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/store"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"golang.org/x/sync/errgroup"
)

// Options configures a Service at construction time.
type Options struct {
	// Exclude lists fields never returned to callers.
	Exclude []string
	// Searchable lists fields matched by a search query.
	Searchable []string
}

// Page is one page of search results.
type Page[T any] struct {
	Meta    pagination.Meta `json:"meta"`
	Objects []T             `json:"objects"`
}

// Service is stateless; all state lives in the store.
type Service[T any] struct {
	store store.Store[T]
	opts  Options
}

func New[T any](s store.Store[T], opts Options) *Service[T] {
	return &Service[T]{store: s, opts: opts}
}

func (s *Service[T]) projection() store.Projection {
	return store.Projection{Exclude: s.opts.Exclude}
}

// Get returns the document or nil when no document has the id.
func (s *Service[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.store.FindByID(ctx, id, s.projection())
}

// Search counts and fetches a page concurrently; either failure fails the call.
func (s *Service[T]) Search(ctx context.Context, req pagination.Request) (Page[T], error) {
	f := s.filter(req.Query)

	var (
		total   int64
		objects []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx, f)
		total = n
		return err
	})
	g.Go(func() error {
		out, err := s.store.Find(gctx, f, store.FindOptions{
			Projection: s.projection(),
			Sort:       store.ParseSort(req.Sort),
			Skip:       int64(req.Offset),
			Limit:      int64(req.Limit),
		})
		objects = out
		return err
	})
	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}
	if objects == nil {
		objects = []T{}
	}
	return Page[T]{Meta: pagination.NewMeta(req, total), Objects: objects}, nil
}

func (s *Service[T]) filter(query string) store.Filter {
	if strings.TrimSpace(query) == "" || len(s.opts.Searchable) == 0 {
		return store.Filter{}
	}
	or := make([]store.Match, 0, len(s.opts.Searchable))
	for _, field := range s.opts.Searchable {
		or = append(or, store.Match{Field: field, Pattern: query})
	}
	return store.Filter{Any: or}
}

// Create inserts doc and returns the stored document as Get would.
func (s *Service[T]) Create(ctx context.Context, doc *T) (*T, error) {
	id, err := s.store.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return s.store.FindByID(ctx, id, s.projection())
}

// CreateMany inserts docs and returns the stored documents ordered by id,
// which is the order the store acknowledged them in.
func (s *Service[T]) CreateMany(ctx context.Context, docs []*T) ([]T, error) {
	ids, err := s.store.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	return s.store.Find(ctx, store.ByIDs(ids...), store.FindOptions{
		Projection: s.projection(),
		Sort:       []store.SortField{{Field: store.FieldID}},
	})
}

// Update merges patch into the document and returns the post-image, or nil.
func (s *Service[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	return s.store.UpdateByID(ctx, id, patch, s.projection())
}

// Delete removes the document and returns its pre-image, or nil.
func (s *Service[T]) Delete(ctx context.Context, id string) (*T, error) {
	return s.store.DeleteByID(ctx, id, s.projection())
}

// DeleteMany removes every document when ids is empty; otherwise only the
// listed ids, where blank entries never match.
func (s *Service[T]) DeleteMany(ctx context.Context, ids []string) (store.BatchResult, error) {
	if len(ids) == 0 {
		return s.store.DeleteMany(ctx, store.Filter{})
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			kept = append(kept, id)
		}
	}
	return s.store.DeleteMany(ctx, store.ByIDs(kept...))
}
