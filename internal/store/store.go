// Package store defines the document store capability used by the CRUD
// services, with a MongoDB implementation and an in-memory one.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidID is returned when an id is not a valid document identifier.
	ErrInvalidID = errors.New("invalid document id")
	// ErrDuplicate is returned by the memory store when a unique field collides.
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the minimal set of collection primitives the CRUD layer needs.
// Lookups that match nothing return a nil document and a nil error.
type Store[T any] interface {
	FindByID(ctx context.Context, id string, p Projection) (*T, error)
	Find(ctx context.Context, f Filter, o FindOptions) ([]T, error)
	Count(ctx context.Context, f Filter) (int64, error)
	// Insert stores doc, filling in the generated id and timestamps, and returns the id.
	Insert(ctx context.Context, doc *T) (string, error)
	InsertMany(ctx context.Context, docs []*T) ([]string, error)
	// UpdateByID merges the non-empty fields of patch and returns the post-image.
	UpdateByID(ctx context.Context, id string, patch any, p Projection) (*T, error)
	// DeleteByID removes a document and returns its pre-image.
	DeleteByID(ctx context.Context, id string, p Projection) (*T, error)
	DeleteMany(ctx context.Context, f Filter) (BatchResult, error)
}

// Match is a case-insensitive substring match on a single field.
type Match struct {
	Field   string
	Pattern string
}

// Eq is an exact match on a single field.
type Eq struct {
	Field string
	Value any
}

// Filter selects documents. The zero Filter matches everything; Any entries
// are OR-ed; Where entries and an id restriction (see ByIDs) are AND-ed with them.
type Filter struct {
	Any   []Match
	Where []Eq

	ids         []string
	restrictIDs bool
}

// ByIDs restricts a filter to the given ids. An empty list matches nothing.
func ByIDs(ids ...string) Filter {
	return Filter{ids: ids, restrictIDs: true}
}

// IDs returns the id restriction and whether one is set.
func (f Filter) IDs() ([]string, bool) {
	return f.ids, f.restrictIDs
}

// Projection lists fields stripped from returned documents.
type Projection struct {
	Exclude []string
}

// SortField orders by one field.
type SortField struct {
	Field string
	Desc  bool
}

// ParseSort reads space separated field names; a leading "-" means descending.
func ParseSort(s string) []SortField {
	var out []SortField
	for _, tok := range strings.Fields(s) {
		desc := strings.HasPrefix(tok, "-")
		name := strings.TrimLeft(tok, "-+")
		if name == "" {
			continue
		}
		out = append(out, SortField{Field: name, Desc: desc})
	}
	return out
}

// FindOptions controls a Find call. Limit 0 means no limit.
type FindOptions struct {
	Projection Projection
	Sort       []SortField
	Skip       int64
	Limit      int64
}

// BatchResult summarises a bulk delete.
type BatchResult struct {
	MatchedCount int64 `json:"matchedCount"`
	DeletedCount int64 `json:"deletedCount"`
	Acknowledged bool  `json:"acknowledged"`
}

// Reserved document fields maintained by the stores.
const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldVersion   = "__v"
)
