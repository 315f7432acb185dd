package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used for tests and the "memory" driver.
// Documents are kept as bson maps in insertion order so filters, projections
// and merges behave like the Mongo implementation.
type Memory[T any] struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique []string
}

// NewMemory creates an empty store enforcing uniqueness on the given fields.
func NewMemory[T any](unique ...string) *Memory[T] {
	return &Memory[T]{unique: unique}
}

func (m *Memory[T]) FindByID(ctx context.Context, id string, p Projection) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(oid)
	if i < 0 {
		return nil, nil
	}
	return fromDocument[T](m.docs[i], p)
}

func (m *Memory[T]) Find(ctx context.Context, f Filter, o FindOptions) ([]T, error) {
	m.mu.RLock()
	matched := m.match(f)
	m.mu.RUnlock()

	if len(o.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range o.Sort {
				c := compareValues(matched[i][s.Field], matched[j][s.Field])
				if c == 0 {
					continue
				}
				if s.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	skip := int(o.Skip)
	if skip > len(matched) {
		skip = len(matched)
	}
	matched = matched[skip:]
	if o.Limit > 0 && int(o.Limit) < len(matched) {
		matched = matched[:o.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, d := range matched {
		v, err := fromDocument[T](d, o.Projection)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (m *Memory[T]) Count(ctx context.Context, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.match(f))), nil
}

func (m *Memory[T]) Insert(ctx context.Context, doc *T) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, oid, err := m.prepare(doc, timestamp())
	if err != nil {
		return "", err
	}
	m.docs = append(m.docs, d)
	if err := refill(doc, d); err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

// InsertMany behaves like an ordered Mongo insert: documents before the first
// failing one stay inserted.
func (m *Memory[T]) InsertMany(ctx context.Context, docs []*T) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := timestamp()
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		d, oid, err := m.prepare(doc, ts)
		if err != nil {
			return nil, err
		}
		m.docs = append(m.docs, d)
		if err := refill(doc, d); err != nil {
			return nil, err
		}
		ids = append(ids, oid.Hex())
	}
	return ids, nil
}

func (m *Memory[T]) UpdateByID(ctx context.Context, id string, patch any, p Projection) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set, err := toDocument(patch)
	if err != nil {
		return nil, err
	}
	set = sanitizePatch(set)

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(oid)
	if i < 0 {
		return nil, nil
	}
	merged := project(m.docs[i], Projection{})
	for k, v := range set {
		merged[k] = v
	}
	merged[FieldUpdatedAt] = timestamp()
	merged[FieldVersion] = versionOf(m.docs[i]) + 1
	merged, err = normalize(merged)
	if err != nil {
		return nil, err
	}
	if err := m.checkUnique(merged, i); err != nil {
		return nil, err
	}
	m.docs[i] = merged
	return fromDocument[T](merged, p)
}

func (m *Memory[T]) DeleteByID(ctx context.Context, id string, p Projection) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(oid)
	if i < 0 {
		return nil, nil
	}
	d := m.docs[i]
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return fromDocument[T](d, p)
}

func (m *Memory[T]) DeleteMany(ctx context.Context, f Filter) (BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.docs[:0]
	var n int64
	for _, d := range m.docs {
		if matches(d, f) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	m.docs = kept
	return BatchResult{MatchedCount: n, DeletedCount: n, Acknowledged: true}, nil
}

// prepare stamps and validates a new document; callers hold the write lock.
func (m *Memory[T]) prepare(doc *T, ts time.Time) (bson.M, primitive.ObjectID, error) {
	d, err := toDocument(doc)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	oid := stampNew(d, ts)
	if m.indexOf(oid) >= 0 {
		return nil, primitive.NilObjectID, fmt.Errorf("%w: _id %s already exists", ErrDuplicate, oid.Hex())
	}
	d, err = normalize(d)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if err := m.checkUnique(d, -1); err != nil {
		return nil, primitive.NilObjectID, err
	}
	return d, oid, nil
}

func (m *Memory[T]) checkUnique(d bson.M, self int) error {
	for _, field := range m.unique {
		v, ok := d[field]
		if !ok {
			continue
		}
		for i, other := range m.docs {
			if i == self {
				continue
			}
			if ov, ok := other[field]; ok && compareValues(v, ov) == 0 {
				return fmt.Errorf("%w: %s %v already exists", ErrDuplicate, field, v)
			}
		}
	}
	return nil
}

func (m *Memory[T]) indexOf(oid primitive.ObjectID) int {
	for i, d := range m.docs {
		if id, ok := d[FieldID].(primitive.ObjectID); ok && id == oid {
			return i
		}
	}
	return -1
}

func (m *Memory[T]) match(f Filter) []bson.M {
	out := make([]bson.M, 0, len(m.docs))
	for _, d := range m.docs {
		if matches(d, f) {
			out = append(out, d)
		}
	}
	return out
}

func matches(d bson.M, f Filter) bool {
	if ids, ok := f.IDs(); ok {
		id, _ := d[FieldID].(primitive.ObjectID)
		found := false
		for _, oid := range parseIDs(ids) {
			if oid == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, eq := range f.Where {
		if v, ok := d[eq.Field]; !ok || compareValues(v, eq.Value) != 0 {
			return false
		}
	}
	if len(f.Any) == 0 {
		return true
	}
	for _, mt := range f.Any {
		s, ok := d[mt.Field].(string)
		if ok && strings.Contains(strings.ToLower(s), strings.ToLower(mt.Pattern)) {
			return true
		}
	}
	return false
}

func versionOf(d bson.M) int32 {
	switch v := d[FieldVersion].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case float64:
		return int32(v)
	}
	return 0
}

// compareValues orders the scalar types bson decodes into; missing values sort first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmpOrdered(int64(x), int64(y))
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(x.Hex(), y.Hex())
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmpOrdered(boolInt(x), boolInt(y))
		}
	}
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return cmpOrdered(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrdered[N int | int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
