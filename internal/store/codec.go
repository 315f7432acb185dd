package store

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDocument converts any bson-marshalable value into a plain attribute map.
func toDocument(v any) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}
	if m, ok := v.(bson.M); ok {
		return project(m, Projection{}), nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}

func fromDocument[T any](m bson.M, p Projection) (*T, error) {
	if len(p.Exclude) > 0 {
		m = project(m, p)
	}
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &out, nil
}

func project(m bson.M, p Projection) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, f := range p.Exclude {
		delete(out, f)
	}
	return out
}

// stampNew assigns an id when missing and sets creation timestamps.
func stampNew(m bson.M, now time.Time) primitive.ObjectID {
	oid, ok := m[FieldID].(primitive.ObjectID)
	if !ok || oid.IsZero() {
		oid = primitive.NewObjectID()
		m[FieldID] = oid
	}
	m[FieldCreatedAt] = now
	m[FieldUpdatedAt] = now
	m[FieldVersion] = int32(0)
	return oid
}

// sanitizePatch drops fields a caller may not overwrite.
func sanitizePatch(m bson.M) bson.M {
	delete(m, FieldID)
	delete(m, FieldCreatedAt)
	delete(m, FieldUpdatedAt)
	delete(m, FieldVersion)
	return m
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// parseIDs keeps only well-formed ids; malformed ones can never match.
func parseIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// normalize round-trips a map through bson so values carry their decoded
// types (primitive.DateTime, int32, ...) the same way stored documents do.
func normalize(m bson.M) (bson.M, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := bson.M{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
