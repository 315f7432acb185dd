package store

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/database"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/logger"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store over a MongoDB collection. Every operation obtains
// the database from the shared Connector first, so the connection is made on
// first use. Driver errors are returned unchanged.
type Mongo[T any] struct {
	conn       *database.Connector
	collection string
	unique     []string

	idxMu    sync.Mutex
	indexed  bool
	idxRetry time.Time
}

// indexRetryInterval spaces out attempts after a failed index build.
const indexRetryInterval = time.Minute

// NewMongo binds a store to a collection. Unique indexes are created for the
// listed fields on the first operation.
func NewMongo[T any](conn *database.Connector, collection string, unique ...string) *Mongo[T] {
	return &Mongo[T]{conn: conn, collection: collection, unique: unique}
}

func (m *Mongo[T]) observe(op string, start time.Time, err *error) {
	metrics.ObserveStoreOp(m.collection, op, start, *err)
}

func (m *Mongo[T]) col(ctx context.Context) (*mongo.Collection, error) {
	db, err := m.conn.Database(ctx)
	if err != nil {
		return nil, err
	}
	c := db.Collection(m.collection)
	m.ensureIndexes(ctx, c)
	return c, nil
}

// ensureIndexes builds the unique indexes once. A failure (duplicate data,
// missing privilege) is logged and retried later; operations still run.
func (m *Mongo[T]) ensureIndexes(ctx context.Context, c *mongo.Collection) {
	m.idxMu.Lock()
	defer m.idxMu.Unlock()
	if m.indexed || len(m.unique) == 0 || time.Now().Before(m.idxRetry) {
		return
	}
	models := make([]mongo.IndexModel, 0, len(m.unique))
	for _, f := range m.unique {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}, Options: options.Index().SetUnique(true)})
	}
	if _, err := c.Indexes().CreateMany(ctx, models); err != nil {
		m.idxRetry = time.Now().Add(indexRetryInterval)
		logger.Warnf("store: unique indexes on %s %v not created, retrying in %s: %v", m.collection, m.unique, indexRetryInterval, err)
		return
	}
	m.indexed = true
}

func (m *Mongo[T]) FindByID(ctx context.Context, id string, p Projection) (out *T, err error) {
	defer m.observe("findById", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := m.col(ctx)
	if err != nil {
		return nil, err
	}
	var doc T
	fo := options.FindOne()
	if pr := projection(p); pr != nil {
		fo.SetProjection(pr)
	}
	err = c.FindOne(ctx, bson.M{FieldID: oid}, fo).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Mongo[T]) Find(ctx context.Context, f Filter, o FindOptions) (out []T, err error) {
	defer m.observe("find", time.Now(), &err)
	c, err := m.col(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSkip(o.Skip)
	if pr := projection(o.Projection); pr != nil {
		opts.SetProjection(pr)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	if len(o.Sort) > 0 {
		opts.SetSort(sortDoc(o.Sort))
	}
	cur, err := c.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	out = []T{}
	if err = cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Mongo[T]) Count(ctx context.Context, f Filter) (n int64, err error) {
	defer m.observe("count", time.Now(), &err)
	c, err := m.col(ctx)
	if err != nil {
		return 0, err
	}
	return c.CountDocuments(ctx, filterDoc(f))
}

func (m *Mongo[T]) Insert(ctx context.Context, doc *T) (id string, err error) {
	defer m.observe("insert", time.Now(), &err)
	d, err := toDocument(doc)
	if err != nil {
		return "", err
	}
	oid := stampNew(d, timestamp())
	c, err := m.col(ctx)
	if err != nil {
		return "", err
	}
	if _, err = c.InsertOne(ctx, d); err != nil {
		return "", err
	}
	if err = refill(doc, d); err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

func (m *Mongo[T]) InsertMany(ctx context.Context, docs []*T) (ids []string, err error) {
	defer m.observe("insertMany", time.Now(), &err)
	if len(docs) == 0 {
		return []string{}, nil
	}
	ts := timestamp()
	batch := make([]interface{}, 0, len(docs))
	maps := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		d, err := toDocument(doc)
		if err != nil {
			return nil, err
		}
		stampNew(d, ts)
		batch = append(batch, d)
		maps = append(maps, d)
	}
	c, err := m.col(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.InsertMany(ctx, batch)
	if err != nil {
		return nil, err
	}
	ids = make([]string, 0, len(res.InsertedIDs))
	for _, v := range res.InsertedIDs {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}
	for i, doc := range docs {
		if err = refill(doc, maps[i]); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (m *Mongo[T]) UpdateByID(ctx context.Context, id string, patch any, p Projection) (out *T, err error) {
	defer m.observe("updateById", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set, err := toDocument(patch)
	if err != nil {
		return nil, err
	}
	set = sanitizePatch(set)
	set[FieldUpdatedAt] = timestamp()
	c, err := m.col(ctx)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": set, "$inc": bson.M{FieldVersion: 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if pr := projection(p); pr != nil {
		opts.SetProjection(pr)
	}
	var doc T
	err = c.FindOneAndUpdate(ctx, bson.M{FieldID: oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Mongo[T]) DeleteByID(ctx context.Context, id string, p Projection) (out *T, err error) {
	defer m.observe("deleteById", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := m.col(ctx)
	if err != nil {
		return nil, err
	}
	var doc T
	opts := options.FindOneAndDelete()
	if pr := projection(p); pr != nil {
		opts.SetProjection(pr)
	}
	err = c.FindOneAndDelete(ctx, bson.M{FieldID: oid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Mongo[T]) DeleteMany(ctx context.Context, f Filter) (res BatchResult, err error) {
	defer m.observe("deleteMany", time.Now(), &err)
	c, err := m.col(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	r, err := c.DeleteMany(ctx, filterDoc(f))
	if err != nil {
		return BatchResult{}, err
	}
	// DeleteMany reports only the deleted count; every matched document is deleted.
	return BatchResult{MatchedCount: r.DeletedCount, DeletedCount: r.DeletedCount, Acknowledged: true}, nil
}

func filterDoc(f Filter) bson.M {
	q := bson.M{}
	if len(f.Any) > 0 {
		or := make(bson.A, 0, len(f.Any))
		for _, mt := range f.Any {
			or = append(or, bson.M{mt.Field: primitive.Regex{Pattern: regexp.QuoteMeta(mt.Pattern), Options: "i"}})
		}
		q["$or"] = or
	}
	for _, eq := range f.Where {
		q[eq.Field] = eq.Value
	}
	if ids, ok := f.IDs(); ok {
		q[FieldID] = bson.M{"$in": parseIDs(ids)}
	}
	return q
}

func sortDoc(fields []SortField) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

func projection(p Projection) bson.M {
	if len(p.Exclude) == 0 {
		return nil
	}
	out := make(bson.M, len(p.Exclude))
	for _, f := range p.Exclude {
		out[f] = 0
	}
	return out
}

// refill copies stamped fields back into the caller's value.
func refill[T any](dst *T, d bson.M) error {
	v, err := fromDocument[T](d, Projection{})
	if err != nil {
		return err
	}
	*dst = *v
	return nil
}
