package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryGateway is an in-process Gateway. Documents go through a bson round-trip on every
// write so readers observe the same types and timestamp precision as with MongoDB.
type MemoryGateway struct {
	mu          sync.RWMutex
	collections map[string][]bson.D
	unique      map[string][][]string
}

// NewMemoryGateway creates an empty in-memory store.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		collections: make(map[string][]bson.D),
		unique:      make(map[string][][]string),
	}
}

func (g *MemoryGateway) InsertOne(_ context.Context, collection string, doc any) (primitive.ObjectID, error) {
	d, err := canonical(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := lookup(d, "_id")
	if !ok {
		oid := primitive.NewObjectID()
		d = append(bson.D{{Key: "_id", Value: oid}}, d...)
		id = oid
	}
	oid, ok := id.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unsupported _id type %T", id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	docs := g.collections[collection]
	if g.conflicts(collection, docs, d, -1) {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrDuplicateKey, collection)
	}
	g.collections[collection] = append(docs, d)
	return oid, nil
}

func (g *MemoryGateway) FindOne(_ context.Context, collection string, filter bson.M) (bson.Raw, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, d := range g.collections[collection] {
		if matches(d, filter) {
			return bson.Marshal(d)
		}
	}
	return nil, ErrNoDocument
}

func (g *MemoryGateway) Find(_ context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.Raw, error) {
	g.mu.RLock()
	var matched []bson.D
	for _, d := range g.collections[collection] {
		if matches(d, filter) {
			matched = append(matched, d)
		}
	}
	g.mu.RUnlock()

	if len(opts.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, key := range opts.Sort {
				a, _ := lookup(matched[i], key.Key)
				b, _ := lookup(matched[j], key.Key)
				c := compare(a, b)
				if c == 0 {
					continue
				}
				if normalize(key.Value) == int64(-1) {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	docs := make([]bson.Raw, 0, len(matched))
	for _, d := range matched {
		raw, err := bson.Marshal(d)
		if err != nil {
			return nil, err
		}
		docs = append(docs, raw)
	}
	return docs, nil
}

func (g *MemoryGateway) UpdateOne(_ context.Context, collection string, filter, set bson.M) (int64, error) {
	changes, err := canonical(set)
	if err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	docs := g.collections[collection]
	for i, d := range docs {
		if !matches(d, filter) {
			continue
		}
		updated := make(bson.D, len(d))
		copy(updated, d)
		for _, change := range changes {
			updated = assign(updated, change.Key, change.Value)
		}
		if g.conflicts(collection, docs, updated, i) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateKey, collection)
		}
		docs[i] = updated
		return 1, nil
	}
	return 0, nil
}

// EnsureIndexes records unique indexes so later writes enforce them. Non-unique indexes are
// accepted and ignored.
func (g *MemoryGateway) EnsureIndexes(_ context.Context, indexes ...Index) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, idx := range indexes {
		if !idx.Unique {
			continue
		}
		keys := make([]string, 0, len(idx.Keys))
		for _, k := range idx.Keys {
			keys = append(keys, k.Key)
		}
		g.unique[idx.Collection] = append(g.unique[idx.Collection], keys)
	}
	return nil
}

func (g *MemoryGateway) CollectionNames(_ context.Context) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.collections))
	for name := range g.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (g *MemoryGateway) Ping(context.Context) error { return nil }

func (g *MemoryGateway) Configured() bool { return true }

// conflicts reports whether d collides with another document on _id or a unique index.
// skip is the position of d itself when updating.
func (g *MemoryGateway) conflicts(collection string, docs []bson.D, d bson.D, skip int) bool {
	indexes := append([][]string{{"_id"}}, g.unique[collection]...)
	for i, other := range docs {
		if i == skip {
			continue
		}
		for _, keys := range indexes {
			same := true
			for _, k := range keys {
				a, _ := lookup(d, k)
				b, _ := lookup(other, k)
				if !reflect.DeepEqual(normalize(a), normalize(b)) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func canonical(v any) (bson.D, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func assign(d bson.D, key string, value any) bson.D {
	for i, e := range d {
		if e.Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}

func matches(d bson.D, filter bson.M) bool {
	for key, want := range filter {
		got, _ := lookup(d, key)
		if !reflect.DeepEqual(normalize(got), normalize(want)) {
			return false
		}
	}
	return true
}

// normalize folds integer widths together so an int filter matches an int32 stored value.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case time.Time:
		return primitive.NewDateTimeFromTime(n)
	}
	return v
}

func compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmpOrdered(x, y)
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(x.Hex(), y.Hex())
		}
	}
	return 0
}

func cmpOrdered[T int64 | float64 | primitive.DateTime](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
