package store

import (
	"context"
	"errors"
	"fmt"

	"ResourceShare/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// MongoGateway implements Gateway on a MongoDB database. A nil database means the store was
// not configured and every call fails with apperrors.ErrStoreUnavailable.
type MongoGateway struct {
	db *mongo.Database
}

// NewMongoGateway creates a gateway over db.
func NewMongoGateway(db *mongo.Database) *MongoGateway {
	return &MongoGateway{db: db}
}

func (g *MongoGateway) collection(name string) (*mongo.Collection, error) {
	if g.db == nil {
		return nil, apperrors.StoreUnavailable(nil)
	}
	return g.db.Collection(name), nil
}

// translate maps driver connectivity failures to ErrStoreUnavailable and unique index
// violations to ErrDuplicateKey.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	var selectErr topology.ServerSelectionError
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.As(err, &selectErr) || errors.Is(err, mongo.ErrClientDisconnected) {
		return apperrors.StoreUnavailable(err)
	}
	return err
}

func (g *MongoGateway) InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error) {
	coll, err := g.collection(collection)
	if err != nil {
		return primitive.NilObjectID, err
	}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (g *MongoGateway) FindOne(ctx context.Context, collection string, filter bson.M) (bson.Raw, error) {
	coll, err := g.collection(collection)
	if err != nil {
		return nil, err
	}
	raw, err := coll.FindOne(ctx, filter).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, translate(err)
	}
	return raw, nil
}

func (g *MongoGateway) Find(ctx context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.Raw, error) {
	coll, err := g.collection(collection)
	if err != nil {
		return nil, err
	}
	findOpts := options.Find()
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Sort != nil {
		findOpts.SetSort(opts.Sort)
	}
	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	docs := make([]bson.Raw, 0)
	for cursor.Next(ctx) {
		// cursor.Current is reused by the next iteration
		doc := make(bson.Raw, len(cursor.Current))
		copy(doc, cursor.Current)
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

func (g *MongoGateway) UpdateOne(ctx context.Context, collection string, filter, set bson.M) (int64, error) {
	coll, err := g.collection(collection)
	if err != nil {
		return 0, err
	}
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, translate(err)
	}
	return res.MatchedCount, nil
}

func (g *MongoGateway) EnsureIndexes(ctx context.Context, indexes ...Index) error {
	for _, idx := range indexes {
		coll, err := g.collection(idx.Collection)
		if err != nil {
			return err
		}
		opts := options.Index()
		if idx.Unique {
			opts.SetUnique(true)
		}
		if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.Keys, Options: opts}); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.Collection, translate(err))
		}
	}
	return nil
}

func (g *MongoGateway) CollectionNames(ctx context.Context) ([]string, error) {
	if g.db == nil {
		return nil, apperrors.StoreUnavailable(nil)
	}
	names, err := g.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, translate(err)
	}
	return names, nil
}

func (g *MongoGateway) Ping(ctx context.Context) error {
	if g.db == nil {
		return apperrors.StoreUnavailable(nil)
	}
	return translate(g.db.Client().Ping(ctx, readpref.Primary()))
}

func (g *MongoGateway) Configured() bool {
	return g.db != nil
}
