package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	UserCollection         = "user"
	ResourceCollection     = "resource"
	NotificationCollection = "notification"
)

var (
	// ErrNoDocument is returned by FindOne when nothing matches the filter.
	ErrNoDocument = errors.New("no document matches filter")
	// ErrDuplicateKey is returned when a write violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// FindOptions narrows a Find call.
type FindOptions struct {
	Limit int64  // 0 means no limit
	Sort  bson.D // nil keeps natural order
}

// Index describes a secondary index on a collection.
type Index struct {
	Collection string
	Keys       bson.D
	Unique     bool
}

// Gateway is the document store used by repositories. Filters are equality matches on
// top-level fields; updates are $set style field replacements.
type Gateway interface {
	InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error)
	FindOne(ctx context.Context, collection string, filter bson.M) (bson.Raw, error)
	Find(ctx context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.Raw, error)
	UpdateOne(ctx context.Context, collection string, filter, set bson.M) (int64, error)
	EnsureIndexes(ctx context.Context, indexes ...Index) error
	CollectionNames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Configured() bool
}

// DefaultIndexes backs the lookups the API performs: login by email and resource listing
// by semester, subject and status.
var DefaultIndexes = []Index{
	{Collection: UserCollection, Keys: bson.D{{Key: "email", Value: 1}}, Unique: true},
	{Collection: ResourceCollection, Keys: bson.D{{Key: "semester", Value: 1}, {Key: "subject", Value: 1}, {Key: "status", Value: 1}}},
	{Collection: NotificationCollection, Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
}

// ParseID converts a public id into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}
