package resource

import (
	"context"
	"errors"
	"time"

	"ResourceShare/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceRepository handles DB operations for resources.
type ResourceRepository struct {
	gateway store.Gateway
}

// NewResourceRepository creates a new repository for resources.
func NewResourceRepository(gateway store.Gateway) *ResourceRepository {
	return &ResourceRepository{gateway: gateway}
}

// CreateResource inserts r and sets its ID.
func (r *ResourceRepository) CreateResource(ctx context.Context, res *Resource) error {
	id, err := r.gateway.InsertOne(ctx, store.ResourceCollection, res)
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// FindResourceByID returns nil, nil when the resource does not exist.
func (r *ResourceRepository) FindResourceByID(ctx context.Context, id primitive.ObjectID) (*Resource, error) {
	doc, err := r.gateway.FindOne(ctx, store.ResourceCollection, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, nil
		}
		return nil, err
	}
	var res Resource
	if err := bson.Unmarshal(doc, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FindResources returns resources matching f in store order.
func (r *ResourceRepository) FindResources(ctx context.Context, f ListFilter) ([]*Resource, error) {
	docs, err := r.gateway.Find(ctx, store.ResourceCollection, filterFor(f), store.FindOptions{Limit: f.Limit})
	if err != nil {
		return nil, err
	}
	resources := make([]*Resource, 0, len(docs))
	for _, doc := range docs {
		var res Resource
		if err := bson.Unmarshal(doc, &res); err != nil {
			return nil, err
		}
		resources = append(resources, &res)
	}
	return resources, nil
}

// MarkApproved moves a pending resource to approved. It reports false when the resource is
// missing or no longer pending, in which case nothing is written.
func (r *ResourceRepository) MarkApproved(ctx context.Context, id primitive.ObjectID, approvedBy string, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "status": StatusPending}
	set := bson.M{
		"status":      StatusApproved,
		"approved_by": approvedBy,
		"approved_at": at,
		"updated_at":  at,
	}
	matched, err := r.gateway.UpdateOne(ctx, store.ResourceCollection, filter, set)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

func filterFor(f ListFilter) bson.M {
	filter := bson.M{}
	if f.Semester != nil {
		filter["semester"] = *f.Semester
	}
	if f.Subject != "" {
		filter["subject"] = f.Subject
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UploadedBy != "" {
		filter["uploaded_by"] = f.UploadedBy
	}
	return filter
}
