package auth

import (
	"context"
	"errors"

	"ResourceShare/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	gateway store.Gateway
}

func NewUserRepository(gateway store.Gateway) *UserRepository {
	return &UserRepository{gateway: gateway}
}

// FindByEmail returns nil, nil when no user has that email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID returns nil, nil when the user does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	doc, err := r.gateway.FindOne(ctx, store.UserCollection, filter)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, nil
		}
		return nil, err
	}
	var user User
	if err := bson.Unmarshal(doc, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts user and sets its ID. A second user with the same email fails with
// store.ErrDuplicateKey.
func (r *UserRepository) CreateUser(ctx context.Context, user *User) error {
	id, err := r.gateway.InsertOne(ctx, store.UserCollection, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// UpdateUser overwrites the given fields of the user with id.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	matched, err := r.gateway.UpdateOne(ctx, store.UserCollection, bson.M{"_id": id}, fields)
	if err != nil {
		return err
	}
	if matched == 0 {
		return errors.New("user not found")
	}
	return nil
}
