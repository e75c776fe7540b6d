package notification

import (
	"context"

	"ResourceShare/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

// NotificationRepository handles DB operations for notifications.
type NotificationRepository struct {
	gateway store.Gateway
}

// NewNotificationRepository creates a new repository for notifications.
func NewNotificationRepository(gateway store.Gateway) *NotificationRepository {
	return &NotificationRepository{gateway: gateway}
}

// CreateNotification inserts n and sets its ID.
func (r *NotificationRepository) CreateNotification(ctx context.Context, n *Notification) error {
	id, err := r.gateway.InsertOne(ctx, store.NotificationCollection, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// ListNotifications returns the newest notifications first.
func (r *NotificationRepository) ListNotifications(ctx context.Context, limit int64) ([]*Notification, error) {
	docs, err := r.gateway.Find(ctx, store.NotificationCollection, bson.M{}, store.FindOptions{
		Limit: limit,
		Sort:  bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	notifications := make([]*Notification, 0, len(docs))
	for _, doc := range docs {
		var n Notification
		if err := bson.Unmarshal(doc, &n); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, nil
}
