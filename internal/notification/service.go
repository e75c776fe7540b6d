package notification

import (
	"context"
	"fmt"
	"time"

	"ResourceShare/internal/realtime"

	"go.uber.org/zap"
)

// Broadcaster fans an event out to live subscribers.
type Broadcaster interface {
	Broadcast(ev realtime.Event) int
}

// NotificationService persists notifications and mirrors them to the realtime hub.
type NotificationService struct {
	repo   *NotificationRepository
	hub    Broadcaster
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo *NotificationRepository, hub Broadcaster, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, hub: hub, logger: logger.Named("notification")}
}

// Publish stores n and then broadcasts ev. A storage error is returned; the broadcast is
// best-effort and never affects the result.
func (s *NotificationService) Publish(ctx context.Context, n *Notification, ev realtime.Event) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	s.broadcast(ev)
	return nil
}

func (s *NotificationService) broadcast(ev realtime.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("broadcast failed", zap.String("event", ev.Name), zap.Any("panic", r))
		}
	}()
	delivered := s.hub.Broadcast(ev)
	s.logger.Debug("notification broadcast",
		zap.String("event", ev.Name),
		zap.String("resource_id", ev.ResourceID),
		zap.Int("subscribers", delivered))
}

// ListNotifications returns the persisted feed, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, limit int64) ([]*Notification, error) {
	return s.repo.ListNotifications(ctx, limit)
}
