package notification_test

import (
	"context"
	"testing"

	"ResourceShare/internal/apperrors"
	"ResourceShare/internal/notification"
	"ResourceShare/internal/realtime"
	"ResourceShare/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingBroadcaster struct {
	events []realtime.Event
}

func (b *recordingBroadcaster) Broadcast(ev realtime.Event) int {
	b.events = append(b.events, ev)
	return 1
}

type panickingBroadcaster struct{}

func (panickingBroadcaster) Broadcast(realtime.Event) int {
	panic("subscriber set corrupted")
}

func strPtr(s string) *string { return &s }

func TestNotificationService_PublishPersistsThenBroadcasts(t *testing.T) {
	t.Parallel()
	gateway := store.NewMemoryGateway()
	hub := &recordingBroadcaster{}
	svc := notification.NewNotificationService(notification.NewNotificationRepository(gateway), hub, zap.NewNop())

	n := &notification.Notification{Type: notification.TypeResourceCreated, Message: "New resource pending: Notes", ResourceID: strPtr("r1")}
	err := svc.Publish(context.Background(), n, realtime.Event{Name: realtime.EventResourceCreated, ResourceID: "r1"})
	require.NoError(t, err)

	assert.False(t, n.ID.IsZero())
	assert.False(t, n.CreatedAt.IsZero())
	require.Len(t, hub.events, 1)
	assert.Equal(t, "r1", hub.events[0].ResourceID)

	feed, err := svc.ListNotifications(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, n.ID, feed[0].ID)
	assert.Nil(t, feed[0].Semester)
}

func TestNotificationService_BroadcastPanicIsSwallowed(t *testing.T) {
	t.Parallel()
	gateway := store.NewMemoryGateway()
	svc := notification.NewNotificationService(notification.NewNotificationRepository(gateway), panickingBroadcaster{}, zap.NewNop())

	n := &notification.Notification{Type: notification.TypeResourceApproved, Message: "Resource approved: Notes"}
	assert.NotPanics(t, func() {
		err := svc.Publish(context.Background(), n, realtime.Event{Name: realtime.EventResourceApproved})
		assert.NoError(t, err)
	})

	feed, err := svc.ListNotifications(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, feed, 1, "the notification is stored even though the broadcast failed")
}

func TestNotificationService_StoreFailureSkipsBroadcast(t *testing.T) {
	t.Parallel()
	hub := &recordingBroadcaster{}
	svc := notification.NewNotificationService(notification.NewNotificationRepository(store.NewMongoGateway(nil)), hub, zap.NewNop())

	err := svc.Publish(context.Background(), &notification.Notification{Type: notification.TypeResourceCreated}, realtime.Event{Name: realtime.EventResourceCreated})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Empty(t, hub.events)
}

func TestNotificationService_FeedNewestFirst(t *testing.T) {
	t.Parallel()
	gateway := store.NewMemoryGateway()
	svc := notification.NewNotificationService(notification.NewNotificationRepository(gateway), &recordingBroadcaster{}, zap.NewNop())
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		require.NoError(t, svc.Publish(ctx, &notification.Notification{Type: notification.TypeResourceCreated, Message: msg}, realtime.Event{Name: realtime.EventResourceCreated}))
	}

	feed, err := svc.ListNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.False(t, feed[0].CreatedAt.Before(feed[1].CreatedAt))
}
