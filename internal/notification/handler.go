package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ResourceShare/internal/apperrors"
	"ResourceShare/internal/config"
	"ResourceShare/internal/realtime"

	"github.com/labstack/echo/v4"
)

// DefaultFeedLimit is the number of notifications returned when no limit is given.
const DefaultFeedLimit = 50

var errKeepAlive = errors.New("keepalive due")

// NotificationHandler serves the notification feed and the realtime event stream.
type NotificationHandler struct {
	service   *NotificationService
	hub       *realtime.Hub
	keepAlive time.Duration
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *NotificationService, hub *realtime.Hub, cfg *config.Config) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub, keepAlive: cfg.Events.KeepAlive}
}

// ListNotifications returns the persisted feed, newest first.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	limit := int64(DefaultFeedLimit)
	if err := echo.QueryParamsBinder(c).Int64("limit", &limit).BindError(); err != nil {
		return apperrors.Validation("limit must be an integer").WithFields(map[string]string{"limit": "must be an integer"})
	}
	if limit < 0 {
		return apperrors.Validation("limit must not be negative").WithFields(map[string]string{"limit": "must not be negative"})
	}
	notifications, err := h.service.ListNotifications(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

// Stream holds the connection open and writes every hub event as a server-sent event,
// starting with the connected event. The subscription is removed when the stream ends.
func (h *NotificationHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	ctx := c.Request().Context()
	for {
		ev, err := h.next(ctx, sub)
		switch {
		case errors.Is(err, errKeepAlive):
			if _, err := io.WriteString(res, ": keepalive\n\n"); err != nil {
				return nil
			}
		case err != nil:
			// client gone or hub closed
			return nil
		default:
			if err := writeEvent(res, ev); err != nil {
				return nil
			}
		}
		res.Flush()
	}
}

// next waits for the next event, giving up after the keepalive interval so the caller can
// write a comment line and detect dead connections.
func (h *NotificationHandler) next(ctx context.Context, sub *realtime.Subscription) (realtime.Event, error) {
	if h.keepAlive <= 0 {
		return sub.Next(ctx)
	}
	waitCtx, cancel := context.WithTimeout(ctx, h.keepAlive)
	defer cancel()
	ev, err := sub.Next(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return realtime.Event{}, errKeepAlive
	}
	return ev, err
}

func writeEvent(w io.Writer, ev realtime.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, data)
	return err
}
