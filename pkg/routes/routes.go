package pkg

import (
	"context"
	"errors"
	"net"
	"net/http"

	"ResourceShare/internal/auth"
	"ResourceShare/internal/config"
	"ResourceShare/internal/meta"
	"ResourceShare/internal/notification"
	"ResourceShare/internal/realtime"
	"ResourceShare/internal/resource"
	"ResourceShare/internal/store"
	"ResourceShare/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(config.Load),
	fx.Provide(config.NewLogger),
	fx.Provide(config.NewStoreGateway),
	fx.Provide(NewHub),
	fx.Provide(NewBroadcaster),
	fx.Provide(NewEchoServer),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(auth.NewUserService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(notification.NewNotificationRepository),
	fx.Provide(notification.NewNotificationService),
	fx.Provide(NewPublisher),
	fx.Provide(notification.NewNotificationHandler),
	fx.Provide(resource.NewResourceRepository),
	fx.Provide(resource.NewResourceService),
	fx.Provide(resource.NewResourceHandler),
	fx.Provide(meta.NewMetaHandler),
	fx.Invoke(RegisterRoutes))

// NewHub provides the application's single broadcast hub.
func NewHub(cfg *config.Config, logger *zap.Logger) *realtime.Hub {
	return realtime.NewHub(cfg.Events.QueueLimit, logger)
}

func NewBroadcaster(hub *realtime.Hub) notification.Broadcaster { return hub }

func NewPublisher(s *notification.NotificationService) resource.Publisher { return s }

// NewEchoServer starts and stops the HTTP server with the app. It takes the store gateway so
// the database connection is opened before, and closed after, the server.
func NewEchoServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, _ store.Gateway, hub *realtime.Hub, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	middleware.SetupMiddleware(e, cfg, logger)
	addr := cfg.Addr()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			e.Listener = ln
			logger.Info("Server running", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Server stopped unexpectedly", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server ...")
			// open event streams only end when the hub closes
			hub.Close()
			ctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return e.Shutdown(ctx)
		},
	})
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	authHandler *auth.AuthHandler,
	resourceHandler *resource.ResourceHandler,
	notificationHandler *notification.NotificationHandler,
	metaHandler *meta.MetaHandler,
) {
	e.GET("/", metaHandler.Root)
	e.GET("/api/hello", metaHandler.Hello)
	e.GET("/schema", metaHandler.Schema)
	e.GET("/test", metaHandler.Test)

	e.POST("/auth/login", authHandler.Login)

	resources := e.Group("/resources")
	resources.POST("", resourceHandler.CreateResource)
	resources.GET("", resourceHandler.ListResources)
	resources.GET("/pending", resourceHandler.ListPending)
	resources.POST("/:id/approve", resourceHandler.ApproveResource)

	e.GET("/notifications", notificationHandler.ListNotifications)
	e.GET("/events", notificationHandler.Stream)
}
