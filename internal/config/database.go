package config

import (
	"context"
	"fmt"

	"ResourceShare/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStoreGateway opens the configured document store. An unset DATABASE_URL or an
// unreachable server does not stop the application: data endpoints answer 503 instead.
func NewStoreGateway(lc fx.Lifecycle, cfg *Config, logger *zap.Logger) (store.Gateway, error) {
	logger = logger.Named("store")

	if cfg.Store.Driver == DriverMemory {
		logger.Warn("Using in-memory document store, data is lost on restart")
		gateway := store.NewMemoryGateway()
		if err := gateway.EnsureIndexes(context.Background(), store.DefaultIndexes...); err != nil {
			return nil, err
		}
		return gateway, nil
	}

	if cfg.Store.URI == "" {
		logger.Warn("DATABASE_URL not set, database endpoints are unavailable")
		return store.NewMongoGateway(nil), nil
	}

	clientOptions := options.Client().
		ApplyURI(cfg.Store.URI).
		SetConnectTimeout(cfg.Store.ConnectTimeout).
		SetServerSelectionTimeout(cfg.Store.ConnectTimeout).
		SetMaxPoolSize(cfg.Store.MaxPoolSize)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	gateway := store.NewMongoGateway(client.Database(cfg.Store.Name))

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := gateway.Ping(startCtx); err != nil {
				logger.Error("MongoDB not reachable, serving without database", zap.Error(err))
				return nil
			}
			logger.Info("Connected to MongoDB", zap.String("database", cfg.Store.Name))
			if err := gateway.EnsureIndexes(startCtx, store.DefaultIndexes...); err != nil {
				logger.Error("Failed to create indexes", zap.Error(err))
			}
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info("Closing MongoDB connection ...")
			return client.Disconnect(stopCtx)
		},
	})
	return gateway, nil
}
