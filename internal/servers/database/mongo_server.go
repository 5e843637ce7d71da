package database

import (
	"context"
	"fmt"
	"time"

	"coffeeRelay/configs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// OpenMongo connects and pings, retrying RetryCount times.
func OpenMongo(ctx context.Context, config *configs.MongoConfig, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	clientOpts := options.Client().ApplyURI(config.URI)

	var err error
	for i := 0; i <= config.RetryCount; i++ {
		var client *mongo.Client
		client, err = mongo.Connect(ctx, clientOpts)
		if err == nil {
			if err = client.Ping(ctx, readpref.Primary()); err == nil {
				logger.Info("Connected to MongoDB", zap.String("database", config.Database))
				return client, client.Database(config.Database), nil
			}
			_ = client.Disconnect(ctx)
		}

		logger.Warn("MongoDB connection attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		if i < config.RetryCount {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(config.RetryInterval):
			}
		}
	}

	return nil, nil, fmt.Errorf("failed to connect to MongoDB after retries: %w", err)
}
