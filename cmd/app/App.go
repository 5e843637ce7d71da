package app

import (
	"context"
	"errors"
	"fmt"

	"coffeeRelay/configs"
	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/handlers"
	"coffeeRelay/internal/pubsub"
	"coffeeRelay/internal/relay"
	"coffeeRelay/internal/repositories"
	"coffeeRelay/internal/servers/database"
	"coffeeRelay/internal/servers/http"
	"coffeeRelay/internal/services"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App wires the relay process together. Every resource it opens registers a
// shutdown operation; Redis is closed by the relay operation once sockets
// have drained.
type App struct {
	config     *configs.Config
	logger     *zap.Logger
	redis      *redis.Client
	relay      *relay.Relay
	httpServer *http.HttpServer
	operations map[string]gfshutdown.Operation
}

func NewApp(config *configs.Config, logger *zap.Logger) *App {
	return &App{
		config:     config,
		logger:     logger,
		operations: make(map[string]gfshutdown.Operation),
	}
}

// LetsGo starts serving and returns the graceful shutdown channel, which
// yields the exit code once a termination signal has been handled.
func (app *App) LetsGo(ctx context.Context) (<-chan int, error) {
	if err := app.initializeRedis(ctx); err != nil {
		return nil, err
	}

	notificationRepo, subscriptionRepo, err := app.initializeRepositories(ctx)
	if err != nil {
		return nil, err
	}

	if err := app.initializeRelay(ctx); err != nil {
		return nil, err
	}

	serviceOptions := []services.NotificationServiceOption{}
	socketOptions := []handlers.SocketRelayOption{}
	if app.redis != nil {
		presence := pubsub.NewRedisPresence(app.redis, app.config.Presence.TTL)
		serviceOptions = append(serviceOptions, services.WithPresence(presence))
		socketOptions = append(socketOptions, handlers.WithPresenceTracker(presence))
	}
	if app.config.WebPush.Enabled {
		serviceOptions = append(serviceOptions, services.WithPushSender(services.NewWebPushService(&app.config.WebPush)))
	}
	notificationService := services.NewNotificationService(
		notificationRepo, subscriptionRepo, app.relay.Bridge, app.logger, serviceOptions...)

	socketHandler := handlers.NewSocketRelayHandler(app.relay, notificationService, handlers.SocketClientOptions{
		SendBuffer:     app.config.Relay.SendBuffer,
		MaxMessageSize: app.config.Relay.MaxMessageSize,
		WriteWait:      app.config.Relay.WriteWait,
		PongWait:       app.config.Relay.PongWait,
	}, app.config.Relay.RequestTimeout, app.logger, socketOptions...)

	app.httpServer = http.NewHttpServer(
		app.config,
		handlers.NewHandler(app.config.JWT.Secret, app.logger),
		handlers.NewRestHandler(notificationService, app.logger),
		socketHandler,
		app.logger,
	)
	app.operations["http-server"] = app.httpServer.Shutdown
	app.operations["relay"] = func(ctx context.Context) error {
		return app.closeRelay(ctx, socketHandler)
	}

	serveErrs := app.httpServer.Start()
	go func() {
		if err, ok := <-serveErrs; ok && err != nil {
			app.logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if app.config.JWT.Secret == "" {
		app.logger.Warn("jwt.secret is empty, socket and API authentication are disabled")
	}

	return gfshutdown.GracefulShutdown(ctx, app.config.Shutdown.Timeout, app.operations), nil
}

func (app *App) initializeRedis(ctx context.Context) error {
	if !app.config.Redis.Enabled {
		app.logger.Info("Redis disabled, running as a single relay process")
		return nil
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.config.Redis.Addr,
		Password: app.config.Redis.Password,
		DB:       app.config.Redis.DB,
	})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", app.config.Redis.Addr, err)
	}
	app.logger.Info("Connected to Redis", zap.String("addr", app.config.Redis.Addr))
	return nil
}

func (app *App) initializeRepositories(ctx context.Context) (repositories.NotificationRepository, repositories.SubscriptionRepository, error) {
	switch app.config.Database.Driver {
	case enums.DATABASE_DRIVER_POSTGRES:
		db, err := database.OpenPostgres(&app.config.Database, app.logger)
		if err != nil {
			return nil, nil, err
		}
		app.operations["postgres"] = func(ctx context.Context) error {
			return database.ClosePostgres(db)
		}
		return repositories.NewGormNotificationRepository(db), repositories.NewGormSubscriptionRepository(db), nil
	case enums.DATABASE_DRIVER_MONGO:
		client, db, err := database.OpenMongo(ctx, &app.config.Database.Mongo, app.logger)
		if err != nil {
			return nil, nil, err
		}
		app.operations["mongo"] = client.Disconnect
		return repositories.NewMongoNotificationRepository(db), repositories.NewMongoSubscriptionRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
}

func (app *App) initializeRelay(ctx context.Context) error {
	options := []relay.Option{}
	if app.redis != nil {
		options = append(options, relay.WithBroker(pubsub.NewRedisBroker(app.redis, app.config.Redis.Channel, app.logger)))
	}
	app.relay = relay.New(app.logger, options...)
	if err := app.relay.Start(ctx); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	return nil
}

// closeRelay closes every socket, waits for the handlers to clear presence,
// then closes Redis, which both the broker and presence write through.
func (app *App) closeRelay(ctx context.Context, socketHandler *handlers.SocketRelayHandler) error {
	err := app.relay.Close()
	if waitErr := socketHandler.Wait(ctx); waitErr != nil {
		app.logger.Warn("sockets still open at shutdown", zap.Error(waitErr))
		err = errors.Join(err, waitErr)
	}
	if app.redis != nil {
		err = errors.Join(err, app.redis.Close())
	}
	return err
}
