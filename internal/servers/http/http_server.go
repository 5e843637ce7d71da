package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"coffeeRelay/configs"
	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/handlers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HttpServer struct {
	config        *configs.Config
	router        *gin.Engine
	server        *http.Server
	handler       *handlers.Handler
	restHandler   *handlers.RestHandler
	socketHandler *handlers.SocketRelayHandler
	logger        *zap.Logger
}

func NewHttpServer(
	config *configs.Config,
	handler *handlers.Handler,
	restHandler *handlers.RestHandler,
	socketHandler *handlers.SocketRelayHandler,
	logger *zap.Logger,
) *HttpServer {
	hs := &HttpServer{
		config:        config,
		handler:       handler,
		restHandler:   restHandler,
		socketHandler: socketHandler,
		logger:        logger,
	}
	hs.initializeGin()
	hs.setupRestfulRoutes()
	hs.setupWebSocketRoutes()
	hs.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.Port),
		Handler: hs.router,
	}
	return hs
}

func (hs *HttpServer) initializeGin() {
	if hs.config.Server.Mode != "" {
		gin.SetMode(hs.config.Server.Mode)
	}
	hs.router = gin.New()
	hs.router.Use(gin.Recovery(), hs.handler.RequestLoggerMiddleware())
}

func (hs *HttpServer) setupRestfulRoutes() {
	hs.router.GET("/health", hs.handler.Health)

	api := hs.router.Group("/api", hs.handler.MustAuthenticateMiddleware())
	api.POST("/notifications", hs.handler.MustHaveRoleMiddleware(enums.ROLE_ADMIN), hs.restHandler.CreateNotification)
	api.GET("/notifications/:userId", hs.restHandler.GetNotifications)
	api.PATCH("/notifications/:id/read", hs.restHandler.MarkNotificationRead)
	api.POST("/subscriptions", hs.restHandler.Subscribe)
	api.DELETE("/subscriptions", hs.restHandler.Unsubscribe)
	api.GET("/presence/:userId", hs.restHandler.GetPresence)
}

func (hs *HttpServer) setupWebSocketRoutes() {
	hs.router.GET(hs.config.Relay.Path, hs.handler.MustAuthenticateMiddleware(), hs.socketHandler.HandleSocketRoute)
}

func (hs *HttpServer) Handler() http.Handler {
	return hs.router
}

// Start serves in the background. A listener failure is sent on the
// returned channel.
func (hs *HttpServer) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		hs.logger.Info("HTTP server started", zap.String("addr", hs.server.Addr))
		if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops accepting requests. Upgraded sockets are hijacked and are
// closed by the relay, not here.
func (hs *HttpServer) Shutdown(ctx context.Context) error {
	hs.logger.Info("Shutting down HTTP server")
	return hs.server.Shutdown(ctx)
}
