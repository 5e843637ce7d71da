package handlers

import (
	"errors"
	"net/http"

	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"
	"coffeeRelay/internal/msgs"
	"coffeeRelay/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RestHandler struct {
	notificationService *services.NotificationService
	logger              *zap.Logger
}

func NewRestHandler(notificationService *services.NotificationService, logger *zap.Logger) *RestHandler {
	return &RestHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// CreateNotification godoc
// @Summary      Create a notification
// @Description  Store a notification and deliver it to the user's room, falling back to web push
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        notification  body      models.CreateNotificationRequest  true  "Notification"
// @Success      201  {object}  models.Response
// @Failure      400  {object}  models.Response
// @Failure      401  {object}  models.Response
// @Failure      403  {object}  models.Response
// @Failure      500  {object}  models.Response
// @Router       /api/notifications [post]
func (rh *RestHandler) CreateNotification(ctx *gin.Context) {
	var request models.CreateNotificationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  models.ErrorMessages(errs.ErrInvalidRequestBody),
		})
		return
	}

	notification, err := rh.notificationService.Create(ctx.Request.Context(), &request)
	if err != nil {
		rh.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: msgs.MsgNotificationCreated,
		Data:    notification,
	})
}

// GetNotifications godoc
// @Summary      List notifications
// @Description  Get a user's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200  {object}  models.Response
// @Failure      401  {object}  models.Response
// @Failure      403  {object}  models.Response
// @Failure      500  {object}  models.Response
// @Router       /api/notifications/{userId} [get]
func (rh *RestHandler) GetNotifications(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if !canAccessUser(ctx, userID) {
		rh.abortWithError(ctx, errs.ErrForbidden)
		return
	}

	notifications, err := rh.notificationService.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		rh.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    notifications,
	})
}

// MarkNotificationRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  models.Response
// @Failure      401  {object}  models.Response
// @Failure      403  {object}  models.Response
// @Failure      404  {object}  models.Response
// @Failure      500  {object}  models.Response
// @Router       /api/notifications/{id}/read [patch]
func (rh *RestHandler) MarkNotificationRead(ctx *gin.Context) {
	claims, _ := ClaimsFromContext(ctx)
	notification, err := rh.notificationService.MarkRead(ctx.Request.Context(), ctx.Param("id"), claims)
	if err != nil {
		rh.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgNotificationMarkedAsRead,
		Data:    notification,
	})
}

// Subscribe godoc
// @Summary      Save a web push subscription
// @Description  Register a browser push endpoint; an existing endpoint gets its keys refreshed
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        subscription  body      models.SubscribeRequest  true  "Subscription"
// @Success      201  {object}  models.Response
// @Failure      400  {object}  models.Response
// @Failure      401  {object}  models.Response
// @Failure      403  {object}  models.Response
// @Failure      500  {object}  models.Response
// @Router       /api/subscriptions [post]
func (rh *RestHandler) Subscribe(ctx *gin.Context) {
	var request models.SubscribeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  models.ErrorMessages(errs.ErrInvalidRequestBody),
		})
		return
	}
	if !canAccessUser(ctx, request.UserID) {
		rh.abortWithError(ctx, errs.ErrForbidden)
		return
	}

	subscription, err := rh.notificationService.Subscribe(ctx.Request.Context(), &request)
	if err != nil {
		rh.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: msgs.MsgSubscriptionSaved,
		Data:    subscription,
	})
}

// Unsubscribe godoc
// @Summary      Remove a web push subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        subscription  body      models.UnsubscribeRequest  true  "Endpoint"
// @Success      200  {object}  models.Response
// @Failure      400  {object}  models.Response
// @Failure      401  {object}  models.Response
// @Failure      403  {object}  models.Response
// @Failure      404  {object}  models.Response
// @Failure      500  {object}  models.Response
// @Router       /api/subscriptions [delete]
func (rh *RestHandler) Unsubscribe(ctx *gin.Context) {
	var request models.UnsubscribeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  models.ErrorMessages(errs.ErrInvalidRequestBody),
		})
		return
	}

	claims, _ := ClaimsFromContext(ctx)
	if err := rh.notificationService.Unsubscribe(ctx.Request.Context(), request.Endpoint, claims); err != nil {
		rh.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgSubscriptionRemoved,
	})
}

// GetPresence godoc
// @Summary      Show a user's presence
// @Description  Whether the user holds a live socket and when one last closed
// @Tags         presence
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200  {object}  models.Response
// @Failure      401  {object}  models.Response
// @Failure      403  {object}  models.Response
// @Failure      500  {object}  models.Response
// @Router       /api/presence/{userId} [get]
func (rh *RestHandler) GetPresence(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if !canAccessUser(ctx, userID) {
		rh.abortWithError(ctx, errs.ErrForbidden)
		return
	}

	presence, err := rh.notificationService.Presence(ctx.Request.Context(), userID)
	if err != nil {
		rh.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    presence,
	})
}

func (rh *RestHandler) abortWithError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidPayload):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrNotificationNotFound), errors.Is(err, errs.ErrSubscriptionNotFound):
		status = http.StatusNotFound
	default:
		rh.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
	}

	ctx.AbortWithStatusJSON(status, models.Response{
		Success: false,
		Message: msgs.MsgOperationFailed,
		Errors:  models.ErrorMessages(err),
	})
}

// canAccessUser lets admins through and everyone else only to their own
// records. Without authentication every request passes.
func canAccessUser(ctx *gin.Context, userID string) bool {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return true
	}
	return claims.Role == enums.ROLE_ADMIN || claims.UserID == userID
}
