package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"
	"coffeeRelay/internal/repositories"
	"coffeeRelay/internal/validators"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier pushes a stored record to the user's room.
type Notifier interface {
	PushNotificationCreated(ctx context.Context, userID string, record any) error
	HasLocalListeners(userID string) bool
}

// PresenceChecker answers whether a user holds a socket on any relay process
// and when their last socket went away.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
	LastSeen(ctx context.Context, userID string) (*time.Time, error)
}

type PushSender interface {
	Send(ctx context.Context, subscription models.PushSubscription, payload []byte) error
}

// PushMessage is the body browsers receive in their service worker.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	subscriptionRepo repositories.SubscriptionRepository
	notifier         Notifier
	presence         PresenceChecker
	push             PushSender
	logger           *zap.Logger
	now              func() time.Time
}

type NotificationServiceOption func(*NotificationService)

func WithPresence(presence PresenceChecker) NotificationServiceOption {
	return func(ns *NotificationService) {
		ns.presence = presence
	}
}

// WithPushSender enables the web push fallback for users without a socket.
func WithPushSender(push PushSender) NotificationServiceOption {
	return func(ns *NotificationService) {
		ns.push = push
	}
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	notifier Notifier,
	logger *zap.Logger,
	options ...NotificationServiceOption,
) *NotificationService {
	ns := &NotificationService{
		notificationRepo: notificationRepo,
		subscriptionRepo: subscriptionRepo,
		notifier:         notifier,
		logger:           logger,
		now:              time.Now,
	}
	for _, option := range options {
		option(ns)
	}
	return ns
}

// Create stores the notification, then delivers it. Delivery problems are
// logged; once stored the record is returned even if nobody received it.
func (ns *NotificationService) Create(ctx context.Context, request *models.CreateNotificationRequest) (*models.Notification, error) {
	if err := validators.ValidateStruct(request); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		ID:          uuid.NewString(),
		UserID:      request.UserID,
		Title:       request.Title,
		Description: request.Description,
		RedirectURL: request.RedirectURL,
		CreatedAt:   ns.now().UTC(),
	}
	if err := ns.notificationRepo.Insert(ctx, notification); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}

	ns.deliver(ctx, notification)
	return notification, nil
}

// deliver emits on the socket relay and falls back to web push only when the
// user has no live socket anywhere.
func (ns *NotificationService) deliver(ctx context.Context, notification *models.Notification) {
	if err := ns.notifier.PushNotificationCreated(ctx, notification.UserID, notification); err != nil {
		ns.logger.Warn("error pushing notification to room",
			zap.String("user_id", notification.UserID), zap.Error(err))
	}

	if ns.push == nil || ns.isConnected(ctx, notification.UserID) {
		return
	}

	subscriptions, err := ns.subscriptionRepo.ListByUser(ctx, notification.UserID)
	if err != nil {
		ns.logger.Error("error listing push subscriptions",
			zap.String("user_id", notification.UserID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(PushMessage{
		Title: notification.Title,
		Body:  notification.Description,
		URL:   notification.RedirectURL,
	})
	if err != nil {
		ns.logger.Error("error encoding push message", zap.Error(err))
		return
	}

	for _, subscription := range subscriptions {
		err := ns.push.Send(ctx, subscription, payload)
		switch {
		case err == nil:
		case errors.Is(err, errs.ErrSubscriptionGone):
			ns.logger.Info("removing expired push subscription", zap.String("endpoint", subscription.Endpoint))
			if err := ns.subscriptionRepo.Delete(ctx, subscription.Endpoint); err != nil && !errors.Is(err, errs.ErrSubscriptionNotFound) {
				ns.logger.Error("error removing push subscription", zap.Error(err))
			}
		default:
			ns.logger.Warn("error sending web push",
				zap.String("endpoint", subscription.Endpoint), zap.Error(err))
		}
	}
}

func (ns *NotificationService) isConnected(ctx context.Context, userID string) bool {
	if ns.notifier.HasLocalListeners(userID) {
		return true
	}
	if ns.presence == nil {
		return false
	}
	online, err := ns.presence.IsOnline(ctx, userID)
	if err != nil {
		ns.logger.Warn("error reading presence", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return online
}

func (ns *NotificationService) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := ns.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	return notifications, nil
}

// Presence reports whether the user has a live socket. LastSeen is only
// known when cross-process presence is configured.
func (ns *NotificationService) Presence(ctx context.Context, userID string) (*models.Presence, error) {
	presence := &models.Presence{
		UserID: userID,
		Online: ns.notifier.HasLocalListeners(userID),
	}
	if ns.presence == nil {
		return presence, nil
	}

	if !presence.Online {
		online, err := ns.presence.IsOnline(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
		}
		presence.Online = online
	}
	lastSeen, err := ns.presence.LastSeen(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	presence.LastSeen = lastSeen
	return presence, nil
}

// MarkRead flags the notification as read. Callers other than admins may
// only mark their own notifications; nil claims means auth is disabled.
func (ns *NotificationService) MarkRead(ctx context.Context, id string, claims *models.Claims) (*models.Notification, error) {
	if !isAdmin(claims) {
		notification, err := ns.notificationRepo.FindByID(ctx, id)
		if errors.Is(err, errs.ErrNotificationNotFound) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
		}
		if notification.UserID != claims.UserID {
			return nil, errs.ErrForbidden
		}
	}

	notification, err := ns.notificationRepo.MarkRead(ctx, id)
	if errors.Is(err, errs.ErrNotificationNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	return notification, nil
}

func (ns *NotificationService) Subscribe(ctx context.Context, request *models.SubscribeRequest) (*models.PushSubscription, error) {
	subscription := &models.PushSubscription{
		Endpoint:  request.Endpoint,
		UserID:    request.UserID,
		P256DH:    request.Keys.P256DH,
		Auth:      request.Keys.Auth,
		CreatedAt: ns.now().UTC(),
	}
	if err := ns.subscriptionRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	return subscription, nil
}

// Unsubscribe removes a push subscription owned by the caller, or any
// subscription when the caller is an admin.
func (ns *NotificationService) Unsubscribe(ctx context.Context, endpoint string, claims *models.Claims) error {
	if !isAdmin(claims) {
		subscription, err := ns.subscriptionRepo.FindByEndpoint(ctx, endpoint)
		if errors.Is(err, errs.ErrSubscriptionNotFound) {
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrPersistence, err)
		}
		if subscription.UserID != claims.UserID {
			return errs.ErrForbidden
		}
	}

	err := ns.subscriptionRepo.Delete(ctx, endpoint)
	if errors.Is(err, errs.ErrSubscriptionNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
	return nil
}

func isAdmin(claims *models.Claims) bool {
	return claims == nil || claims.Role == enums.ROLE_ADMIN
}
