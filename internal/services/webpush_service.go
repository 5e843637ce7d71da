package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"coffeeRelay/configs"
	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushService delivers browser push notifications signed with the
// server's VAPID keys.
type WebPushService struct {
	config     *configs.WebPushConfig
	httpClient webpush.HTTPClient
}

func NewWebPushService(config *configs.WebPushConfig) *WebPushService {
	return &WebPushService{
		config:     config,
		httpClient: http.DefaultClient,
	}
}

// Send returns errs.ErrSubscriptionGone when the push service reports the
// endpoint as expired or unknown.
func (ws *WebPushService) Send(ctx context.Context, subscription models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: subscription.Endpoint,
		Keys: webpush.Keys{
			Auth:   subscription.Auth,
			P256dh: subscription.P256DH,
		},
	}, &webpush.Options{
		HTTPClient:      ws.httpClient,
		Subscriber:      ws.config.Subscriber,
		VAPIDPublicKey:  ws.config.VAPIDPublicKey,
		VAPIDPrivateKey: ws.config.VAPIDPrivateKey,
		TTL:             ws.config.TTL,
	})
	if err != nil {
		return fmt.Errorf("error sending web push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return errs.ErrSubscriptionGone
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", errs.ErrPushRejected, resp.StatusCode)
	}
	return nil
}
