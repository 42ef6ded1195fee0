// Package push wraps the Web Push protocol behind a narrow sender interface
// so services never deal with HTTP status codes or VAPID details directly.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/pkg/config"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
)

// Sender delivers one notification payload to one destination.
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload models.NotificationPayload) error
	Configured() bool
}

// WebPushSender sends notifications over the Web Push protocol using VAPID.
type WebPushSender struct {
	cfg    config.PushConfig
	logger *zap.Logger
}

// NewWebPushSender constructs a sender from the push configuration.
func NewWebPushSender(cfg config.PushConfig, logger *zap.Logger) *WebPushSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebPushSender{cfg: cfg, logger: logger}
}

// Configured reports whether VAPID credentials are present. Without them the
// platform capability is absent and delivery must not be attempted.
func (s *WebPushSender) Configured() bool {
	return s.cfg.VAPIDPublicKey != "" && s.cfg.VAPIDPrivateKey != ""
}

// Send pushes the payload to the destination. A 404/410 response means the
// destination is permanently gone and is reported as ErrEndpointGone so the
// caller can deactivate it.
func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, payload models.NotificationPayload) error {
	if !s.Configured() {
		return appErrors.Clone(appErrors.ErrDeliveryError, "VAPID keys not configured")
	}

	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDeliveryError.Code, appErrors.ErrDeliveryError.Status, "send web push")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrEndpointGone, fmt.Sprintf("push service returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return appErrors.Clone(appErrors.ErrDeliveryError, fmt.Sprintf("push service returned %d", resp.StatusCode))
	}

	return nil
}

// IsGone reports whether the delivery error marks a permanently invalid
// destination.
func IsGone(err error) bool {
	appErr := appErrors.FromError(err)
	return appErr != nil && appErr.Code == appErrors.ErrEndpointGone.Code
}
