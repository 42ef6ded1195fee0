// Package notify hosts the client-resident half of the notification engine:
// the in-process timer scheduler and the delivery adapter it fires into.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/pkg/config"
)

// PermissionGranted is the authorization state under which delivery may be
// attempted. The other browser states (denied, default) block delivery.
const PermissionGranted = "granted"

// Broadcaster pushes one payload to every registered active destination.
type Broadcaster interface {
	Broadcast(ctx context.Context, payload models.NotificationPayload) (models.SweepSummary, error)
}

// Deliverer shows a notification to the user now, or degrades to a simulated
// delivery when the rich channel is unavailable.
type Deliverer interface {
	Deliver(ctx context.Context, payload models.NotificationPayload) bool
	Simulate(ctx context.Context, payload models.NotificationPayload)
	Status() models.DeliveryStatus
}

// Notifier is the delivery adapter. It checks capability, configuration and
// permission before every attempt; when any precondition fails it reports
// not-delivered without attempting, and the caller falls back to Simulate.
type Notifier struct {
	cfg         config.NotificationsConfig
	capability  bool
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewNotifier builds the delivery adapter. capability reports whether the
// push platform is usable at all (VAPID credentials present).
func NewNotifier(cfg config.NotificationsConfig, capability bool, broadcaster Broadcaster, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{cfg: cfg, capability: capability, broadcaster: broadcaster, logger: logger}
}

// CanShow reports whether all delivery preconditions hold.
func (n *Notifier) CanShow() bool {
	return n.capability && n.cfg.Enabled && n.cfg.Permission == PermissionGranted
}

// Deliver attempts rich delivery. It returns true only when at least one
// destination accepted the notification. Failures are logged, never raised.
func (n *Notifier) Deliver(ctx context.Context, payload models.NotificationPayload) bool {
	if !n.CanShow() {
		n.logger.Debug("delivery preconditions not met",
			zap.Bool("capability", n.capability),
			zap.Bool("enabled", n.cfg.Enabled),
			zap.String("permission", n.cfg.Permission))
		return false
	}

	summary, err := n.broadcaster.Broadcast(ctx, payload)
	if err != nil {
		n.logger.Warn("notification broadcast failed", zap.String("title", payload.Title), zap.Error(err))
		return false
	}
	return summary.Delivered > 0
}

// Simulate records the notification without showing it anywhere. This is the
// degraded path used when Deliver reports false.
func (n *Notifier) Simulate(_ context.Context, payload models.NotificationPayload) {
	n.logger.Info("simulated notification",
		zap.String("title", payload.Title),
		zap.String("body", payload.Body),
		zap.String("tag", payload.Tag))
}

// Status returns the developer-facing snapshot of the adapter.
func (n *Notifier) Status() models.DeliveryStatus {
	return models.DeliveryStatus{
		Supported:  n.capability,
		Enabled:    n.cfg.Enabled,
		Permission: n.cfg.Permission,
		CanShow:    n.CanShow(),
	}
}
