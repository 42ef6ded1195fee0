package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/internal/push"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
)

type subscriptionStore interface {
	ListActive(ctx context.Context) ([]models.PushSubscription, error)
	Deactivate(ctx context.Context, id string) error
}

type logSink interface {
	Enqueue(entry models.NotificationLog) error
}

// DispatchService is the dispatch sweeper. Delivery is at-most-once by
// design: a due record is marked sent after one pass over the destinations
// regardless of per-destination outcomes, so transient failures are logged
// but not retried. Only a whole-broadcast failure, where no destination was
// attempted at all, leaves the record unsent for the next cadence. Two
// overlapping sweeps racing on the same due record may both attempt
// delivery; that is tolerated.
type DispatchService struct {
	notifications notificationRepository
	subscriptions subscriptionStore
	sender        push.Sender
	logs          logSink
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewDispatchService instantiates DispatchService.
func NewDispatchService(notifications notificationRepository, subscriptions subscriptionStore, sender push.Sender, logs logSink, metrics *MetricsService, logger *zap.Logger) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchService{
		notifications: notifications,
		subscriptions: subscriptions,
		sender:        sender,
		logs:          logs,
		metrics:       metrics,
		logger:        logger,
	}
}

// Sweep processes every due unsent record: attempts delivery to all active
// destinations, then marks the record sent. Partial per-destination failure
// neither blocks the mark nor the remaining records; a broadcast that could
// not reach any destination skips the mark.
func (s *DispatchService) Sweep(ctx context.Context, now time.Time) (models.SweepSummary, error) {
	start := time.Now()

	due, err := s.notifications.ListDue(ctx, now)
	if err != nil {
		return models.SweepSummary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list due notifications")
	}

	var summary models.SweepSummary
	for _, record := range due {
		outcome, err := s.Broadcast(ctx, models.NotificationPayload{
			Title: record.Title,
			Body:  record.Body,
			Data: map[string]interface{}{
				"type": string(record.Kind),
				"classInfo": map[string]interface{}{
					"name":      record.ClassName,
					"room":      record.ClassRoom,
					"professor": record.Professor,
					"period":    record.ClassPeriod,
				},
			},
		})
		if err != nil {
			// No destination was attempted; leave the record unsent so the
			// next cadence picks it up.
			s.logger.Error("broadcast failed for due record",
				zap.String("record_id", record.ID), zap.Error(err))
			continue
		}
		summary.Delivered += outcome.Delivered
		summary.Failed += outcome.Failed

		if err := s.notifications.MarkSent(ctx, record.ID, time.Now().UTC()); err != nil {
			s.logger.Error("failed to mark notification sent",
				zap.String("record_id", record.ID), zap.Error(err))
			continue
		}
		summary.Processed++
	}

	s.metrics.ObserveSweep(time.Since(start), summary.Processed)
	if summary.Processed > 0 {
		s.logger.Info("dispatch sweep complete",
			zap.Int("processed", summary.Processed),
			zap.Int("delivered", summary.Delivered),
			zap.Int("failed", summary.Failed))
	}

	return summary, nil
}

// Broadcast sends one payload to every active destination. Destinations that
// report permanently gone are deactivated and excluded from future sweeps.
// Each attempt is logged asynchronously through the log queue.
func (s *DispatchService) Broadcast(ctx context.Context, payload models.NotificationPayload) (models.SweepSummary, error) {
	subs, err := s.subscriptions.ListActive(ctx)
	if err != nil {
		return models.SweepSummary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list active subscriptions")
	}

	var summary models.SweepSummary
	for _, sub := range subs {
		sendErr := s.sender.Send(ctx, sub, payload)
		s.metrics.RecordPush(sendErr == nil)

		entry := models.NotificationLog{
			SubscriptionID: sub.ID,
			Title:          payload.Title,
			Body:           payload.Body,
			Success:        sendErr == nil,
		}
		if sendErr != nil {
			entry.ErrorMessage = sendErr.Error()
		}
		if s.logs != nil {
			if err := s.logs.Enqueue(entry); err != nil {
				s.logger.Warn("failed to enqueue delivery log", zap.Error(err))
			}
		}

		if sendErr == nil {
			summary.Delivered++
			continue
		}

		summary.Failed++
		s.logger.Warn("push delivery failed",
			zap.String("subscription_id", sub.ID), zap.Error(sendErr))

		if push.IsGone(sendErr) {
			if err := s.subscriptions.Deactivate(ctx, sub.ID); err != nil {
				s.logger.Error("failed to deactivate gone subscription",
					zap.String("subscription_id", sub.ID), zap.Error(err))
			} else {
				s.logger.Info("subscription deactivated",
					zap.String("subscription_id", sub.ID))
			}
		}
	}

	return summary, nil
}
