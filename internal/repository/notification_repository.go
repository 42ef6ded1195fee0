package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

// NotificationRepository provides persistence for durable scheduled
// notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, notification_type, title, body, scheduled_for, class_period, class_name, class_room, professor, sent, sent_at, created_at`

// Replace deletes all unsent records and inserts the new batch in a single
// transaction. Sent records are never touched; they remain as a dispatch log.
// The delete-then-insert makes rescheduling idempotent under repeated calls.
func (r *NotificationRepository) Replace(ctx context.Context, records []models.ScheduledNotification) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace notifications: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM scheduled_notifications WHERE sent = false`); err != nil {
		return fmt.Errorf("delete unsent notifications: %w", err)
	}

	now := time.Now().UTC()
	for i := range records {
		payload := records[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.Sent = false
		payload.SentAt = nil

		if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO scheduled_notifications (id, notification_type, title, body, scheduled_for, class_period, class_name, class_room, professor, sent, sent_at, created_at) VALUES (:id, :notification_type, :title, :body, :scheduled_for, :class_period, :class_name, :class_room, :professor, :sent, :sent_at, :created_at)`, &payload); err != nil {
			return fmt.Errorf("insert scheduled notification: %w", err)
		}
		records[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace notifications: %w", err)
	}
	return nil
}

// ListDue returns unsent records whose target datetime has arrived.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time) ([]models.ScheduledNotification, error) {
	query := fmt.Sprintf(`SELECT %s FROM scheduled_notifications WHERE sent = false AND scheduled_for <= $1 ORDER BY scheduled_for ASC`, notificationColumns)
	var records []models.ScheduledNotification
	if err := r.db.SelectContext(ctx, &records, query, now); err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	return records, nil
}

// ListUnsent returns all pending records ordered by target datetime.
func (r *NotificationRepository) ListUnsent(ctx context.Context) ([]models.ScheduledNotification, error) {
	query := fmt.Sprintf(`SELECT %s FROM scheduled_notifications WHERE sent = false ORDER BY scheduled_for ASC`, notificationColumns)
	var records []models.ScheduledNotification
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list unsent notifications: %w", err)
	}
	return records, nil
}

// MarkSent flips a record to sent with the given timestamp. Re-marking an
// already sent record is a no-op in effect.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE scheduled_notifications SET sent = true, sent_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// CountUnsent returns the number of pending records.
func (r *NotificationRepository) CountUnsent(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM scheduled_notifications WHERE sent = false`); err != nil {
		return 0, fmt.Errorf("count unsent notifications: %w", err)
	}
	return count, nil
}
