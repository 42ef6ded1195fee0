package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

// NotificationLogRepository records delivery attempts per destination.
type NotificationLogRepository struct {
	db *sqlx.DB
}

// NewNotificationLogRepository creates a new log repository.
func NewNotificationLogRepository(db *sqlx.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// Create stores one delivery log entry.
func (r *NotificationLogRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}

	const query = `INSERT INTO notification_logs (id, subscription_id, title, body, success, error_message, sent_at) VALUES (:id, :subscription_id, :title, :body, :success, :error_message, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}
	return nil
}

// ListRecent returns the latest delivery log entries, newest first.
func (r *NotificationLogRepository) ListRecent(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, subscription_id, title, body, success, error_message, sent_at FROM notification_logs ORDER BY sent_at DESC LIMIT %d`, limit)
	var entries []models.NotificationLog
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	return entries, nil
}
