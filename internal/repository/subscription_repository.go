package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

// SubscriptionRepository provides persistence for push destinations.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, endpoint, p256dh, auth, user_agent, is_active, created_at, updated_at`

// ListActive returns every destination still eligible for dispatch.
func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]models.PushSubscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM push_subscriptions WHERE is_active = true ORDER BY created_at ASC`, subscriptionColumns)
	var subs []models.PushSubscription
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	return subs, nil
}

// FindActiveByEndpoint returns the active subscription registered for an
// endpoint, or nil when none exists.
func (r *SubscriptionRepository) FindActiveByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM push_subscriptions WHERE endpoint = $1 AND is_active = true`, subscriptionColumns)
	var sub models.PushSubscription
	if err := r.db.GetContext(ctx, &sub, query, endpoint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find subscription by endpoint: %w", err)
	}
	return &sub, nil
}

// Create stores a new subscription record.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	sub.IsActive = true

	const query = `INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, user_agent, is_active, created_at, updated_at) VALUES (:id, :user_id, :endpoint, :p256dh, :auth, :user_agent, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// DeactivateByEndpoint flips is_active off for the endpoint, keeping the row
// as history. Used on explicit unsubscribe.
func (r *SubscriptionRepository) DeactivateByEndpoint(ctx context.Context, endpoint string) error {
	const query = `UPDATE push_subscriptions SET is_active = false, updated_at = $2 WHERE endpoint = $1`
	if _, err := r.db.ExecContext(ctx, query, endpoint, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate subscription by endpoint: %w", err)
	}
	return nil
}

// Deactivate flips is_active off by id. Used when the push service reports
// the destination permanently gone; it must receive no further dispatches.
func (r *SubscriptionRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE push_subscriptions SET is_active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}
