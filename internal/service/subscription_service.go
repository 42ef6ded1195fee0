package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
)

type subscriptionRepository interface {
	ListActive(ctx context.Context) ([]models.PushSubscription, error)
	FindActiveByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	Create(ctx context.Context, sub *models.PushSubscription) error
	DeactivateByEndpoint(ctx context.Context, endpoint string) error
}

// SubscriptionKeys carries the browser-generated encryption keys.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// RegisterSubscriptionRequest describes payload for registering a push
// destination.
type RegisterSubscriptionRequest struct {
	Endpoint  string           `json:"endpoint" validate:"required,url"`
	Keys      SubscriptionKeys `json:"keys" validate:"required"`
	UserAgent string           `json:"userAgent"`
}

// UnregisterSubscriptionRequest identifies the destination to deactivate.
type UnregisterSubscriptionRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

// SubscriptionService manages push destination lifecycle.
type SubscriptionService struct {
	repo      subscriptionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubscriptionService instantiates SubscriptionService.
func NewSubscriptionService(repo subscriptionRepository, validate *validator.Validate, logger *zap.Logger) *SubscriptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, validator: validate, logger: logger}
}

// Register stores a new push destination. Registration is idempotent on the
// endpoint: re-registering an active endpoint returns the existing record.
func (s *SubscriptionService) Register(ctx context.Context, req RegisterSubscriptionRequest) (*models.PushSubscription, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrSubscription.Code, appErrors.ErrSubscription.Status, "invalid subscription payload")
	}

	existing, err := s.repo.FindActiveByEndpoint(ctx, req.Endpoint)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lookup subscription")
	}
	if existing != nil {
		return existing, false, nil
	}

	sub := models.PushSubscription{
		UserID:    "user_" + uuid.NewString(),
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: req.UserAgent,
	}
	if err := s.repo.Create(ctx, &sub); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create subscription")
	}

	s.logger.Info("push subscription registered", zap.String("subscription_id", sub.ID))
	return &sub, true, nil
}

// Unregister deactivates the destination for an endpoint. The row is kept as
// history; only is_active flips.
func (s *SubscriptionService) Unregister(ctx context.Context, req UnregisterSubscriptionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSubscription.Code, appErrors.ErrSubscription.Status, "invalid unsubscribe payload")
	}
	if err := s.repo.DeactivateByEndpoint(ctx, req.Endpoint); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "deactivate subscription")
	}
	return nil
}

// ActiveCount returns how many destinations are registered and active.
func (s *SubscriptionService) ActiveCount(ctx context.Context) (int, error) {
	subs, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list subscriptions")
	}
	return len(subs), nil
}
