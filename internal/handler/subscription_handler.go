package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwhan-dev/timetable-notify/internal/service"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
	"github.com/jwhan-dev/timetable-notify/pkg/response"
)

// SubscriptionHandler handles push destination endpoints.
type SubscriptionHandler struct {
	service *service.SubscriptionService
}

// NewSubscriptionHandler constructs a subscription handler.
func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: svc}
}

// Register godoc
// @Summary Register a push subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param payload body service.RegisterSubscriptionRequest true "Subscription payload"
// @Success 201 {object} response.Envelope
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Register(c *gin.Context) {
	var req service.RegisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = c.GetHeader("User-Agent")
	}

	sub, created, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, gin.H{"subscriptionId": sub.ID})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"subscriptionId": sub.ID}, map[string]interface{}{
		"message": "subscription already exists",
	})
}

// Unregister godoc
// @Summary Deactivate a push subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param payload body service.UnregisterSubscriptionRequest true "Endpoint to deactivate"
// @Success 204
// @Router /subscriptions [delete]
func (h *SubscriptionHandler) Unregister(c *gin.Context) {
	var req service.UnregisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.service.Unregister(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
