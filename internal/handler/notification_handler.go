package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/internal/notify"
	"github.com/jwhan-dev/timetable-notify/internal/service"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
	"github.com/jwhan-dev/timetable-notify/pkg/response"
)

type deliveryLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.NotificationLog, error)
}

// NotificationHandler exposes the scheduling and dispatch entry points.
type NotificationHandler struct {
	scheduler *service.SchedulerService
	dispatch  *service.DispatchService
	notifier  *notify.Notifier
	local     *notify.LocalScheduler
	timetable *models.WeeklySchedule
	logs      deliveryLogReader
	metrics   *service.MetricsService
	logger    *zap.Logger
}

// NewNotificationHandler constructs a notification handler. local may be nil
// when in-process timers are disabled.
func NewNotificationHandler(scheduler *service.SchedulerService, dispatch *service.DispatchService, notifier *notify.Notifier, local *notify.LocalScheduler, timetable *models.WeeklySchedule, logs deliveryLogReader, metrics *service.MetricsService, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		scheduler: scheduler,
		dispatch:  dispatch,
		notifier:  notifier,
		local:     local,
		timetable: timetable,
		logs:      logs,
		metrics:   metrics,
		logger:    logger,
	}
}

// Schedule godoc
// @Summary Recompute and persist all future notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/schedule [post]
func (h *NotificationHandler) Schedule(c *gin.Context) {
	now := time.Now()

	count, err := h.scheduler.Reschedule(c.Request.Context(), now)
	if err != nil {
		response.Error(c, err)
		return
	}

	armed := 0
	if h.local != nil {
		armed, err = h.local.ScheduleAll(h.timetable, now)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.metrics.SetTimersArmed(armed)
	}

	response.JSON(c, http.StatusOK, gin.H{
		"scheduledCount": count,
		"localTimers":    armed,
	})
}

// Sweep godoc
// @Summary Dispatch all due unsent notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/sweep [post]
func (h *NotificationHandler) Sweep(c *gin.Context) {
	summary, err := h.dispatch.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// SendRequest is the manual broadcast payload.
type SendRequest struct {
	Title string                 `json:"title" binding:"required"`
	Body  string                 `json:"body" binding:"required"`
	Data  map[string]interface{} `json:"data"`
}

// Send godoc
// @Summary Broadcast a notification to all active subscriptions now
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body SendRequest true "Notification content"
// @Success 200 {object} response.Envelope
// @Router /notifications/send [post]
func (h *NotificationHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing title or body"))
		return
	}

	summary, err := h.dispatch.Broadcast(c.Request.Context(), models.NotificationPayload{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Upcoming godoc
// @Summary Notification instants due within a horizon
// @Tags Notifications
// @Produce json
// @Param hours query int false "Horizon in hours (default 24)"
// @Success 200 {object} response.Envelope
// @Router /notifications/upcoming [get]
func (h *NotificationHandler) Upcoming(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	instants, err := h.scheduler.Upcoming(c.Request.Context(), time.Now(), time.Duration(hours)*time.Hour)
	if err != nil {
		response.Error(c, err)
		return
	}

	type upcomingItem struct {
		ID        string    `json:"id"`
		Kind      string    `json:"kind"`
		Day       string    `json:"day"`
		Period    string    `json:"period"`
		At        time.Time `json:"at"`
		ClassName string    `json:"class_name"`
		Room      string    `json:"room"`
		Professor string    `json:"professor"`
	}
	items := make([]upcomingItem, 0, len(instants))
	for _, in := range instants {
		items = append(items, upcomingItem{
			ID:        in.ID,
			Kind:      string(in.Kind),
			Day:       string(in.Day),
			Period:    in.Period,
			At:        in.At,
			ClassName: in.ClassName,
			Room:      in.Room,
			Professor: in.Professor,
		})
	}
	response.JSON(c, http.StatusOK, items)
}

// Pending godoc
// @Summary Durable records awaiting dispatch
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/pending [get]
func (h *NotificationHandler) Pending(c *gin.Context) {
	records, err := h.scheduler.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Logs godoc
// @Summary Recent delivery attempts
// @Tags Notifications
// @Produce json
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {object} response.Envelope
// @Router /notifications/logs [get]
func (h *NotificationHandler) Logs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := h.logs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Status godoc
// @Summary Developer-facing notification status
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/status [get]
func (h *NotificationHandler) Status(c *gin.Context) {
	status := h.notifier.Status()

	pending, err := h.scheduler.PendingCount(c.Request.Context())
	if err != nil {
		h.logger.Warn("failed to count pending notifications", zap.Error(err))
		pending = -1
	}

	active := 0
	if h.local != nil {
		active = h.local.Active()
	}

	response.JSON(c, http.StatusOK, gin.H{
		"delivery":     status,
		"localTimers":  active,
		"pendingCount": pending,
	})
}
