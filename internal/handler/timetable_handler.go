package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwhan-dev/timetable-notify/internal/service"
	"github.com/jwhan-dev/timetable-notify/pkg/response"
)

// TimetableHandler serves the weekly schedule.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Weekly godoc
// @Summary Full weekly timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Weekly(c *gin.Context) {
	sched := h.service.Weekly(c.Request.Context())
	response.JSON(c, http.StatusOK, sched)
}

// Today godoc
// @Summary Today's slots
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/today [get]
func (h *TimetableHandler) Today(c *gin.Context) {
	slots, day, ok := h.service.Today(c.Request.Context(), time.Now())
	if !ok {
		response.JSON(c, http.StatusOK, gin.H{"day": nil, "slots": []interface{}{}}, map[string]interface{}{
			"message": "no classes today",
		})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"day": day, "slots": slots})
}
