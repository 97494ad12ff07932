package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// CalendarController serves the merged training and match calendar
type CalendarController struct {
	calendarService services.CalendarService
	logger          zerolog.Logger
}

func NewCalendarController(calendarService services.CalendarService, logger zerolog.Logger) *CalendarController {
	return &CalendarController{calendarService: calendarService, logger: logger}
}

// Events godoc
// @Summary Calendar events
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]dto.CalendarEvent}
// @Router /calendar [get]
func (c *CalendarController) Events(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.DateRangeQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	events, err := c.calendarService.Events(ctx.Request.Context(), p, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, events)
}
