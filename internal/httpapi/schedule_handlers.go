package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/schedule"
)

func (h *Handler) upsertSchedule(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Rule           string     `json:"rule"`
		CronExpression string     `json:"cron_expression"`
		StartDate      *time.Time `json:"start_date"`
		EndDate        *time.Time `json:"end_date"`
		IsActive       *bool      `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := h.Schedules.Upsert(c.Request().Context(), act, c.Param("id"), schedule.Input{
		Rule:           schedule.Rule(req.Rule),
		CronExpression: req.CronExpression,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) getSchedule(c echo.Context) error {
	act, _ := actor(c)
	s, err := h.Schedules.Get(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
