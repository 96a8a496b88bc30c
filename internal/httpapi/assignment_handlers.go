package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/assignment"
)

func (h *Handler) getAssignment(c echo.Context) error {
	act, _ := actor(c)
	a, err := h.Assignments.Get(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) transitionAssignment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	a, err := h.Assignments.TransitionStatus(c.Request().Context(), act, c.Param("id"), assignment.Status(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) updateAssignment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var patch assignment.Patch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Assignments.Update(c.Request().Context(), act, c.Param("id"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAssignment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Assignments.Delete(c.Request().Context(), act, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listPostingAssignments(c echo.Context) error {
	act, _ := actor(c)
	out, err := h.Assignments.ListByPosting(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": out})
}

func (h *Handler) listMyAssignments(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Assignments.ListMine(c.Request().Context(), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": out})
}
