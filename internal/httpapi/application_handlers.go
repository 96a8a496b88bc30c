package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) apply(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Applications.Apply(c.Request().Context(), act, c.Param("id"), req.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) getApplication(c echo.Context) error {
	act, _ := actor(c)
	a, err := h.Applications.Get(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) withdrawApplication(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Applications.Withdraw(c.Request().Context(), act, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) acceptApplication(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	a, assignmentID, err := h.Applications.Accept(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"application": a, "assignment_id": assignmentID})
}

func (h *Handler) rejectApplication(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	a, err := h.Applications.Reject(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) listPostingApplications(c echo.Context) error {
	act, _ := actor(c)
	out, err := h.Applications.ListByPosting(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}

func (h *Handler) listMyApplications(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Applications.ListMine(c.Request().Context(), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}
