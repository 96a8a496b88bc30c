package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/payment"
)

func (h *Handler) createPayment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Method   string `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, err := h.Payments.Create(c.Request().Context(), act, payment.CreateInput{
		AssignmentID: c.Param("id"),
		Amount:       req.Amount,
		Currency:     req.Currency,
		Method:       req.Method,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getPayment(c echo.Context) error {
	act, _ := actor(c)
	p, err := h.Payments.Get(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) transitionPayment(c echo.Context) error {
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
	p, err := h.Payments.UpdateStatus(c.Request().Context(), act, c.Param("id"), payment.Status(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deletePayment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Payments.Delete(c.Request().Context(), act, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listAssignmentPayments(c echo.Context) error {
	act, _ := actor(c)
	out, err := h.Payments.ListByAssignment(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}

func (h *Handler) listMyPayments(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Payments.ListMine(c.Request().Context(), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}
