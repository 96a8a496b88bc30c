package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/posting"
)

type postingRequest struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	PaymentAmount    int64             `json:"payment_amount"`
	PaymentCurrency  string            `json:"payment_currency"`
	PaymentType      string            `json:"payment_type"`
	MaxApplicants    int               `json:"max_applicants"`
	MaxAssignees     int               `json:"max_assignees"`
	Location         *posting.Location `json:"location"`
	StartAt          *time.Time        `json:"start_at"`
	EndAt            *time.Time        `json:"end_at"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	IsPublic         *bool             `json:"is_public"`
	ExpiresAt        *time.Time        `json:"expires_at"`
	Categories       []string          `json:"categories"`
}

func (h *Handler) createPosting(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req postingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, err := h.Postings.Create(c.Request().Context(), act, posting.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		PaymentAmount:    req.PaymentAmount,
		PaymentCurrency:  req.PaymentCurrency,
		PaymentType:      posting.PaymentType(req.PaymentType),
		MaxApplicants:    req.MaxApplicants,
		MaxAssignees:     req.MaxAssignees,
		Location:         req.Location,
		StartAt:          req.StartAt,
		EndAt:            req.EndAt,
		EstimatedMinutes: req.EstimatedMinutes,
		IsPublic:         req.IsPublic,
		ExpiresAt:        req.ExpiresAt,
		Categories:       req.Categories,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getPosting(c echo.Context) error {
	act, _ := actor(c)
	p, err := h.Postings.Get(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) listPostings(c echo.Context) error {
	act, _ := actor(c)
	out, err := h.Postings.List(c.Request().Context(), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"postings": out})
}

func (h *Handler) listMyPostings(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Postings.ListByOwner(c.Request().Context(), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"postings": out})
}

func (h *Handler) updatePosting(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var patch posting.Patch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, err := h.Postings.Update(c.Request().Context(), act, c.Param("id"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) transitionPosting(c echo.Context) error {
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
	p, err := h.Postings.TransitionStatus(c.Request().Context(), act, c.Param("id"), posting.Status(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deletePosting(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Postings.Delete(c.Request().Context(), act, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
