package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/chat"
	"github.com/worklink-dev/worklink/internal/match"
)

func (h *Handler) submitRating(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Score int `json:"score"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	agg, err := h.Ratings.Submit(c.Request().Context(), act, c.Param("id"), req.Score)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, agg)
}

func (h *Handler) getUserRating(c echo.Context) error {
	agg, err := h.Ratings.AggregateOf(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, agg)
}

func (h *Handler) createComment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cm, err := h.Comments.Create(c.Request().Context(), act, c.Param("id"), req.Content, req.ParentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *Handler) listComments(c echo.Context) error {
	out, err := h.Comments.ListByPosting(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": out})
}

func (h *Handler) updateComment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cm, err := h.Comments.Update(c.Request().Context(), act, c.Param("id"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *Handler) deleteComment(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Comments.Delete(c.Request().Context(), act, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listThreads(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Chat.Threads(c.Request().Context(), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"threads": out})
}

func (h *Handler) listMessages(c echo.Context) error {
	act, _ := actor(c)
	out, err := h.Chat.Messages(c.Request().Context(), act, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

func (h *Handler) sendMessage(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	m, err := h.Chat.Send(c.Request().Context(), act, c.Param("id"), chat.MessageType(req.Type), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) leaveThread(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Chat.Leave(c.Request().Context(), act, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) setInterests(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Interests []match.Interest `json:"interests"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := match.ValidateInterests(req.Interests); err != nil {
		return fail(c, err)
	}
	if err := h.Interests.SetInterests(c.Request().Context(), act.UserID, req.Interests); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to save interests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"interests": req.Interests})
}

func (h *Handler) getInterests(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Interests.InterestsOf(c.Request().Context(), act.UserID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load interests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"interests": out})
}
