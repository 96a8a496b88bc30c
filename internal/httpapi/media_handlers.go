package httpapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/media"
)

func (h *Handler) uploadMedia(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	category := c.Param("category")
	ownerID := c.Param("owner")
	if err := h.mediaWriteAllowed(c, act, category, ownerID); err != nil {
		return fail(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}

	compress := c.QueryParam("compress") != "false"
	obj, err := h.Media.Upload(c.Request().Context(), category, ownerID, file.Filename, data, compress)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, obj)
}

func (h *Handler) listMedia(c echo.Context) error {
	out, err := h.Media.List(c.Request().Context(), c.Param("category"), c.Param("owner"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"media": out})
}

func (h *Handler) deleteMedia(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	category := c.Param("category")
	var req struct {
		OwnerID string      `json:"owner_id"`
		Refs    []media.Ref `json:"refs"`
	}
	if err := c.Bind(&req); err != nil || len(req.Refs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refs are required"})
	}
	if err := h.mediaWriteAllowed(c, act, category, req.OwnerID); err != nil {
		return fail(c, err)
	}
	count := h.Media.DeleteBatch(c.Request().Context(), category, req.Refs)
	return c.JSON(http.StatusOK, echo.Map{"deleted": count})
}

// mediaWriteAllowed gates attachment writes on the owning entity: posting
// media belongs to the posting owner, application media to the applicant,
// assignment media to either participant, chat media to active thread
// members.
func (h *Handler) mediaWriteAllowed(c echo.Context, act authz.Actor, category, ownerID string) error {
	ctx := c.Request().Context()
	switch category {
	case media.CategoryPosting:
		p, err := h.Postings.Get(ctx, act, ownerID)
		if err != nil {
			return err
		}
		if p.OwnerID != act.UserID && !act.IsAdmin {
			return apperr.Forbidden("only the posting owner can manage its media")
		}
	case media.CategoryApplication:
		a, err := h.Applications.Get(ctx, act, ownerID)
		if err != nil {
			return err
		}
		if a.ApplicantID != act.UserID && !act.IsAdmin {
			return apperr.Forbidden("only the applicant can manage application media")
		}
	case media.CategoryAssignment:
		a, err := h.Assignments.Get(ctx, act, ownerID)
		if err != nil {
			return err
		}
		if a.OwnerID != act.UserID && a.WorkerID != act.UserID && !act.IsAdmin {
			return apperr.Forbidden("only assignment participants can manage its media")
		}
	case media.CategoryChat:
		if err := h.Chat.CanAccess(ctx, act, ownerID); err != nil {
			return err
		}
	default:
		return apperr.Invalidf("unknown media category %q", category)
	}
	return nil
}
