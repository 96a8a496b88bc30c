package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/authz"
)

const actorKey = "actor"

// Middleware authenticates the bearer token and stores the actor on the
// request context.
func (s *Service) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
		}
		actor, err := s.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		c.Set(actorKey, actor)
		return next(c)
	}
}

// AdminGuard ensures only admin users can access admin routes.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := c.Get(actorKey).(authz.Actor)
		if !ok || !actor.IsAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access only"})
		}
		return next(c)
	}
}

// ActorFrom returns the authenticated actor set by Middleware.
func ActorFrom(c echo.Context) (authz.Actor, bool) {
	actor, ok := c.Get(actorKey).(authz.Actor)
	return actor, ok && actor.UserID != ""
}
