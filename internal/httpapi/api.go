// Package httpapi wires the domain services onto echo routes. Handlers stay
// thin: bind, call the service, translate the error kind to a status code.
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/application"
	"github.com/worklink-dev/worklink/internal/assignment"
	"github.com/worklink-dev/worklink/internal/auth"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/chat"
	"github.com/worklink-dev/worklink/internal/comment"
	"github.com/worklink-dev/worklink/internal/match"
	"github.com/worklink-dev/worklink/internal/media"
	"github.com/worklink-dev/worklink/internal/payment"
	"github.com/worklink-dev/worklink/internal/posting"
	"github.com/worklink-dev/worklink/internal/rating"
	"github.com/worklink-dev/worklink/internal/schedule"
)

type Handler struct {
	Auth         *auth.Service
	Postings     *posting.Service
	Applications *application.Service
	Assignments  *assignment.Service
	Payments     *payment.Service
	Ratings      *rating.Service
	Comments     *comment.Service
	Chat         *chat.Service
	Schedules    *schedule.Service
	Media        *media.Coordinator
	Interests    match.InterestStore
}

// Register mounts all routes. Everything except signup/login sits behind the
// bearer-token middleware.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/auth/signup", h.signup)
	e.POST("/auth/login", h.login)

	api := e.Group("", h.Auth.Middleware)

	api.POST("/postings", h.createPosting)
	api.GET("/postings", h.listPostings)
	api.GET("/postings/mine", h.listMyPostings)
	api.GET("/postings/:id", h.getPosting)
	api.PATCH("/postings/:id", h.updatePosting)
	api.DELETE("/postings/:id", h.deletePosting)
	api.POST("/postings/:id/status", h.transitionPosting)
	api.GET("/postings/:id/applications", h.listPostingApplications)
	api.GET("/postings/:id/assignments", h.listPostingAssignments)
	api.GET("/postings/:id/comments", h.listComments)
	api.POST("/postings/:id/comments", h.createComment)
	api.PUT("/postings/:id/schedule", h.upsertSchedule)
	api.GET("/postings/:id/schedule", h.getSchedule)
	api.POST("/postings/:id/apply", h.apply)

	api.GET("/applications/mine", h.listMyApplications)
	api.GET("/applications/:id", h.getApplication)
	api.DELETE("/applications/:id", h.withdrawApplication)
	api.POST("/applications/:id/accept", h.acceptApplication)
	api.POST("/applications/:id/reject", h.rejectApplication)

	api.GET("/assignments/mine", h.listMyAssignments)
	api.GET("/assignments/:id", h.getAssignment)
	api.PATCH("/assignments/:id", h.updateAssignment)
	api.DELETE("/assignments/:id", h.deleteAssignment)
	api.POST("/assignments/:id/status", h.transitionAssignment)
	api.POST("/assignments/:id/payments", h.createPayment)
	api.GET("/assignments/:id/payments", h.listAssignmentPayments)
	api.POST("/assignments/:id/rating", h.submitRating)

	api.GET("/payments/mine", h.listMyPayments)
	api.GET("/payments/:id", h.getPayment)
	api.POST("/payments/:id/status", h.transitionPayment)
	api.DELETE("/payments/:id", h.deletePayment)

	api.PATCH("/comments/:id", h.updateComment)
	api.DELETE("/comments/:id", h.deleteComment)

	api.GET("/chat/threads", h.listThreads)
	api.GET("/chat/threads/:id/messages", h.listMessages)
	api.POST("/chat/threads/:id/messages", h.sendMessage)
	api.POST("/chat/threads/:id/leave", h.leaveThread)

	api.GET("/users/:id/rating", h.getUserRating)
	api.PUT("/me/interests", h.setInterests)
	api.GET("/me/interests", h.getInterests)

	api.POST("/media/:category/:owner", h.uploadMedia)
	api.GET("/media/:category/:owner", h.listMedia)
	api.DELETE("/media/:category", h.deleteMedia)

	adm := api.Group("/admin", auth.AdminGuard)
	adm.GET("/users/:id", h.adminGetUser)
}

// fail translates a service error to the JSON error shape used everywhere.
func fail(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
}

func actor(c echo.Context) (authz.Actor, bool) {
	return auth.ActorFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
