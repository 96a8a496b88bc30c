package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/worklink-dev/worklink/internal/application"
	"github.com/worklink-dev/worklink/internal/assignment"
	"github.com/worklink-dev/worklink/internal/auth"
	"github.com/worklink-dev/worklink/internal/chat"
	"github.com/worklink-dev/worklink/internal/comment"
	"github.com/worklink-dev/worklink/internal/db"
	"github.com/worklink-dev/worklink/internal/httpapi"
	"github.com/worklink-dev/worklink/internal/match"
	"github.com/worklink-dev/worklink/internal/media"
	"github.com/worklink-dev/worklink/internal/payment"
	"github.com/worklink-dev/worklink/internal/posting"
	"github.com/worklink-dev/worklink/internal/rating"
	"github.com/worklink-dev/worklink/internal/schedule"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	database, err := db.Connect(context.Background(), db.Config{
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5432"),
		Name:     envOr("DB_NAME", "worklink"),
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Pool.Close()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	mediaDir := envOr("MEDIA_DIR", "./media")
	backend, err := media.NewDiskBackend(mediaDir)
	if err != nil {
		log.Fatalf("media storage: %v", err)
	}
	coordinator := media.NewCoordinator(media.NewPostgresStore(database), backend)

	postStore := posting.NewPostgresStore(database)
	appStore := application.NewPostgresStore(database)
	assignmentStore := assignment.NewPostgresStore(database)
	payStore := payment.NewPostgresStore(database)
	interests := match.NewPostgresInterestStore(database)

	chatSvc := chat.NewService(chat.NewPostgresStore(database), coordinator)
	assignmentSvc := assignment.NewService(assignmentStore, postStore, payStore, chatSvc, coordinator)
	appSvc := application.NewService(appStore, postStore, assignmentSvc, chatSvc, coordinator)
	commentSvc := comment.NewService(comment.NewPostgresStore(database), postStore)
	scheduleSvc := schedule.NewService(schedule.NewPostgresStore(database), postStore)
	postSvc := posting.NewService(postStore, appStore, assignmentSvc, commentSvc, scheduleSvc, coordinator, interests)
	paySvc := payment.NewService(payStore, assignmentSvc)
	ratingSvc := rating.NewService(rating.NewPostgresStore(database), assignmentStore)
	authSvc := auth.NewService(auth.NewPostgresStore(database), secret)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	h := &httpapi.Handler{
		Auth:         authSvc,
		Postings:     postSvc,
		Applications: appSvc,
		Assignments:  assignmentSvc,
		Payments:     paySvc,
		Ratings:      ratingSvc,
		Comments:     commentSvc,
		Chat:         chatSvc,
		Schedules:    scheduleSvc,
		Media:        coordinator,
		Interests:    interests,
	}
	h.Register(e)

	port := envOr("PORT", "8080")
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
