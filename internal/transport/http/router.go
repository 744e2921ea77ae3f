package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/superrichie/internal/session"
	"github.com/ErlanBelekov/superrichie/internal/transport/http/handler"
	"github.com/ErlanBelekov/superrichie/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type sessionParser interface {
	Parse(raw string) (session.Claims, error)
}

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, sessions sessionParser, production bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(production))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	auth := r.Group("/api/auth")
	auth.POST("/magic-link", authHandler.RequestMagicLink)
	auth.GET("/verify", authHandler.Verify)
	auth.POST("/logout", authHandler.Logout)

	// Protected routes
	api := r.Group("/api", middleware.Session(sessions))
	api.GET("/me", authHandler.Me)

	return r
}
