package api

import (
	"net/http"
	"time"
	"wayfinder-route-service/internal/api/handlers"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/sessions"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(manager *sessions.Manager, l *zap.Logger) http.Handler {
	l = logger.OrNop(l)

	r := gin.New()
	r.Use(recoveryMiddleware(l))
	r.Use(requestIDMiddleware(l))
	r.Use(loggingMiddleware(l))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	sessionHandler := &handlers.SessionHandler{Sessions: manager}
	catalogHandler := &handlers.CatalogHandler{Sessions: manager}
	streamHandler := handlers.NewStreamHandler(manager, l)

	r.GET("/health", handlers.Health)

	v1 := r.Group("/v1/sessions")
	v1.POST("", sessionHandler.Create)
	v1.GET("/:id", sessionHandler.Get)
	v1.DELETE("/:id", sessionHandler.Delete)
	v1.POST("/:id/positions", sessionHandler.PushPosition)
	v1.PUT("/:id/permission", sessionHandler.SetPermission)
	v1.PUT("/:id/destination", sessionHandler.SelectDestination)
	v1.DELETE("/:id/destination", sessionHandler.CancelRouting)
	v1.PUT("/:id/category", catalogHandler.SelectCategory)
	v1.GET("/:id/catalog", catalogHandler.Get)
	v1.GET("/:id/stream", streamHandler.Stream)

	return r
}
