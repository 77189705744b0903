package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/server/http/handlers"
	"github.com/polkiloo/ordertrack/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.TrackerFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	sessionHandler := handlers.NewSessionHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	riderHandler := handlers.NewRiderHandler(facade)
	feedHandler := handlers.NewFeedHandler(facade)

	api := engine.Group("/api")
	api.POST("/session", sessionHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.DELETE("/session", sessionHandler.Logout)

	authed.GET("/orders", orderHandler.List)
	authed.POST("/orders/refresh", orderHandler.Refresh)
	authed.GET("/orders/:id", orderHandler.Detail)
	authed.DELETE("/orders/:id/view", orderHandler.Close)

	authed.GET("/notices", feedHandler.Notices)
	authed.DELETE("/notices/:id", feedHandler.DismissNotice)

	authed.GET("/notifications", feedHandler.Notifications)
	authed.POST("/notifications/read", feedHandler.MarkAllRead)
	authed.POST("/notifications/:id/read", feedHandler.MarkRead)
	authed.DELETE("/notifications", feedHandler.Clear)
	authed.DELETE("/notifications/:id", feedHandler.Remove)

	rider := authed.Group("/rider")
	rider.Use(middleware.RoleRequired(model.RoleRider))
	rider.GET("/available", riderHandler.Available)
	rider.GET("/prompts", riderHandler.Prompts)
	rider.POST("/prompts/:id/accept", riderHandler.Accept)
	rider.POST("/prompts/:id/decline", riderHandler.Decline)

	return engine
}
