package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/mellowshop/orderdesk/internal/server/http/handlers"
	"github.com/mellowshop/orderdesk/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware. The webhook
// route skips response compression middleware concerns entirely: its
// handler consumes the raw request body for signature verification.
func Setup(facade handlers.CheckoutFacade, pinger handlers.Pinger, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	draftHandler := handlers.NewDraftHandler(facade)
	verifyHandler := handlers.NewVerifyHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	healthHandler := handlers.NewHealthHandler(pinger)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	orders := api.Group("/orders")
	orders.POST("/draft", draftHandler.Create)
	orders.PUT("/draft", draftHandler.Update)

	api.POST("/payments/verify", verifyHandler.Verify)
	api.POST("/webhooks/razorpay", webhookHandler.Handle)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AdminRequired(facade))
	adminAuth.GET("/orders/:id", adminHandler.Get)
	adminAuth.PUT("/orders/:id", adminHandler.Update)
	adminAuth.GET("/payments/:id", adminHandler.Payment)

	return engine
}
