package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/wdmlabs/bmlconnect/internal/config"
	"github.com/wdmlabs/bmlconnect/internal/server/http/handlers"
	"github.com/wdmlabs/bmlconnect/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(cfg *config.Config, facade handlers.PaymentFacade, db handlers.Pinger, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	webhookHandler := handlers.NewWebhookHandler(facade)
	returnHandler := handlers.NewReturnHandler(facade, cfg)
	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(db)

	engine.POST("/bml-gateway/webhook", webhookHandler.Handle)
	engine.GET("/bml-gateway/return", returnHandler.Handle)

	// Older merchant configurations point the processor at the site root with
	// a marker query parameter instead of the dedicated paths.
	engine.POST("/", func(c *gin.Context) {
		if c.Query("bml_webhook") == "1" {
			webhookHandler.Handle(c)
			return
		}
		c.Status(http.StatusNotFound)
	})
	engine.GET("/", func(c *gin.Context) {
		if c.Query("bml_return") == "1" {
			returnHandler.Handle(c)
			return
		}
		c.Status(http.StatusNotFound)
	})

	api := engine.Group("/api")
	orders := api.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/pay", orderHandler.Pay)

	engine.GET("/healthz", healthHandler.Healthz)

	return engine
}
