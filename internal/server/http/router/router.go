package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	productHandler := handlers.NewProductHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)
	requireAuth := middleware.AuthRequired(facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.GET("/profile", requireAuth, authHandler.Profile)

	orders := api.Group("/orders", requireAuth)
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id", orderHandler.Update)
	orders.DELETE("/:id", orderHandler.Cancel)

	payments := api.Group("/payments")
	payments.POST("/webhook", paymentHandler.Webhook)
	payments.POST("/create-intent", requireAuth, paymentHandler.CreateIntent)

	products := api.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", requireAuth, productHandler.Create)
	products.PATCH("/:id", requireAuth, productHandler.Update)
	products.DELETE("/:id", requireAuth, productHandler.Delete)

	return engine
}
