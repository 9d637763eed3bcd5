package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"schoolfees/internal/domain"
	"schoolfees/internal/handler"
	"schoolfees/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	FeeHandler     *handler.FeeHandler
	PaymentHandler *handler.PaymentHandler
	WebhookHandler *handler.WebhookHandler
	Tokens         middleware.TokenParser
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhook, authenticated by signature.
	router.POST("/paystack-webhook", deps.WebhookHandler.Paystack)

	v1 := router.Group("/v1")
	{
		v1.POST("/bootstrap/admin", deps.AuthHandler.BootstrapAdmin)
		v1.POST("/auth/login", deps.AuthHandler.Login)

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Tokens))
		authed.Use(middleware.NewRelicAttributes())
		if deps.RedisClient != nil {
			authed.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
		}

		admin := middleware.RequireRole(domain.RoleAdmin)

		// User routes.
		users := authed.Group("/users", admin)
		{
			users.POST("", deps.UserHandler.Create)
			users.GET("", deps.UserHandler.GetAll)
		}

		// Fee routes.
		fees := authed.Group("/fees")
		{
			fees.GET("", deps.FeeHandler.ListFees)
			fees.POST("", admin, deps.FeeHandler.CreateFee)
			fees.PATCH("/:id/status", admin, deps.FeeHandler.UpdateFeeStatus)
			fees.DELETE("/:id", admin, deps.FeeHandler.DeleteFee)
		}

		// Caller-scoped routes.
		me := authed.Group("/me")
		{
			me.GET("/fees", deps.FeeHandler.PayableFees)
			me.GET("/payments", deps.PaymentHandler.ListMyPayments)
		}

		// Payment routes.
		payments := authed.Group("/payments")
		{
			payments.POST("/initiate", deps.PaymentHandler.InitiatePayment)
			payments.POST("/verify", deps.PaymentHandler.VerifyPayment)
			payments.POST("/:id/abandon", deps.PaymentHandler.AbandonPayment)
			payments.GET("", admin, deps.PaymentHandler.ListPayments)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.GET("/:id/receipt", deps.PaymentHandler.GetReceipt)
		}
	}

	return router
}
