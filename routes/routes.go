package routes

import (
	"net/http"
	"time"

	"chatbook/handlers"
	"chatbook/middleware"
	"chatbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterWebhookRoutes registers the WhatsApp Cloud API webhook.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	api := r.Group("/webhook")
	{
		api.GET("", hb.VerifyWebhookHandler)
		api.POST("", middleware.WebhookSignatureMiddleware(hb.AppSecret, logger), hb.ReceiveWebhookHandler)
	}
}

// RegisterAdminRoutes registers the owner-facing read endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(cors.New(cors.Config{
			AllowOrigins:     hb.AllowedOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
		api.Use(middleware.AdminAPIKeyMiddleware(hb.AdminKeys))
		api.GET("/pending", hb.ListPendingHandler)
		api.GET("/activity", hb.ListActivityHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		if !status.Healthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
	})
}

// RegisterRoutes sets up all routes.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	RegisterWebhookRoutes(r, hb, logger)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
