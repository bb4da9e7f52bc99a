// File: handlers/bundle.go
package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the endpoint handlers routes are registered with.
type HandlerBundle struct {
	// Webhook endpoints
	VerifyWebhookHandler  gin.HandlerFunc
	ReceiveWebhookHandler gin.HandlerFunc

	// Admin endpoints
	ListPendingHandler  gin.HandlerFunc
	ListActivityHandler gin.HandlerFunc

	// Middleware configuration
	AppSecret      string
	AdminKeys      []string
	AllowedOrigins []string
}
