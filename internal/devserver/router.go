// Package devserver emulates the production backend's contract for
// local development and end-to-end tests: menu, order intake with hash
// validation, and payment verification. State is in-memory only.
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdash/orderkit/internal/config"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg config.DevServerConfig, environment string, menu *MenuStore, orders *OrderStore, logger *zap.Logger) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(apiKeyMiddleware(cfg.APIKeyHash, logger))
	{
		v1.GET("/restaurants/:id/menu", HandleGetMenu(menu, logger))
		v1.POST("/orders", HandleCreateOrder(menu, orders, logger))
		v1.GET("/orders/:id", HandleGetOrder(orders, logger))
		v1.POST("/payments/verify", HandleVerifyPayment(cfg, orders, logger))
		v1.GET("/payments/key", HandleGatewayKey(cfg))
	}

	return router
}

// apiKeyMiddleware verifies X-API-Key against the configured bcrypt
// hash. An empty hash disables auth for local development.
func apiKeyMiddleware(apiKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(apiKey)); err != nil {
			logger.Warn("rejected API key", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
