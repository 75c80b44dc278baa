package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminTokenHeader = "X-Admin-Token"

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, handlers *Handlers, adminToken string) {
	// API routes
	v1 := r.Group("/api")
	{
		// Health check (handle both GET and HEAD)
		v1.GET("/health", handlers.HealthCheck)
		v1.HEAD("/health", handlers.HealthCheck)

		// Cached catalog
		v1.GET("/products", handlers.GetProducts)
		v1.GET("/products/:id", handlers.GetProduct)
		v1.GET("/products/:id/history", handlers.GetProductHistory)
		v1.GET("/products/:id/widget", handlers.GetWidget)

		admin := v1.Group("/admin", RequireAdminToken(adminToken))
		{
			admin.POST("/sync", handlers.TriggerSync)
			admin.GET("/status", handlers.GetSyncStatus)
			admin.GET("/notice", handlers.GetNotice)
			admin.GET("/settings", handlers.GetSettings)
			admin.PUT("/settings", handlers.UpdateSettings)
		}
	}

	// Embeddable widget fragment
	r.GET("/widget/:id", handlers.GetWidgetHTML)
}

// RequireAdminToken rejects requests without the configured token.
// With no token configured the admin routes are closed.
func RequireAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access is not configured"})
			return
		}
		got := c.GetHeader(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
