package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var db *gorm.DB

// SetDB sets the database connection for health checks
func SetDB(database *gorm.DB) {
	db = database
}

// HealthCheck provides a health check endpoint
// GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "product-import-service",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck reports whether the service can reach its database
// GET /ready
func ReadinessCheck(c *gin.Context) {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"service":   "product-import-service",
				"timestamp": time.Now().UTC(),
				"error":     "failed to get database connection",
			})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"service":   "product-import-service",
				"timestamp": time.Now().UTC(),
				"error":     "database connection failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   "product-import-service",
		"timestamp": time.Now().UTC(),
		"checks": gin.H{
			"database": "connected",
		},
	})
}
