package router

import (
	"github.com/gin-gonic/gin"

	"lipseyocr/internal/handler"
	"lipseyocr/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(serviceKey string, processH *handler.ProcessHandler, healthH *handler.HealthHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health check
	r.GET("/healthz", healthH.Liveness)

	// The Apps Script caller posts to /process; keep the versioned route for
	// newer clients. Both sit behind the shared-secret check.
	secret := middleware.SharedSecret(serviceKey)
	r.POST("/process", secret, processH.Process)

	v1 := r.Group("/api/v1")
	v1.Use(secret)
	v1.POST("/process", processH.Process)

	return r
}
