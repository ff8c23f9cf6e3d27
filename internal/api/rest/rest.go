package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/chapmanwm/printsync-web/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, verifier middleware.KeyVerifier, coversBaseURL, coversDir string) {
	// Health check endpoint (no auth)
	router.GET("/health", handler.HealthCheck)

	// Print endpoints (public read access)
	router.GET("/prints", handler.ListPrints)
	router.GET("/filament-usage", handler.GetFilamentUsage)

	// Claiming is open to any user
	router.POST("/prints/:id/claim", handler.ClaimPrint)
	router.POST("/prints/:id/unclaim", handler.UnclaimPrint)

	// Ingestion and administration (requires API key authentication)
	router.POST("/prints", middleware.APIKeyAuth(verifier), handler.IngestPrints)
	router.POST("/prints/:id/cover", middleware.APIKeyAuth(verifier), handler.UploadCover)
	router.POST("/admin/init", middleware.APIKeyAuth(verifier), handler.InitSchema)

	// Mirrored cover images
	if coversDir != "" {
		router.Static(coversBaseURL, coversDir)
	}
}
