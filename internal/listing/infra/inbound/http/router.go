package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterListingRoutes monta los endpoints de listados bajo basePath (p. ej. "/api").
func RegisterListingRoutes(r *gin.Engine, basePath string, handler *ListHandler) {
	base := "/" + strings.Trim(basePath, "/")
	if base == "/" {
		base = ""
	}
	listing := r.Group(base)
	{
		listing.GET("/:entity", handler.List)
		listing.GET("/:entity/_capabilities", handler.Capabilities)
		listing.GET("/:entity/_stats", handler.Stats)
	}
}

// RegisterHealth añade el endpoint de salud.
func RegisterHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
