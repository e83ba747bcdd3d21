package api

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recommend-service/middleware"
)

const serviceName = "recommend-service"

func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(middleware.PrometheusMiddleware(serviceName))
	router.Use(cors.Default())

	// Liveness routes for the ingress
	router.GET("/", root)
	router.GET("/health", healthCheck)
	router.GET("/ready", healthCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", apiHealth)
		api.GET("/health/details", h.healthDetails)
		api.GET("/recommend/:user_id", h.recommend)
	}

	return router
}

func StartServer(h *Handler, port string) {
	router := NewRouter(h)
	log.Printf("Recommend API is running at :%s", port)
	router.Run(":" + port)
}

func root(c *gin.Context) {
	c.JSON(200, gin.H{"ok": true, "service": serviceName})
}

func healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy", "service": serviceName})
}

func apiHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
