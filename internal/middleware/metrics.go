package middleware

import (
	"time"

	"pagomatic-service/internal/models"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware alimenta el servicio de monitoreo con cada request
func MetricsMiddleware(monitoring services.MonitoringService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		monitoring.RecordRequest(models.RequestData{
			Method:     c.Request.Method,
			Endpoint:   endpoint,
			StatusCode: c.Writer.Status(),
			Duration:   time.Since(start),
			Timestamp:  start,
		})
	}
}
