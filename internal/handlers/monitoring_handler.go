package handlers

import (
	"net/http"
	"time"

	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MonitoringHandler expone las métricas operativas
type MonitoringHandler struct {
	monitoringService services.MonitoringService
	logger            *zap.Logger
}

// NewMonitoringHandler crea una nueva instancia del handler
func NewMonitoringHandler(monitoringService services.MonitoringService, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
		logger:            logger,
	}
}

// GetMetrics maneja GET /monitoring/metrics
func (h *MonitoringHandler) GetMetrics(c *gin.Context) {
	metrics := h.monitoringService.GetMetrics(c.Request.Context())

	h.logger.Debug("Métricas obtenidas",
		zap.Int("total_requests", metrics.Requests.TotalRequests),
		zap.Int("cola_total", metrics.Cola.Total))

	c.JSON(http.StatusOK, metrics)
}

// HealthCheck endpoint liviano para balanceadores
func (h *MonitoringHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
