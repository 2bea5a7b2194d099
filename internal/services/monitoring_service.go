package services

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sync"
	"time"

	"pagomatic-service/internal/cache"
	"pagomatic-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MonitoringService expone métricas operativas: tráfico HTTP, profundidad de
// la cola de aprobaciones, caché, base de datos y proceso.
type MonitoringService interface {
	GetMetrics(ctx context.Context) *models.MonitoringResponse
	RecordRequest(data models.RequestData)
}

type monitoringService struct {
	logger        *zap.Logger
	redisClient   *redis.Client
	dbPool        *sql.DB
	productoCache *cache.ProductoCache
	aprobaciones  AprobacionService

	requestsMutex sync.RWMutex
	requests      map[string]*models.EndpointMetrics
	slowRequests  []models.SlowRequest
	errors        []models.RequestError
	totalRequests int

	startTime time.Time
}

// NewMonitoringService crea una nueva instancia del servicio
func NewMonitoringService(
	logger *zap.Logger,
	redisClient *redis.Client,
	dbPool *sql.DB,
	productoCache *cache.ProductoCache,
	aprobaciones AprobacionService,
) MonitoringService {
	return &monitoringService{
		logger:        logger,
		redisClient:   redisClient,
		dbPool:        dbPool,
		productoCache: productoCache,
		aprobaciones:  aprobaciones,
		requests:      make(map[string]*models.EndpointMetrics),
		startTime:     time.Now(),
	}
}

// RecordRequest acumula las métricas de un request terminado
func (s *monitoringService) RecordRequest(data models.RequestData) {
	s.requestsMutex.Lock()
	defer s.requestsMutex.Unlock()

	endpointKey := fmt.Sprintf("%s %s", data.Method, data.Endpoint)

	metrics, exists := s.requests[endpointKey]
	if !exists {
		metrics = &models.EndpointMetrics{}
		s.requests[endpointKey] = metrics
	}

	metrics.Count++
	durationMs := data.Duration.Milliseconds()
	metrics.TotalTime += durationMs
	metrics.AvgTime = float64(metrics.TotalTime) / float64(metrics.Count)

	s.totalRequests++

	// Solo se retienen los últimos 100 lentos y 100 errores
	if durationMs > 1000 {
		s.slowRequests = append(s.slowRequests, models.SlowRequest{
			Endpoint:  endpointKey,
			Duration:  durationMs,
			Timestamp: data.Timestamp,
		})
		if len(s.slowRequests) > 100 {
			s.slowRequests = s.slowRequests[1:]
		}
	}

	if data.StatusCode >= 400 {
		s.errors = append(s.errors, models.RequestError{
			Endpoint:   endpointKey,
			StatusCode: data.StatusCode,
			Timestamp:  data.Timestamp,
		})
		if len(s.errors) > 100 {
			s.errors = s.errors[1:]
		}
	}
}

// GetMetrics arma la respuesta completa de métricas
func (s *monitoringService) GetMetrics(ctx context.Context) *models.MonitoringResponse {
	cola := models.ConteoPendientes{}
	if conteo, err := s.aprobaciones.Conteo(ctx); err == nil {
		cola = *conteo
	} else {
		s.logger.Warn("Error obteniendo conteo de pendientes", zap.Error(err))
	}

	return &models.MonitoringResponse{
		Requests:  s.requestMetrics(),
		Cola:      cola,
		Cache:     s.cacheMetrics(),
		Database:  s.databaseMetrics(),
		Redis:     s.redisMetrics(ctx),
		System:    s.systemMetrics(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *monitoringService) requestMetrics() models.RequestMetrics {
	s.requestsMutex.RLock()
	defer s.requestsMutex.RUnlock()

	byEndpoint := make(map[string]models.EndpointMetrics, len(s.requests))
	for key, metrics := range s.requests {
		byEndpoint[key] = *metrics
	}

	return models.RequestMetrics{
		TotalRequests: s.totalRequests,
		ByEndpoint:    byEndpoint,
		SlowRequests:  append([]models.SlowRequest(nil), s.slowRequests...),
		Errors:        append([]models.RequestError(nil), s.errors...),
	}
}

func (s *monitoringService) cacheMetrics() models.CacheMetrics {
	stats := s.productoCache.GetStats()

	var hitRate float64
	if stats.TotalRequests > 0 {
		hitRate = float64(stats.Hits) / float64(stats.TotalRequests)
	}

	return models.CacheMetrics{
		Hits:              stats.Hits,
		Misses:            stats.Misses,
		TotalRequests:     stats.TotalRequests,
		L1Keys:            stats.L1Keys,
		HitRatePercentage: fmt.Sprintf("%.2f%%", hitRate*100),
	}
}

func (s *monitoringService) databaseMetrics() models.DatabaseMetrics {
	stats := s.dbPool.Stats()
	return models.DatabaseMetrics{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		Status:          "online",
	}
}

func (s *monitoringService) redisMetrics(ctx context.Context) models.RedisMetrics {
	_, err := s.redisClient.Ping(ctx).Result()
	connected := err == nil

	var keys int
	if connected {
		if dbSize, err := s.redisClient.DBSize(ctx).Result(); err == nil {
			keys = int(dbSize)
		}
	}

	status := "offline"
	if connected {
		status = "online"
	}

	return models.RedisMetrics{
		Connected: connected,
		Keys:      keys,
		Status:    status,
	}
}

func (s *monitoringService) systemMetrics() models.SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return models.SystemMetrics{
		MemoryMB:    fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024),
		Goroutines:  runtime.NumGoroutine(),
		UptimeHours: time.Since(s.startTime).Hours(),
		GoVersion:   runtime.Version(),
	}
}
