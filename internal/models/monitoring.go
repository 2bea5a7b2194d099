package models

import "time"

// RequestData datos de un request HTTP para métricas
type RequestData struct {
	Method     string
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Timestamp  time.Time
}

// EndpointMetrics métricas acumuladas por endpoint
type EndpointMetrics struct {
	Count     int     `json:"count"`
	TotalTime int64   `json:"total_time"`
	AvgTime   float64 `json:"avg_time"`
}

// SlowRequest request que superó el umbral de latencia
type SlowRequest struct {
	Endpoint  string    `json:"endpoint"`
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestError request que terminó en error
type RequestError struct {
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// RequestMetrics resumen de tráfico HTTP
type RequestMetrics struct {
	TotalRequests int                        `json:"total_requests"`
	ByEndpoint    map[string]EndpointMetrics `json:"by_endpoint"`
	SlowRequests  []SlowRequest              `json:"slow_requests"`
	Errors        []RequestError             `json:"errors"`
}

// CacheMetrics métricas del caché de productos
type CacheMetrics struct {
	Hits              int64  `json:"hits"`
	Misses            int64  `json:"misses"`
	TotalRequests     int64  `json:"total_requests"`
	L1Keys            int    `json:"l1_keys"`
	HitRatePercentage string `json:"hit_rate_percentage"`
}

// DatabaseMetrics métricas del pool de conexiones
type DatabaseMetrics struct {
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	Status          string `json:"status"`
}

// RedisMetrics métricas de la conexión Redis
type RedisMetrics struct {
	Connected bool   `json:"connected"`
	Keys      int    `json:"keys"`
	Status    string `json:"status"`
}

// SystemMetrics métricas del proceso
type SystemMetrics struct {
	MemoryMB    string  `json:"memory_mb"`
	Goroutines  int     `json:"goroutines"`
	UptimeHours float64 `json:"uptime_hours"`
	GoVersion   string  `json:"go_version"`
}

// MonitoringResponse respuesta completa del endpoint de métricas
type MonitoringResponse struct {
	Requests  RequestMetrics   `json:"requests"`
	Cola      ConteoPendientes `json:"cola_aprobaciones"`
	Cache     CacheMetrics     `json:"cache"`
	Database  DatabaseMetrics  `json:"database"`
	Redis     RedisMetrics     `json:"redis"`
	System    SystemMetrics    `json:"system"`
	Timestamp string           `json:"timestamp"`
}
