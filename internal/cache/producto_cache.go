package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pagomatic-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheStats estadísticas del caché
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	L1Keys        int
}

// ProductoCache implementa caché multi-nivel para productos: L1 en memoria
// local y L2 en Redis. Se invalida en cada mutación de stock (despachos,
// facturas, devoluciones).
type ProductoCache struct {
	// L1 Cache: Memoria local (más rápido)
	l1Cache map[string]*models.Producto
	l1Mutex sync.RWMutex

	// L2 Cache: Redis (compartido)
	redisClient *redis.Client

	maxL1Size int
	ttl       time.Duration

	logger *zap.Logger

	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewProductoCache crea una nueva instancia del caché
func NewProductoCache(redisClient *redis.Client, maxL1Size int, ttl time.Duration, logger *zap.Logger) *ProductoCache {
	return &ProductoCache{
		l1Cache:     make(map[string]*models.Producto),
		redisClient: redisClient,
		maxL1Size:   maxL1Size,
		ttl:         ttl,
		logger:      logger,
	}
}

func cacheKey(codigo string) string {
	return fmt.Sprintf("producto:%s", codigo)
}

// Get busca un producto por código: primero L1, luego Redis
func (c *ProductoCache) Get(ctx context.Context, codigo string) *models.Producto {
	c.l1Mutex.RLock()
	producto, ok := c.l1Cache[codigo]
	c.l1Mutex.RUnlock()
	if ok {
		c.registrarHit()
		return producto
	}

	data, err := c.redisClient.Get(ctx, cacheKey(codigo)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Error leyendo cache de producto", zap.String("codigo", codigo), zap.Error(err))
		}
		c.registrarMiss()
		return nil
	}

	var p models.Producto
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Cache de producto corrupto, invalidando", zap.String("codigo", codigo), zap.Error(err))
		c.redisClient.Del(ctx, cacheKey(codigo))
		c.registrarMiss()
		return nil
	}

	c.guardarL1(codigo, &p)
	c.registrarHit()
	return &p
}

// Set guarda un producto en ambos niveles
func (c *ProductoCache) Set(ctx context.Context, producto *models.Producto) {
	c.guardarL1(producto.Codigo, producto)

	data, err := json.Marshal(producto)
	if err != nil {
		c.logger.Warn("Error serializando producto para cache", zap.String("codigo", producto.Codigo), zap.Error(err))
		return
	}

	if err := c.redisClient.Set(ctx, cacheKey(producto.Codigo), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Error escribiendo cache de producto", zap.String("codigo", producto.Codigo), zap.Error(err))
	}
}

// Invalidar elimina un producto de ambos niveles. Se llama después de cada
// commit que toca stock o costo.
func (c *ProductoCache) Invalidar(ctx context.Context, codigos ...string) {
	c.l1Mutex.Lock()
	for _, codigo := range codigos {
		delete(c.l1Cache, codigo)
	}
	c.l1Mutex.Unlock()

	keys := make([]string, len(codigos))
	for i, codigo := range codigos {
		keys[i] = cacheKey(codigo)
	}
	if len(keys) > 0 {
		if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("Error invalidando cache de productos", zap.Error(err))
		}
	}
}

func (c *ProductoCache) guardarL1(codigo string, producto *models.Producto) {
	c.l1Mutex.Lock()
	defer c.l1Mutex.Unlock()

	// Si el L1 está lleno se descarta una entrada arbitraria; Redis sigue
	// teniendo la copia
	if len(c.l1Cache) >= c.maxL1Size {
		for k := range c.l1Cache {
			delete(c.l1Cache, k)
			break
		}
	}
	c.l1Cache[codigo] = producto
}

func (c *ProductoCache) registrarHit() {
	c.statsMutex.Lock()
	c.hits++
	c.statsMutex.Unlock()
}

func (c *ProductoCache) registrarMiss() {
	c.statsMutex.Lock()
	c.misses++
	c.statsMutex.Unlock()
}

// GetStats retorna estadísticas del caché
func (c *ProductoCache) GetStats() CacheStats {
	c.statsMutex.RLock()
	hits, misses := c.hits, c.misses
	c.statsMutex.RUnlock()

	c.l1Mutex.RLock()
	l1Keys := len(c.l1Cache)
	c.l1Mutex.RUnlock()

	return CacheStats{
		Hits:          hits,
		Misses:        misses,
		TotalRequests: hits + misses,
		L1Keys:        l1Keys,
	}
}
