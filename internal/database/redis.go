package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisDB envuelve el cliente de Redis que respalda el caché de productos.
// A diferencia de PostgreSQL, Redis es prescindible en runtime: el caché
// degrada a su capa L1 si Redis falla, pero exigimos que responda al
// arranque para detectar configuración rota temprano.
type RedisDB struct {
	Client *redis.Client
}

// NewRedisDB construye el cliente a partir de la URL y verifica la conexión
func NewRedisDB(url, password string, db int, logger *zap.Logger) (*RedisDB, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parseando la URL de Redis: %w", err)
	}

	// Una contraseña explícita tiene prioridad sobre la de la URL
	if password != "" {
		opt.Password = password
	}
	opt.DB = db
	// El caché de productos hace lecturas puntuales; timeouts cortos para
	// que una caída de Redis no frene el flujo de despachos
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error verificando conexión a Redis: %w", err)
	}

	logger.Info("✅ Conexión a Redis establecida",
		zap.String("addr", opt.Addr),
		zap.Int("db", db),
	)

	return &RedisDB{Client: client}, nil
}

func (r *RedisDB) Close() error {
	return r.Client.Close()
}

func (r *RedisDB) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// GetStats retorna la sección stats de INFO para el endpoint de monitoreo
func (r *RedisDB) GetStats(ctx context.Context) (string, error) {
	info := r.Client.Info(ctx, "stats")
	return info.Result()
}
