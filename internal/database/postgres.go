package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresDB envuelve el pool de conexiones. Los repositories preparan sus
// statements contra este pool al arrancar.
type PostgresDB struct {
	DB *sql.DB
}

// NewPostgresDB abre el pool y verifica la conexión antes de devolverlo.
// El servicio no parte si la base no responde: todos los flujos de despacho
// y pago dependen de ella.
func NewPostgresDB(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration, logger *zap.Logger) (*PostgresDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error abriendo conexión a PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	// Las transacciones de commit son cortas; una conexión ociosa más de
	// un minuto no vale la pena mantenerla
	db.SetConnMaxIdleTime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error verificando conexión a PostgreSQL: %w", err)
	}

	logger.Info("✅ Conexión a PostgreSQL establecida",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime),
	)

	return &PostgresDB{DB: db}, nil
}

func (p *PostgresDB) Close() error {
	return p.DB.Close()
}

func (p *PostgresDB) Ping() error {
	return p.DB.Ping()
}

// GetStats retorna estadísticas del pool para el endpoint de monitoreo
func (p *PostgresDB) GetStats() sql.DBStats {
	return p.DB.Stats()
}
