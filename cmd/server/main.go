package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagomatic-service/internal/cache"
	"pagomatic-service/internal/config"
	"pagomatic-service/internal/database"
	"pagomatic-service/internal/formatter"
	"pagomatic-service/internal/handlers"
	"pagomatic-service/internal/middleware"
	"pagomatic-service/internal/repository"
	"pagomatic-service/internal/routes"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := buildLogger(cfg.Logging.Level)
	defer logger.Sync()

	logger.Info("🚀 Iniciando Pagomatic Service")

	postgresDB, err := database.NewPostgresDB(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		logger.Fatal("Error conectando a PostgreSQL", zap.Error(err))
	}
	defer postgresDB.Close()

	redisDB, err := database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("Error conectando a Redis", zap.Error(err))
	}
	defer redisDB.Close()

	// Repositories
	tiendaRepo, err := repository.NewTiendaRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Error creando tienda repository", zap.Error(err))
	}
	productoRepo, err := repository.NewProductoRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Error creando producto repository", zap.Error(err))
	}
	despachoRepo, err := repository.NewDespachoRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Error creando despacho repository", zap.Error(err))
	}
	facturaRepo, err := repository.NewFacturaRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Error creando factura repository", zap.Error(err))
	}
	pagoRepo := repository.NewPagoRepository(postgresDB.DB)
	ajustesRepo := repository.NewAjustesRepository(postgresDB.DB)
	auditoriaRepo := repository.NewAuditoriaRepository(postgresDB.DB)

	// Cache e impresión
	productoCache := cache.NewProductoCache(redisDB.Client, 500, 10*time.Minute, logger)
	impresora := formatter.NewImpresoraLogger(logger)

	// Services
	ajustesService := services.NewAjustesService(ajustesRepo, auditoriaRepo, logger)
	despachoService := services.NewDespachoService(
		despachoRepo, tiendaRepo, productoRepo, ajustesService, productoCache, impresora, logger)
	aprobacionService := services.NewAprobacionService(
		despachoRepo, pagoRepo, facturaRepo, tiendaRepo, productoCache, impresora, logger)
	pagoService := services.NewPagoService(pagoRepo, tiendaRepo, ajustesService, logger)
	facturaService := services.NewFacturaService(
		facturaRepo, productoRepo, ajustesService, productoCache, logger)
	monitoringService := services.NewMonitoringService(
		logger, redisDB.Client, postgresDB.DB, productoCache, aprobacionService)

	// Handlers
	despachoHandler := handlers.NewDespachoHandler(despachoService, logger)
	aprobacionHandler := handlers.NewAprobacionHandler(aprobacionService, logger)
	pagoHandler := handlers.NewPagoHandler(pagoService, logger)
	facturaHandler := handlers.NewFacturaHandler(facturaService, logger)
	catalogoHandler := handlers.NewCatalogoHandler(tiendaRepo, productoRepo, auditoriaRepo, ajustesService, logger)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService, logger)
	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware(monitoringService))

	routes.SetupRoutes(
		router,
		cfg.JWT.Secret,
		despachoHandler,
		aprobacionHandler,
		pagoHandler,
		facturaHandler,
		catalogoHandler,
		monitoringHandler,
		healthChecker,
		logger,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("✅ Servidor escuchando", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error en el servidor HTTP", zap.Error(err))
		}
	}()

	// Apagado ordenado: se drenan los requests en curso antes de cerrar
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Apagando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error en el apagado del servidor", zap.Error(err))
	}

	logger.Info("Servidor detenido")
}

func buildLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.EncoderConfig.TimeKey = "timestamp"

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
