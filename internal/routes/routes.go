package routes

import (
	"pagomatic-service/internal/handlers"
	"pagomatic-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	despachoHandler *handlers.DespachoHandler,
	aprobacionHandler *handlers.AprobacionHandler,
	pagoHandler *handlers.PagoHandler,
	facturaHandler *handlers.FacturaHandler,
	catalogoHandler *handlers.CatalogoHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthChecker *middleware.HealthChecker,
	logger *zap.Logger,
) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtSecret, logger))
	{
		// Despachos: el flujo central
		despachos := v1.Group("/despachos")
		{
			despachos.POST("", despachoHandler.Registrar)
			despachos.GET("/:id", despachoHandler.GetByID)
			despachos.POST("/:id/anular", despachoHandler.Anular)
			despachos.POST("/:id/devolucion", despachoHandler.DevolucionParcial)
		}

		// Cola de aprobaciones: solo administradores
		aprobaciones := v1.Group("/aprobaciones")
		aprobaciones.Use(middleware.RequireAdmin())
		{
			aprobaciones.GET("", aprobacionHandler.ListarPendientes)
			aprobaciones.POST("/:tipo/:id/aprobar", aprobacionHandler.Aprobar)
			aprobaciones.POST("/:tipo/:id/rechazar", aprobacionHandler.Rechazar)
		}

		// Pagos a proveedor y abonos de tienda
		pagos := v1.Group("/pagos-proveedor")
		{
			pagos.POST("", pagoHandler.RegistrarPago)
			pagos.GET("/:id", pagoHandler.GetPago)
			pagos.POST("/:id/anular", pagoHandler.AnularPago)
		}
		abonos := v1.Group("/abonos")
		{
			abonos.POST("", pagoHandler.RegistrarAbono)
			abonos.GET("/:id", pagoHandler.GetAbono)
			abonos.POST("/:id/anular", pagoHandler.AnularAbono)
		}

		// Facturas de proveedor
		facturas := v1.Group("/facturas")
		{
			facturas.POST("", facturaHandler.Registrar)
			facturas.GET("/:id", facturaHandler.GetByID)
		}

		// Catálogo
		tiendas := v1.Group("/tiendas")
		{
			tiendas.GET("", catalogoHandler.ListTiendas)
			tiendas.GET("/:id", catalogoHandler.GetTienda)
			tiendas.POST("", catalogoHandler.CrearTienda)
			tiendas.PUT("/:id", catalogoHandler.ActualizarTienda)
			tiendas.GET("/:id/despachos", despachoHandler.ListByTienda)
		}
		productos := v1.Group("/productos")
		{
			productos.GET("", catalogoHandler.ListProductos)
			productos.GET("/:codigo", catalogoHandler.GetProducto)
		}
		proveedores := v1.Group("/proveedores")
		{
			proveedores.GET("/:id/facturas", facturaHandler.ListByProveedor)
		}

		// Ajustes y auditoría: solo administradores
		admin := v1.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/ajustes", catalogoHandler.GetAjustes)
			admin.PUT("/ajustes", catalogoHandler.ActualizarAjustes)
			admin.GET("/auditoria", catalogoHandler.ListAuditoria)
		}

		// Monitoring
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/metrics", monitoringHandler.GetMetrics)
		}
	}

	// El feed del Mando de Control va fuera del grupo autenticado: el
	// upgrade de WebSocket no lleva header Authorization desde el navegador
	router.GET("/ws/aprobaciones", aprobacionHandler.WebSocketConteo)

	// Health checks en raíz
	router.GET("/health", healthChecker.HealthCheck)
	router.GET("/health/live", monitoringHandler.HealthCheck)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Pagomatic Service API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health": "/health",
				"api":    "/api/v1",
				"despachos": gin.H{
					"registrar":  "POST /api/v1/despachos",
					"anular":     "POST /api/v1/despachos/:id/anular",
					"devolucion": "POST /api/v1/despachos/:id/devolucion",
				},
				"aprobaciones": gin.H{
					"pendientes": "GET /api/v1/aprobaciones",
					"aprobar":    "POST /api/v1/aprobaciones/:tipo/:id/aprobar",
					"rechazar":   "POST /api/v1/aprobaciones/:tipo/:id/rechazar",
					"feed":       "GET /ws/aprobaciones",
				},
			},
		})
	})
}
