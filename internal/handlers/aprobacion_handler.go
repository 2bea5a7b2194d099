package handlers

import (
	"context"
	"net/http"
	"time"

	"pagomatic-service/internal/middleware"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AprobacionHandler maneja las peticiones HTTP de la cola de aprobaciones
type AprobacionHandler struct {
	aprobacionService services.AprobacionService
	validator         *validator.Validate
	logger            *zap.Logger
}

// NewAprobacionHandler crea una nueva instancia del handler
func NewAprobacionHandler(aprobacionService services.AprobacionService, logger *zap.Logger) *AprobacionHandler {
	return &AprobacionHandler{
		aprobacionService: aprobacionService,
		validator:         validator.New(),
		logger:            logger,
	}
}

func parseTipoEntidad(s string) (models.TipoEntidad, bool) {
	switch models.TipoEntidad(s) {
	case models.EntidadDespacho, models.EntidadPagoProveedor,
		models.EntidadAbonoTienda, models.EntidadFactura:
		return models.TipoEntidad(s), true
	}
	return "", false
}

// ListarPendientes maneja GET /aprobaciones
func (h *AprobacionHandler) ListarPendientes(c *gin.Context) {
	cola, err := h.aprobacionService.ListarPendientes(c.Request.Context())
	if err != nil {
		h.logger.Error("❌ Error listando pendientes", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cola,
	})
}

// Aprobar maneja POST /aprobaciones/:tipo/:id/aprobar
func (h *AprobacionHandler) Aprobar(c *gin.Context) {
	tipo, ok := parseTipoEntidad(c.Param("tipo"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Tipo de documento inválido",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de documento inválido", err)
		return
	}

	usuario := middleware.UsuarioActual(c)
	if err := h.aprobacionService.Aprobar(c.Request.Context(), tipo, id, usuario); err != nil {
		h.logger.Error("❌ Error aprobando documento",
			zap.String("tipo", string(tipo)),
			zap.String("id", id.String()),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Documento aprobado y comprometido",
	})
}

// Rechazar maneja POST /aprobaciones/:tipo/:id/rechazar
func (h *AprobacionHandler) Rechazar(c *gin.Context) {
	tipo, ok := parseTipoEntidad(c.Param("tipo"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Tipo de documento inválido",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de documento inválido", err)
		return
	}

	var req models.RechazarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, "❌ El motivo de rechazo es obligatorio", err)
		return
	}

	usuario := middleware.UsuarioActual(c)
	if err := h.aprobacionService.Rechazar(c.Request.Context(), tipo, id, req.Motivo, usuario); err != nil {
		h.logger.Error("❌ Error rechazando documento",
			zap.String("tipo", string(tipo)),
			zap.String("id", id.String()),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Documento rechazado",
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketConteo maneja la conexión WebSocket del Mando de Control: empuja
// el conteo de pendientes cada 5 segundos
func (h *AprobacionHandler) WebSocketConteo(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "websocket_conteo"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Error actualizando a WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	logger.Info("Conexión WebSocket establecida")

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	// Bomba de lectura: el cliente no envía datos, pero sin leer no se
	// procesan los pongs ni los frames de cierre
	cerrado := make(chan struct{})
	go func() {
		defer close(cerrado)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Conteo inicial inmediato, luego cada 5 segundos
	if conteo, err := h.aprobacionService.Conteo(context.Background()); err == nil {
		if err := conn.WriteJSON(conteo); err != nil {
			return
		}
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	pings := time.NewTicker(30 * time.Second)
	defer pings.Stop()

	for {
		select {
		case <-ticker.C:
			conteo, err := h.aprobacionService.Conteo(context.Background())
			if err != nil {
				logger.Error("Error obteniendo conteo", zap.Error(err))
				continue
			}
			if err := conn.WriteJSON(conteo); err != nil {
				logger.Info("Conexión WebSocket cerrada", zap.Error(err))
				return
			}
		case <-pings.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				logger.Info("Conexión WebSocket cerrada", zap.Error(err))
				return
			}
		case <-cerrado:
			logger.Info("Conexión WebSocket cerrada por el cliente")
			return
		case <-c.Request.Context().Done():
			logger.Info("Conexión WebSocket cerrada por contexto")
			return
		}
	}
}
