package handlers

import (
	"net/http"
	"strconv"

	"pagomatic-service/internal/middleware"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DespachoHandler maneja las peticiones HTTP de despachos
type DespachoHandler struct {
	despachoService services.DespachoService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewDespachoHandler crea una nueva instancia del handler
func NewDespachoHandler(despachoService services.DespachoService, logger *zap.Logger) *DespachoHandler {
	return &DespachoHandler{
		despachoService: despachoService,
		validator:       validator.New(),
		logger:          logger,
	}
}

// Registrar maneja POST /despachos. Un resultado bloqueado no es un error
// HTTP: el cliente recibe 200 con estado=bloqueado y el motivo.
func (h *DespachoHandler) Registrar(c *gin.Context) {
	var req models.RegistrarDespachoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ Error binding JSON", zap.Error(err))
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Error("❌ Validation error", zap.Error(err))
		respondBadRequest(c, "❌ Datos de entrada inválidos", err)
		return
	}

	req.Usuario = middleware.UsuarioActual(c)

	resultado, err := h.despachoService.Registrar(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("❌ Error registrando despacho", zap.Error(err))
		respondError(c, err)
		return
	}

	mensaje := "✅ Despacho comprometido"
	switch resultado.Estado {
	case models.ResultadoPendiente:
		mensaje = "⏳ Despacho en cola de aprobación"
	case models.ResultadoBloqueado:
		mensaje = "🚫 Despacho bloqueado por el guardián de crédito"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": mensaje,
		"data":    resultado,
	})
}

// GetByID maneja GET /despachos/:id
func (h *DespachoHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de despacho inválido", err)
		return
	}

	despacho, err := h.despachoService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if despacho == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "❌ Despacho no encontrado",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    despacho,
	})
}

// ListByTienda maneja GET /tiendas/:id/despachos
func (h *DespachoHandler) ListByTienda(c *gin.Context) {
	idTienda, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de tienda inválido", err)
		return
	}

	despachos, err := h.despachoService.ListByTienda(c.Request.Context(), idTienda)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    despachos,
		"total":   len(despachos),
	})
}

// Anular maneja POST /despachos/:id/anular
func (h *DespachoHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de despacho inválido", err)
		return
	}

	var req models.AnularDespachoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	req.Usuario = middleware.UsuarioActual(c)

	if err := h.despachoService.Anular(c.Request.Context(), id, &req); err != nil {
		h.logger.Error("❌ Error anulando despacho", zap.String("id", id.String()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Despacho anulado",
	})
}

// DevolucionParcial maneja POST /despachos/:id/devolucion
func (h *DespachoHandler) DevolucionParcial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de despacho inválido", err)
		return
	}

	var req models.DevolucionParcialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, "❌ Datos de entrada inválidos", err)
		return
	}
	req.Usuario = middleware.UsuarioActual(c)

	if err := h.despachoService.DevolucionParcial(c.Request.Context(), id, &req); err != nil {
		h.logger.Error("❌ Error en devolución parcial", zap.String("id", id.String()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Devolución registrada",
	})
}
