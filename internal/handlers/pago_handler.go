package handlers

import (
	"net/http"

	"pagomatic-service/internal/middleware"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PagoHandler maneja las peticiones HTTP de pagos y abonos
type PagoHandler struct {
	pagoService services.PagoService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPagoHandler crea una nueva instancia del handler
func NewPagoHandler(pagoService services.PagoService, logger *zap.Logger) *PagoHandler {
	return &PagoHandler{
		pagoService: pagoService,
		validator:   validator.New(),
		logger:      logger,
	}
}

// RegistrarPago maneja POST /pagos-proveedor
func (h *PagoHandler) RegistrarPago(c *gin.Context) {
	var req models.RegistrarPagoProveedorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, "❌ Datos de entrada inválidos", err)
		return
	}
	req.Usuario = middleware.UsuarioActual(c)

	resultado, err := h.pagoService.RegistrarPagoProveedor(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("❌ Error registrando pago", zap.Error(err))
		respondError(c, err)
		return
	}

	mensaje := "✅ Pago comprometido"
	if resultado.Estado == models.ResultadoPendiente {
		mensaje = "⏳ Pago en cola de aprobación"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": mensaje,
		"data":    resultado,
	})
}

// RegistrarAbono maneja POST /abonos
func (h *PagoHandler) RegistrarAbono(c *gin.Context) {
	var req models.RegistrarAbonoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, "❌ Datos de entrada inválidos", err)
		return
	}
	req.Usuario = middleware.UsuarioActual(c)

	resultado, err := h.pagoService.RegistrarAbono(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("❌ Error registrando abono", zap.Error(err))
		respondError(c, err)
		return
	}

	mensaje := "✅ Abono comprometido"
	if resultado.Estado == models.ResultadoPendiente {
		mensaje = "⏳ Abono en cola de aprobación"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": mensaje,
		"data":    resultado,
	})
}

// GetPago maneja GET /pagos-proveedor/:id
func (h *PagoHandler) GetPago(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de pago inválido", err)
		return
	}

	pago, err := h.pagoService.GetPagoProveedor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if pago == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "❌ Pago no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": pago})
}

// GetAbono maneja GET /abonos/:id
func (h *PagoHandler) GetAbono(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de abono inválido", err)
		return
	}

	abono, err := h.pagoService.GetAbono(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if abono == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "❌ Abono no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": abono})
}

// AnularPago maneja POST /pagos-proveedor/:id/anular
func (h *PagoHandler) AnularPago(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de pago inválido", err)
		return
	}

	if err := h.pagoService.AnularPago(c.Request.Context(), id, middleware.UsuarioActual(c)); err != nil {
		h.logger.Error("❌ Error anulando pago", zap.String("id", id.String()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Pago anulado"})
}

// AnularAbono maneja POST /abonos/:id/anular
func (h *PagoHandler) AnularAbono(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de abono inválido", err)
		return
	}

	if err := h.pagoService.AnularAbono(c.Request.Context(), id, middleware.UsuarioActual(c)); err != nil {
		h.logger.Error("❌ Error anulando abono", zap.String("id", id.String()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Abono anulado"})
}
