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

// FacturaHandler maneja las peticiones HTTP de facturas de proveedor
type FacturaHandler struct {
	facturaService services.FacturaService
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewFacturaHandler crea una nueva instancia del handler
func NewFacturaHandler(facturaService services.FacturaService, logger *zap.Logger) *FacturaHandler {
	return &FacturaHandler{
		facturaService: facturaService,
		validator:      validator.New(),
		logger:         logger,
	}
}

// Registrar maneja POST /facturas
func (h *FacturaHandler) Registrar(c *gin.Context) {
	var req models.RegistrarFacturaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondBadRequest(c, "❌ Datos de entrada inválidos", err)
		return
	}
	req.Usuario = middleware.UsuarioActual(c)

	resultado, err := h.facturaService.Registrar(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("❌ Error registrando factura", zap.Error(err))
		respondError(c, err)
		return
	}

	mensaje := "✅ Factura comprometida, mercadería ingresada"
	if resultado.Estado == models.ResultadoPendiente {
		mensaje = "⏳ Factura en cola de aprobación"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": mensaje,
		"data":    resultado,
	})
}

// GetByID maneja GET /facturas/:id
func (h *FacturaHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de factura inválido", err)
		return
	}

	factura, err := h.facturaService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if factura == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "❌ Factura no encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": factura})
}

// ListByProveedor maneja GET /proveedores/:id/facturas
func (h *FacturaHandler) ListByProveedor(c *gin.Context) {
	idProveedor, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de proveedor inválido", err)
		return
	}

	facturas, err := h.facturaService.ListByProveedor(c.Request.Context(), idProveedor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    facturas,
		"total":   len(facturas),
	})
}
