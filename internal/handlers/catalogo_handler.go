package handlers

import (
	"net/http"
	"strconv"

	"pagomatic-service/internal/middleware"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CatalogoHandler maneja tiendas, productos, ajustes y auditoría
type CatalogoHandler struct {
	tiendaRepo     repository.TiendaRepository
	productoRepo   repository.ProductoRepository
	auditoriaRepo  repository.AuditoriaRepository
	ajustesService services.AjustesService
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewCatalogoHandler crea una nueva instancia del handler
func NewCatalogoHandler(
	tiendaRepo repository.TiendaRepository,
	productoRepo repository.ProductoRepository,
	auditoriaRepo repository.AuditoriaRepository,
	ajustesService services.AjustesService,
	logger *zap.Logger,
) *CatalogoHandler {
	return &CatalogoHandler{
		tiendaRepo:     tiendaRepo,
		productoRepo:   productoRepo,
		auditoriaRepo:  auditoriaRepo,
		ajustesService: ajustesService,
		validator:      validator.New(),
		logger:         logger,
	}
}

// ListTiendas maneja GET /tiendas
func (h *CatalogoHandler) ListTiendas(c *gin.Context) {
	tiendas, err := h.tiendaRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("❌ Error listando tiendas", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tiendas, "total": len(tiendas)})
}

// GetTienda maneja GET /tiendas/:id
func (h *CatalogoHandler) GetTienda(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de tienda inválido", err)
		return
	}

	tienda, err := h.tiendaRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if tienda == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "❌ Tienda no encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tienda})
}

// CrearTienda maneja POST /tiendas
func (h *CatalogoHandler) CrearTienda(c *gin.Context) {
	var tienda models.Tienda
	if err := c.ShouldBindJSON(&tienda); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	if tienda.Nombre == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "❌ El nombre es obligatorio"})
		return
	}

	if err := h.tiendaRepo.Crear(c.Request.Context(), &tienda); err != nil {
		h.logger.Error("❌ Error creando tienda", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "✅ Tienda creada", "data": tienda})
}

// ActualizarTienda maneja PUT /tiendas/:id (límite de crédito, plazo, activa)
func (h *CatalogoHandler) ActualizarTienda(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "❌ ID de tienda inválido", err)
		return
	}

	var tienda models.Tienda
	if err := c.ShouldBindJSON(&tienda); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	tienda.ID = id

	if err := h.tiendaRepo.ActualizarConfig(c.Request.Context(), &tienda); err != nil {
		h.logger.Error("❌ Error actualizando tienda", zap.Int("id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Tienda actualizada"})
}

// ListProductos maneja GET /productos
func (h *CatalogoHandler) ListProductos(c *gin.Context) {
	productos, err := h.productoRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("❌ Error listando productos", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": productos, "total": len(productos)})
}

// GetProducto maneja GET /productos/:codigo
func (h *CatalogoHandler) GetProducto(c *gin.Context) {
	producto, err := h.productoRepo.GetByCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	if producto == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "❌ Producto no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": producto})
}

// GetAjustes maneja GET /ajustes
func (h *CatalogoHandler) GetAjustes(c *gin.Context) {
	ajustes, err := h.ajustesService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ajustes})
}

// ActualizarAjustes maneja PUT /ajustes (interruptores de aprobación)
func (h *CatalogoHandler) ActualizarAjustes(c *gin.Context) {
	var req models.ActualizarAjustesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "❌ Error en el formato de datos", err)
		return
	}
	req.Usuario = middleware.UsuarioActual(c)

	ajustes, err := h.ajustesService.Actualizar(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("❌ Error actualizando ajustes", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Ajustes actualizados", "data": ajustes})
}

// ListAuditoria maneja GET /auditoria
func (h *CatalogoHandler) ListAuditoria(c *gin.Context) {
	filter := &models.AuditoriaFilter{Limit: 100}

	if usuario := c.Query("usuario"); usuario != "" {
		filter.Usuario = &usuario
	}
	if entidad := c.Query("entidad"); entidad != "" {
		filter.Entidad = &entidad
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	entradas, err := h.auditoriaRepo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("❌ Error listando auditoría", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": entradas, "total": len(entradas)})
}
