package handlers

import (
	"errors"
	"net/http"

	"pagomatic-service/internal/repository"
	"pagomatic-service/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError traduce los errores centinela del dominio a códigos HTTP.
// Todo lo no reconocido es un 500 genérico sin filtrar detalles internos.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTiendaNoEncontrada),
		errors.Is(err, services.ErrProductoNoEncontrado),
		errors.Is(err, repository.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "❌ Recurso no encontrado",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrCarritoVacio),
		errors.Is(err, services.ErrMontoInvalido),
		errors.Is(err, services.ErrCantidadInvalida),
		errors.Is(err, services.ErrMotivoInvalido),
		errors.Is(err, services.ErrTipoEntidadInvalido),
		errors.Is(err, services.ErrProveedorInvalido):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
	case errors.Is(err, repository.ErrNoPendiente),
		errors.Is(err, repository.ErrNoAnulable),
		errors.Is(err, repository.ErrDevolucionExcedida),
		errors.Is(err, repository.ErrSobrepago),
		errors.Is(err, repository.ErrStockInsuficiente):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "❌ La operación no es válida en el estado actual",
			"error":   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error interno del servidor",
		})
	}
}

func respondBadRequest(c *gin.Context, mensaje string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": mensaje,
		"error":   err.Error(),
	})
}
