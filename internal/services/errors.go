package services

import "errors"

// Errores de validación del lado del llamador. La UI debería prevenirlos,
// pero el flujo los rechaza defensivamente de todos modos.
var (
	ErrCarritoVacio         = errors.New("el carrito está vacío")
	ErrTiendaNoEncontrada   = errors.New("tienda no encontrada")
	ErrProveedorInvalido    = errors.New("proveedor inválido")
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrMontoInvalido        = errors.New("el monto debe ser mayor que cero")
	ErrCantidadInvalida     = errors.New("la cantidad debe ser mayor que cero")
	ErrMotivoInvalido       = errors.New("motivo de devolución inválido")
	ErrTipoEntidadInvalido  = errors.New("tipo de entidad inválido")
)
