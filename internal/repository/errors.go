package repository

import "errors"

// Errores de concurrencia y de invariantes. Se detectan dentro de la
// transacción dueña de la mutación; cuando se retornan, ningún cambio
// parcial quedó aplicado.
var (
	// ErrNoPendiente: el documento ya no está en estado pendiente. Cubre la
	// doble aprobación: la segunda llamada no vuelve a aplicar nada.
	ErrNoPendiente = errors.New("el documento no está pendiente de aprobación")

	// ErrStockInsuficiente: algún producto no alcanza para cubrir la cantidad
	// solicitada al momento del commit.
	ErrStockInsuficiente = errors.New("stock insuficiente")

	// ErrSobrepago: el pago excede el saldo pendiente del documento al que
	// está ligado.
	ErrSobrepago = errors.New("el pago excede el saldo pendiente")

	// ErrDevolucionExcedida: la devolución supera la cantidad despachada
	// menos lo ya devuelto para esa línea.
	ErrDevolucionExcedida = errors.New("la devolución excede la cantidad despachada restante")

	// ErrNoAnulable: el documento no está en un estado que permita anularlo.
	ErrNoAnulable = errors.New("el documento no se puede anular en su estado actual")

	// ErrNoEncontrado: la entidad no existe.
	ErrNoEncontrado = errors.New("entidad no encontrada")
)
