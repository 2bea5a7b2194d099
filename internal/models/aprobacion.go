package models

// EstadoAprobacion es el estado explícito del flujo de aprobación de un
// documento. "no_requerida" y "aprobada" son estados distintos: un documento
// comprometido directamente nunca pasó por la cola.
type EstadoAprobacion string

const (
	AprobacionNoRequerida EstadoAprobacion = "no_requerida"
	AprobacionPendiente   EstadoAprobacion = "pendiente"
	AprobacionAprobada    EstadoAprobacion = "aprobada"
	AprobacionRechazada   EstadoAprobacion = "rechazada"
)

// TipoEntidad identifica el tipo de documento en la cola de aprobaciones
type TipoEntidad string

const (
	EntidadDespacho      TipoEntidad = "despacho"
	EntidadPagoProveedor TipoEntidad = "pago_proveedor"
	EntidadAbonoTienda   TipoEntidad = "abono_tienda"
	EntidadFactura       TipoEntidad = "factura"
)

// MotivoBloqueo es el código de rechazo del guardián de crédito.
// Los valores son visibles para el cliente y se mantienen estables.
type MotivoBloqueo string

const (
	BloqueoInactiva      MotivoBloqueo = "inactive"
	BloqueoMorosidad     MotivoBloqueo = "overdue"
	BloqueoLimiteCredito MotivoBloqueo = "credit_limit"
	BloqueoStock         MotivoBloqueo = "stock"
)
