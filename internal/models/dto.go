package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===== REQUEST DTOs =====

// ItemCarrito representa una línea del carrito de despacho.
// El precio de suministro se resuelve desde el producto al momento del
// registro, no lo decide el cliente.
type ItemCarrito struct {
	CodigoProducto string `json:"codigo_producto" validate:"required"`
	Cantidad       int    `json:"cantidad" validate:"required,gt=0"`
}

// RegistrarDespachoRequest DTO para registrar un despacho a tienda
type RegistrarDespachoRequest struct {
	IDTienda int           `json:"id_tienda" validate:"required,gt=0"`
	Folio    int           `json:"folio" validate:"required,gt=0"`
	Items    []ItemCarrito `json:"items" validate:"required,min=1,dive"`
	Chofer   string        `json:"chofer"`
	Patente  string        `json:"patente"`
	Usuario  string        `json:"-"` // Se obtiene del contexto de autenticación
}

// AnularDespachoRequest DTO para anular un despacho
type AnularDespachoRequest struct {
	RestaurarStock bool   `json:"restaurar_stock"`
	Usuario        string `json:"-"`
}

// DevolucionParcialRequest DTO para devolución parcial de una línea
type DevolucionParcialRequest struct {
	CodigoProducto string           `json:"codigo_producto" validate:"required"`
	Cantidad       int              `json:"cantidad" validate:"required,gt=0"`
	Motivo         MotivoDevolucion `json:"motivo" validate:"required,oneof=danado vencido perdido buen_estado"`
	Usuario        string           `json:"-"`
}

// RegistrarPagoProveedorRequest DTO para pago a proveedor
type RegistrarPagoProveedorRequest struct {
	IDProveedor int             `json:"id_proveedor" validate:"required,gt=0"`
	IDFactura   *uuid.UUID      `json:"id_factura,omitempty"`
	Monto       decimal.Decimal `json:"monto" validate:"required"`
	Metodo      string          `json:"metodo" validate:"required"`
	Referencia  string          `json:"referencia"`
	Usuario     string          `json:"-"`
}

// RegistrarAbonoRequest DTO para abono de tienda
type RegistrarAbonoRequest struct {
	IDTienda   int             `json:"id_tienda" validate:"required,gt=0"`
	IDDespacho *uuid.UUID      `json:"id_despacho,omitempty"`
	Monto      decimal.Decimal `json:"monto" validate:"required"`
	Metodo     string          `json:"metodo" validate:"required"`
	Referencia string          `json:"referencia"`
	Usuario    string          `json:"-"`
}

// ItemFacturaRequest línea de una factura de proveedor
type ItemFacturaRequest struct {
	CodigoProducto string          `json:"codigo_producto" validate:"required"`
	Cantidad       int             `json:"cantidad" validate:"required,gt=0"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario" validate:"required"`
}

// RegistrarFacturaRequest DTO para factura de proveedor
type RegistrarFacturaRequest struct {
	IDProveedor   int                  `json:"id_proveedor" validate:"required,gt=0"`
	NumeroFactura string               `json:"numero_factura" validate:"required"`
	Items         []ItemFacturaRequest `json:"items" validate:"required,min=1,dive"`
	PlazoPagoDias int                  `json:"plazo_pago_dias" validate:"gte=0"`
	Usuario       string               `json:"-"`
}

// RechazarRequest DTO para rechazar un documento pendiente
type RechazarRequest struct {
	Motivo  string `json:"motivo" validate:"required"`
	Usuario string `json:"-"`
}

// ActualizarAjustesRequest DTO para los interruptores de aprobación
type ActualizarAjustesRequest struct {
	RequiereAprobacionDespacho bool   `json:"requiere_aprobacion_despacho"`
	RequiereAprobacionPago     bool   `json:"requiere_aprobacion_pago"`
	RequiereAprobacionFactura  bool   `json:"requiere_aprobacion_factura"`
	Usuario                    string `json:"-"`
}

// ===== RESULTADOS =====

// EstadoResultado discrimina el desenlace de un registro de documento
type EstadoResultado string

const (
	ResultadoComprometido EstadoResultado = "comprometido"
	ResultadoPendiente    EstadoResultado = "pendiente"
	ResultadoBloqueado    EstadoResultado = "bloqueado"
)

// ResultadoDespacho es el resultado discriminado de registrar un despacho.
// Motivo solo aplica al estado bloqueado; ID y Folio solo cuando el
// documento fue persistido.
type ResultadoDespacho struct {
	Estado           EstadoResultado `json:"estado"`
	Motivo           MotivoBloqueo   `json:"motivo,omitempty"`
	ID               uuid.UUID       `json:"id,omitempty"`
	Folio            int             `json:"folio,omitempty"`
	MontoTotal       decimal.Decimal `json:"monto_total,omitempty"`
	FechaVencimiento time.Time       `json:"fecha_vencimiento,omitempty"`
}

// Bloqueado indica si el despacho fue rechazado por el guardián
func (r *ResultadoDespacho) Bloqueado() bool {
	return r.Estado == ResultadoBloqueado
}

// ResultadoDocumento es el resultado discriminado de pagos, abonos y
// facturas: o quedó comprometido o quedó pendiente de aprobación.
type ResultadoDocumento struct {
	Estado EstadoResultado `json:"estado"`
	ID     uuid.UUID       `json:"id"`
}

// ===== COLA DE APROBACIONES =====

// ColaPendientes agrupa todos los documentos pendientes por tipo
type ColaPendientes struct {
	Despachos       []*Despacho      `json:"despachos"`
	PagosProveedor  []*PagoProveedor `json:"pagos_proveedor"`
	AbonosTienda    []*AbonoTienda   `json:"abonos_tienda"`
	Facturas        []*Factura       `json:"facturas"`
	TotalPendientes int              `json:"total_pendientes"`
}

// ConteoPendientes resumen liviano para el feed en vivo del Mando de Control
type ConteoPendientes struct {
	Despachos      int    `json:"despachos"`
	PagosProveedor int    `json:"pagos_proveedor"`
	AbonosTienda   int    `json:"abonos_tienda"`
	Facturas       int    `json:"facturas"`
	Total          int    `json:"total"`
	Timestamp      string `json:"timestamp"`
}
