package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoDespacho es el estado comercial del despacho
type EstadoDespacho string

const (
	DespachoActivo            EstadoDespacho = "activo"
	DespachoDevuelto          EstadoDespacho = "devuelto"
	DespachoDevolucionParcial EstadoDespacho = "devolucion_parcial"
	DespachoAnulado           EstadoDespacho = "anulado"
)

// MotivoDevolucion clasifica una devolución parcial. Solo buen_estado
// restaura stock en bodega; el resto se absorbe como merma.
type MotivoDevolucion string

const (
	DevolucionDanado     MotivoDevolucion = "danado"
	DevolucionVencido    MotivoDevolucion = "vencido"
	DevolucionPerdido    MotivoDevolucion = "perdido"
	DevolucionBuenEstado MotivoDevolucion = "buen_estado"
)

// MotivoDevolucionValido valida el motivo recibido del cliente
func MotivoDevolucionValido(m MotivoDevolucion) bool {
	switch m {
	case DevolucionDanado, DevolucionVencido, DevolucionPerdido, DevolucionBuenEstado:
		return true
	}
	return false
}

// Despacho representa la tabla despachos: una salida de mercadería desde
// bodega central hacia una tienda, que genera deuda de la tienda.
// Un despacho con EstadoAprobacion pendiente existe pero es económicamente
// inerte: no descontó stock ni aumentó deuda todavía.
type Despacho struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Folio            int              `json:"folio" db:"folio"`
	IDTienda         int              `json:"id_tienda" db:"id_tienda"`
	Fecha            time.Time        `json:"fecha" db:"fecha"`
	Items            []DespachoItem   `json:"items"`
	MontoTotal       decimal.Decimal  `json:"monto_total" db:"monto_total"`
	Estado           EstadoDespacho   `json:"estado" db:"estado"`
	EstadoAprobacion EstadoAprobacion `json:"estado_aprobacion" db:"estado_aprobacion"`
	AutorizadoPor    string           `json:"autorizado_por,omitempty" db:"autorizado_por"`
	MotivoRechazo    string           `json:"motivo_rechazo,omitempty" db:"motivo_rechazo"`
	Chofer           string           `json:"chofer,omitempty" db:"chofer"`
	Patente          string           `json:"patente,omitempty" db:"patente"`
	FechaVencimiento time.Time        `json:"fecha_vencimiento" db:"fecha_vencimiento"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// DespachoItem es una línea del despacho. CantidadDevuelta acumula las
// devoluciones parciales; nunca puede superar Cantidad.
type DespachoItem struct {
	ID               int             `json:"id" db:"id"`
	IDDespacho       uuid.UUID       `json:"id_despacho" db:"id_despacho"`
	CodigoProducto   string          `json:"codigo_producto" db:"codigo_producto"`
	Cantidad         int             `json:"cantidad" db:"cantidad"`
	PrecioSuministro decimal.Decimal `json:"precio_suministro" db:"precio_suministro"`
	CantidadDevuelta int             `json:"cantidad_devuelta" db:"cantidad_devuelta"`
}

// Subtotal retorna cantidad × precio de suministro
func (i *DespachoItem) Subtotal() decimal.Decimal {
	return i.PrecioSuministro.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

// Vencido indica si el despacho está fuera de plazo a la fecha dada
func (d *Despacho) Vencido(ahora time.Time) bool {
	return d.Estado == DespachoActivo &&
		d.EstadoAprobacion != AprobacionPendiente &&
		d.FechaVencimiento.Before(ahora)
}

// DeudaRestante es el monto del despacho menos lo ya devuelto
func (d *Despacho) DeudaRestante() decimal.Decimal {
	restante := d.MontoTotal
	for _, item := range d.Items {
		devuelto := item.PrecioSuministro.Mul(decimal.NewFromInt(int64(item.CantidadDevuelta)))
		restante = restante.Sub(devuelto)
	}
	return restante
}
