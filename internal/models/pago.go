package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoPago es el estado comercial de un pago o abono
type EstadoPago string

const (
	PagoActivo  EstadoPago = "activo"
	PagoAnulado EstadoPago = "anulado"
)

// PagoProveedor es un pago hacia un proveedor, opcionalmente ligado a una
// factura. La suma de pagos activos ligados a una factura nunca puede
// superar su monto total.
type PagoProveedor struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	IDProveedor      int              `json:"id_proveedor" db:"id_proveedor"`
	IDFactura        *uuid.UUID       `json:"id_factura,omitempty" db:"id_factura"`
	Monto            decimal.Decimal  `json:"monto" db:"monto"`
	Metodo           string           `json:"metodo" db:"metodo"`
	Referencia       string           `json:"referencia" db:"referencia"`
	Estado           EstadoPago       `json:"estado" db:"estado"`
	EstadoAprobacion EstadoAprobacion `json:"estado_aprobacion" db:"estado_aprobacion"`
	AutorizadoPor    string           `json:"autorizado_por,omitempty" db:"autorizado_por"`
	MotivoRechazo    string           `json:"motivo_rechazo,omitempty" db:"motivo_rechazo"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// AbonoTienda es un pago parcial de una tienda que reduce su deuda,
// opcionalmente ligado a un despacho.
type AbonoTienda struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	IDTienda         int              `json:"id_tienda" db:"id_tienda"`
	IDDespacho       *uuid.UUID       `json:"id_despacho,omitempty" db:"id_despacho"`
	Monto            decimal.Decimal  `json:"monto" db:"monto"`
	Metodo           string           `json:"metodo" db:"metodo"`
	Referencia       string           `json:"referencia" db:"referencia"`
	Estado           EstadoPago       `json:"estado" db:"estado"`
	EstadoAprobacion EstadoAprobacion `json:"estado_aprobacion" db:"estado_aprobacion"`
	AutorizadoPor    string           `json:"autorizado_por,omitempty" db:"autorizado_por"`
	MotivoRechazo    string           `json:"motivo_rechazo,omitempty" db:"motivo_rechazo"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}
