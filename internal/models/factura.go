package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoFactura se deriva siempre de MontoPagado vs MontoTotal
type EstadoFactura string

const (
	FacturaPendiente EstadoFactura = "pendiente"
	FacturaParcial   EstadoFactura = "parcial"
	FacturaPagada    EstadoFactura = "pagada"
)

// DerivarEstadoFactura calcula el estado a partir de los montos.
// Invariante: monto_pagado ≤ monto_total.
func DerivarEstadoFactura(montoPagado, montoTotal decimal.Decimal) EstadoFactura {
	switch {
	case montoPagado.GreaterThanOrEqual(montoTotal):
		return FacturaPagada
	case montoPagado.IsPositive():
		return FacturaParcial
	default:
		return FacturaPendiente
	}
}

// Factura representa una factura de proveedor (compra de mercadería).
// Al comprometerse ingresa el stock de sus líneas a bodega.
type Factura struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	IDProveedor      int              `json:"id_proveedor" db:"id_proveedor"`
	NumeroFactura    string           `json:"numero_factura" db:"numero_factura"`
	Items            []FacturaItem    `json:"items"`
	MontoTotal       decimal.Decimal  `json:"monto_total" db:"monto_total"`
	MontoPagado      decimal.Decimal  `json:"monto_pagado" db:"monto_pagado"`
	Estado           EstadoFactura    `json:"estado" db:"estado"`
	EstadoAprobacion EstadoAprobacion `json:"estado_aprobacion" db:"estado_aprobacion"`
	AutorizadoPor    string           `json:"autorizado_por,omitempty" db:"autorizado_por"`
	MotivoRechazo    string           `json:"motivo_rechazo,omitempty" db:"motivo_rechazo"`
	FechaVencimiento time.Time        `json:"fecha_vencimiento" db:"fecha_vencimiento"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// SaldoPendiente retorna lo que falta por pagar de la factura
func (f *Factura) SaldoPendiente() decimal.Decimal {
	return f.MontoTotal.Sub(f.MontoPagado)
}

// FacturaItem es una línea de compra a proveedor
type FacturaItem struct {
	ID             int             `json:"id" db:"id"`
	IDFactura      uuid.UUID       `json:"id_factura" db:"id_factura"`
	CodigoProducto string          `json:"codigo_producto" db:"codigo_producto"`
	Cantidad       int             `json:"cantidad" db:"cantidad"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario" db:"costo_unitario"`
}

// Subtotal retorna cantidad × costo unitario
func (i *FacturaItem) Subtotal() decimal.Decimal {
	return i.CostoUnitario.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}
