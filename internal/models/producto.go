package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto representa la tabla productos. Stock es la cantidad en bodega
// central; nunca puede quedar negativo después de un commit.
type Producto struct {
	ID               int             `json:"id" db:"id"`
	Codigo           string          `json:"codigo" db:"codigo"`
	Nombre           string          `json:"nombre" db:"nombre"`
	Stock            int             `json:"stock" db:"stock"`
	PrecioSuministro decimal.Decimal `json:"precio_suministro" db:"precio_suministro"`
	CostoCompra      decimal.Decimal `json:"costo_compra" db:"costo_compra"`
	Impuesto         decimal.Decimal `json:"impuesto" db:"impuesto"`
	Flete            decimal.Decimal `json:"flete" db:"flete"`
	PrecioDetalle    decimal.Decimal `json:"precio_detalle" db:"precio_detalle"`
	Activo           bool            `json:"activo" db:"activo"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// CostoLanded retorna el costo puesto en bodega (compra + impuesto + flete)
func (p *Producto) CostoLanded() decimal.Decimal {
	return p.CostoCompra.Add(p.Impuesto).Add(p.Flete)
}
