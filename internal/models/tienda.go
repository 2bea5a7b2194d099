package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tienda representa la tabla tiendas. DeudaTotal es el saldo corriente de la
// tienda con la distribuidora; solo los commits de despacho, abono y
// anulación pueden modificarlo.
type Tienda struct {
	ID            int             `json:"id" db:"id"`
	Nombre        string          `json:"nombre" db:"nombre"`
	Ubicacion     string          `json:"ubicacion" db:"ubicacion"`
	DeudaTotal    decimal.Decimal `json:"deuda_total" db:"deuda_total"`
	LimiteCredito decimal.Decimal `json:"limite_credito" db:"limite_credito"`
	PlazoPagoDias int             `json:"plazo_pago_dias" db:"plazo_pago_dias"`
	Activa        bool            `json:"activa" db:"activa"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PlazoPagoDiasDefault se usa cuando la tienda no tiene plazo configurado
const PlazoPagoDiasDefault = 15

// PlazoPago retorna el plazo de pago efectivo de la tienda
func (t *Tienda) PlazoPago() int {
	if t.PlazoPagoDias <= 0 {
		return PlazoPagoDiasDefault
	}
	return t.PlazoPagoDias
}

// TieneLimiteCredito indica si la tienda tiene límite configurado.
// Límite cero o negativo significa crédito sin tope.
func (t *Tienda) TieneLimiteCredito() bool {
	return t.LimiteCredito.IsPositive()
}

// Proveedor representa la tabla proveedores
type Proveedor struct {
	ID        int       `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	RUT       string    `json:"rut" db:"rut"`
	Telefono  string    `json:"telefono" db:"telefono"`
	Activo    bool      `json:"activo" db:"activo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
