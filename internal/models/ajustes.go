package models

import "time"

// Ajustes son los interruptores globales de aprobación. Los lee la política
// de aprobación al inicio de cada operación; un cambio aplica solo a las
// acciones posteriores, nunca retroactivamente.
type Ajustes struct {
	RequiereAprobacionDespacho bool      `json:"requiere_aprobacion_despacho" db:"requiere_aprobacion_despacho"`
	RequiereAprobacionPago     bool      `json:"requiere_aprobacion_pago" db:"requiere_aprobacion_pago"`
	RequiereAprobacionFactura  bool      `json:"requiere_aprobacion_factura" db:"requiere_aprobacion_factura"`
	UpdatedAt                  time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy                  string    `json:"updated_by" db:"updated_by"`
}
