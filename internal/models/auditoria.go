package models

import "time"

// Auditoria representa la tabla auditoria: registro append-only de cada
// operación que cambia estado. Nunca se modifica ni se borra.
type Auditoria struct {
	ID        int       `json:"id" db:"id"`
	Usuario   string    `json:"usuario" db:"usuario"`
	Accion    string    `json:"accion" db:"accion"`
	Entidad   string    `json:"entidad" db:"entidad"`
	IDEntidad string    `json:"id_entidad" db:"id_entidad"`
	Detalles  string    `json:"detalles" db:"detalles"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditoriaFilter filtros para consultas de auditoría
type AuditoriaFilter struct {
	Usuario    *string    `json:"usuario,omitempty"`
	Entidad    *string    `json:"entidad,omitempty"`
	FechaDesde *time.Time `json:"fecha_desde,omitempty"`
	FechaHasta *time.Time `json:"fecha_hasta,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
