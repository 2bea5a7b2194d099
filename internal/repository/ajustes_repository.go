package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"
)

// AjustesRepository define la interfaz para la fila única de ajustes globales
type AjustesRepository interface {
	Get(ctx context.Context) (*models.Ajustes, error)
	Actualizar(ctx context.Context, ajustes *models.Ajustes) error
}

type ajustesRepository struct {
	db *sql.DB
}

// NewAjustesRepository crea una nueva instancia del repository
func NewAjustesRepository(db *sql.DB) AjustesRepository {
	return &ajustesRepository{db: db}
}

// Get lee la fila de ajustes. Si no existe todavía, retorna los valores por
// defecto (ninguna aprobación requerida).
func (r *ajustesRepository) Get(ctx context.Context) (*models.Ajustes, error) {
	var a models.Ajustes
	err := r.db.QueryRowContext(ctx, `
		SELECT requiere_aprobacion_despacho, requiere_aprobacion_pago,
			   requiere_aprobacion_factura, updated_at, updated_by
		FROM ajustes
		WHERE id = 1
	`).Scan(
		&a.RequiereAprobacionDespacho, &a.RequiereAprobacionPago,
		&a.RequiereAprobacionFactura, &a.UpdatedAt, &a.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return &models.Ajustes{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ajustes: %w", err)
	}

	return &a, nil
}

// Actualizar escribe los interruptores de aprobación (upsert sobre la fila
// única)
func (r *ajustesRepository) Actualizar(ctx context.Context, ajustes *models.Ajustes) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ajustes (id, requiere_aprobacion_despacho, requiere_aprobacion_pago,
							 requiere_aprobacion_factura, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			requiere_aprobacion_despacho = EXCLUDED.requiere_aprobacion_despacho,
			requiere_aprobacion_pago = EXCLUDED.requiere_aprobacion_pago,
			requiere_aprobacion_factura = EXCLUDED.requiere_aprobacion_factura,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
	`,
		ajustes.RequiereAprobacionDespacho, ajustes.RequiereAprobacionPago,
		ajustes.RequiereAprobacionFactura, ajustes.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update ajustes: %w", err)
	}

	return nil
}
