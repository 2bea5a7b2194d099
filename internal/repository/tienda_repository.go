package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"
)

// TiendaRepository define la interfaz para operaciones de tiendas.
// DeudaTotal no se escribe desde aquí: solo las transacciones de despacho,
// abono y anulación pueden moverla.
type TiendaRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tienda, error)
	List(ctx context.Context) ([]*models.Tienda, error)
	Crear(ctx context.Context, tienda *models.Tienda) error
	ActualizarConfig(ctx context.Context, tienda *models.Tienda) error
}

type tiendaRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewTiendaRepository crea una nueva instancia del repository
func NewTiendaRepository(db *sql.DB) (TiendaRepository, error) {
	repo := &tiendaRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

func (r *tiendaRepository) prepareStatements() error {
	statements := map[string]string{
		"get_tienda": `
			SELECT id, nombre, ubicacion, deuda_total, limite_credito,
				   plazo_pago_dias, activa, created_at, updated_at
			FROM tiendas
			WHERE id = $1
		`,
		"list_tiendas": `
			SELECT id, nombre, ubicacion, deuda_total, limite_credito,
				   plazo_pago_dias, activa, created_at, updated_at
			FROM tiendas
			ORDER BY nombre
		`,
		"create_tienda": `
			INSERT INTO tiendas (nombre, ubicacion, deuda_total, limite_credito, plazo_pago_dias, activa)
			VALUES ($1, $2, 0, $3, $4, $5)
			RETURNING id, deuda_total, created_at, updated_at
		`,
		"update_config": `
			UPDATE tiendas
			SET nombre = $1, ubicacion = $2, limite_credito = $3,
				plazo_pago_dias = $4, activa = $5, updated_at = NOW()
			WHERE id = $6
		`,
	}

	for name, query := range statements {
		stmt, err := r.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		r.stmts[name] = stmt
	}

	return nil
}

// GetByID obtiene una tienda por su ID
func (r *tiendaRepository) GetByID(ctx context.Context, id int) (*models.Tienda, error) {
	var t models.Tienda
	err := r.stmts["get_tienda"].QueryRowContext(ctx, id).Scan(
		&t.ID, &t.Nombre, &t.Ubicacion, &t.DeudaTotal, &t.LimiteCredito,
		&t.PlazoPagoDias, &t.Activa, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tienda: %w", err)
	}

	return &t, nil
}

// List obtiene todas las tiendas
func (r *tiendaRepository) List(ctx context.Context) ([]*models.Tienda, error) {
	rows, err := r.stmts["list_tiendas"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiendas: %w", err)
	}
	defer rows.Close()

	var tiendas []*models.Tienda
	for rows.Next() {
		var t models.Tienda
		err := rows.Scan(
			&t.ID, &t.Nombre, &t.Ubicacion, &t.DeudaTotal, &t.LimiteCredito,
			&t.PlazoPagoDias, &t.Activa, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tienda: %w", err)
		}
		tiendas = append(tiendas, &t)
	}

	return tiendas, rows.Err()
}

// Crear crea una nueva tienda con deuda en cero
func (r *tiendaRepository) Crear(ctx context.Context, tienda *models.Tienda) error {
	err := r.stmts["create_tienda"].QueryRowContext(ctx,
		tienda.Nombre, tienda.Ubicacion, tienda.LimiteCredito, tienda.PlazoPagoDias, tienda.Activa,
	).Scan(&tienda.ID, &tienda.DeudaTotal, &tienda.CreatedAt, &tienda.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tienda: %w", err)
	}

	return nil
}

// ActualizarConfig actualiza la configuración de la tienda (no la deuda)
func (r *tiendaRepository) ActualizarConfig(ctx context.Context, tienda *models.Tienda) error {
	result, err := r.stmts["update_config"].ExecContext(ctx,
		tienda.Nombre, tienda.Ubicacion, tienda.LimiteCredito,
		tienda.PlazoPagoDias, tienda.Activa, tienda.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tienda: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNoEncontrado
	}

	return nil
}
