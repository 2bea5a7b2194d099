package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"
)

// AuditoriaRepository define la interfaz para el registro de auditoría.
// La tabla es append-only: no hay update ni delete.
type AuditoriaRepository interface {
	Crear(ctx context.Context, entrada *models.Auditoria) error
	List(ctx context.Context, filter *models.AuditoriaFilter) ([]*models.Auditoria, error)
}

type auditoriaRepository struct {
	db *sql.DB
}

// NewAuditoriaRepository crea una nueva instancia del repository
func NewAuditoriaRepository(db *sql.DB) AuditoriaRepository {
	return &auditoriaRepository{db: db}
}

const insertAuditoriaSQL = `
	INSERT INTO auditoria (usuario, accion, entidad, id_entidad, detalles)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
`

// Crear registra una entrada de auditoría fuera de transacción (por ejemplo,
// cambios de ajustes)
func (r *auditoriaRepository) Crear(ctx context.Context, entrada *models.Auditoria) error {
	err := r.db.QueryRowContext(ctx, insertAuditoriaSQL,
		entrada.Usuario, entrada.Accion, entrada.Entidad, entrada.IDEntidad, entrada.Detalles,
	).Scan(&entrada.ID, &entrada.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create auditoria: %w", err)
	}
	return nil
}

// insertAuditoriaTx inserta la entrada dentro de la transacción dueña de la
// mutación, para que la auditoría y el cambio de estado queden juntos o no
// queden.
func insertAuditoriaTx(ctx context.Context, tx *sql.Tx, usuario, accion, entidad, idEntidad, detalles string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO auditoria (usuario, accion, entidad, id_entidad, detalles)
		VALUES ($1, $2, $3, $4, $5)
	`, usuario, accion, entidad, idEntidad, detalles); err != nil {
		return fmt.Errorf("failed to insert auditoria: %w", err)
	}
	return nil
}

// List obtiene entradas de auditoría con filtros
func (r *auditoriaRepository) List(ctx context.Context, filter *models.AuditoriaFilter) ([]*models.Auditoria, error) {
	query := `
		SELECT id, usuario, accion, entidad, id_entidad, detalles, created_at
		FROM auditoria
		WHERE 1=1
	`
	args := []interface{}{}

	if filter != nil {
		if filter.Usuario != nil {
			args = append(args, *filter.Usuario)
			query += fmt.Sprintf(" AND usuario = $%d", len(args))
		}
		if filter.Entidad != nil {
			args = append(args, *filter.Entidad)
			query += fmt.Sprintf(" AND entidad = $%d", len(args))
		}
		if filter.FechaDesde != nil {
			args = append(args, *filter.FechaDesde)
			query += fmt.Sprintf(" AND created_at >= $%d", len(args))
		}
		if filter.FechaHasta != nil {
			args = append(args, *filter.FechaHasta)
			query += fmt.Sprintf(" AND created_at <= $%d", len(args))
		}
	}

	query += " ORDER BY created_at DESC"

	limit := 100
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter != nil && filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auditoria: %w", err)
	}
	defer rows.Close()

	var entradas []*models.Auditoria
	for rows.Next() {
		var e models.Auditoria
		if err := rows.Scan(&e.ID, &e.Usuario, &e.Accion, &e.Entidad, &e.IDEntidad, &e.Detalles, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan auditoria: %w", err)
		}
		entradas = append(entradas, &e)
	}

	return entradas, rows.Err()
}
