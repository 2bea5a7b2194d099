package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"

	"github.com/google/uuid"
)

// FacturaRepository define la interfaz para facturas de proveedor. El commit
// de una factura ingresa la mercadería de sus líneas a bodega y actualiza el
// costo de compra del producto.
type FacturaRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Factura, error)
	ListByProveedor(ctx context.Context, idProveedor int) ([]*models.Factura, error)
	ListPendientes(ctx context.Context) ([]*models.Factura, error)
	CountPendientes(ctx context.Context) (int, error)

	CrearComprometida(ctx context.Context, factura *models.Factura) error
	CrearPendiente(ctx context.Context, factura *models.Factura) error
	AprobarCommit(ctx context.Context, id uuid.UUID, usuario string) (*models.Factura, error)
	Rechazar(ctx context.Context, id uuid.UUID, motivo, usuario string) error
}

type facturaRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewFacturaRepository crea una nueva instancia del repository
func NewFacturaRepository(db *sql.DB) (FacturaRepository, error) {
	repo := &facturaRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

const facturaColumns = `id, id_proveedor, numero_factura, monto_total, monto_pagado,
	estado, estado_aprobacion, COALESCE(autorizado_por, ''), COALESCE(motivo_rechazo, ''),
	fecha_vencimiento, created_at, updated_at`

func (r *facturaRepository) prepareStatements() error {
	statements := map[string]string{
		"get_factura": `
			SELECT ` + facturaColumns + `
			FROM facturas
			WHERE id = $1
		`,
		"list_by_proveedor": `
			SELECT ` + facturaColumns + `
			FROM facturas
			WHERE id_proveedor = $1
			ORDER BY created_at DESC
		`,
		"list_pendientes": `
			SELECT ` + facturaColumns + `
			FROM facturas
			WHERE estado_aprobacion = 'pendiente'
			ORDER BY created_at ASC
		`,
		"count_pendientes": `
			SELECT COUNT(*) FROM facturas WHERE estado_aprobacion = 'pendiente'
		`,
		"get_items": `
			SELECT id, id_factura, codigo_producto, cantidad, costo_unitario
			FROM factura_items
			WHERE id_factura = $1
			ORDER BY id
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

func scanFactura(scanner interface{ Scan(...interface{}) error }) (*models.Factura, error) {
	var f models.Factura
	err := scanner.Scan(
		&f.ID, &f.IDProveedor, &f.NumeroFactura, &f.MontoTotal, &f.MontoPagado,
		&f.Estado, &f.EstadoAprobacion, &f.AutorizadoPor, &f.MotivoRechazo,
		&f.FechaVencimiento, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID obtiene una factura con sus líneas
func (r *facturaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Factura, error) {
	factura, err := scanFactura(r.stmts["get_factura"].QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get factura: %w", err)
	}

	if factura.Items, err = r.getItems(ctx, id); err != nil {
		return nil, err
	}

	return factura, nil
}

func (r *facturaRepository) getItems(ctx context.Context, idFactura uuid.UUID) ([]models.FacturaItem, error) {
	rows, err := r.stmts["get_items"].QueryContext(ctx, idFactura)
	if err != nil {
		return nil, fmt.Errorf("failed to get factura items: %w", err)
	}
	defer rows.Close()

	var items []models.FacturaItem
	for rows.Next() {
		var item models.FacturaItem
		if err := rows.Scan(&item.ID, &item.IDFactura, &item.CodigoProducto, &item.Cantidad, &item.CostoUnitario); err != nil {
			return nil, fmt.Errorf("failed to scan factura item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *facturaRepository) listWith(ctx context.Context, stmt *sql.Stmt, args ...interface{}) ([]*models.Factura, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list facturas: %w", err)
	}
	defer rows.Close()

	var facturas []*models.Factura
	for rows.Next() {
		f, err := scanFactura(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan factura: %w", err)
		}
		facturas = append(facturas, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, f := range facturas {
		if f.Items, err = r.getItems(ctx, f.ID); err != nil {
			return nil, err
		}
	}

	return facturas, nil
}

// ListByProveedor obtiene las facturas de un proveedor
func (r *facturaRepository) ListByProveedor(ctx context.Context, idProveedor int) ([]*models.Factura, error) {
	return r.listWith(ctx, r.stmts["list_by_proveedor"], idProveedor)
}

// ListPendientes obtiene las facturas en cola de aprobación
func (r *facturaRepository) ListPendientes(ctx context.Context) ([]*models.Factura, error) {
	return r.listWith(ctx, r.stmts["list_pendientes"])
}

// CountPendientes cuenta las facturas en cola
func (r *facturaRepository) CountPendientes(ctx context.Context) (int, error) {
	var count int
	if err := r.stmts["count_pendientes"].QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pendientes: %w", err)
	}
	return count, nil
}

const insertFacturaSQL = `
	INSERT INTO facturas
		(id, id_proveedor, numero_factura, monto_total, monto_pagado, estado,
		 estado_aprobacion, fecha_vencimiento)
	VALUES ($1, $2, $3, $4, 0, $5, $6, $7)
	RETURNING created_at, updated_at
`

const insertFacturaItemSQL = `
	INSERT INTO factura_items (id_factura, codigo_producto, cantidad, costo_unitario)
	VALUES ($1, $2, $3, $4)
	RETURNING id
`

func (r *facturaRepository) insertFacturaTx(ctx context.Context, tx *sql.Tx, factura *models.Factura) error {
	err := tx.QueryRowContext(ctx, insertFacturaSQL,
		factura.ID, factura.IDProveedor, factura.NumeroFactura, factura.MontoTotal,
		factura.Estado, factura.EstadoAprobacion, factura.FechaVencimiento,
	).Scan(&factura.CreatedAt, &factura.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert factura: %w", err)
	}

	for i := range factura.Items {
		item := &factura.Items[i]
		item.IDFactura = factura.ID
		err := tx.QueryRowContext(ctx, insertFacturaItemSQL,
			factura.ID, item.CodigoProducto, item.Cantidad, item.CostoUnitario,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert factura item: %w", err)
		}
	}

	return nil
}

// ingresarMercaderiaTx ingresa el stock de las líneas a bodega y actualiza
// el costo de compra del producto
func ingresarMercaderiaTx(ctx context.Context, tx *sql.Tx, items []models.FacturaItem) error {
	for _, item := range items {
		result, err := tx.ExecContext(ctx, `
			UPDATE productos
			SET stock = stock + $1, costo_compra = $2, updated_at = NOW()
			WHERE codigo = $3
		`, item.Cantidad, item.CostoUnitario, item.CodigoProducto)
		if err != nil {
			return fmt.Errorf("failed to receive stock for %s: %w", item.CodigoProducto, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: producto %s", ErrNoEncontrado, item.CodigoProducto)
		}
	}
	return nil
}

// CrearComprometida inserta la factura e ingresa la mercadería en una sola
// transacción
func (r *facturaRepository) CrearComprometida(ctx context.Context, factura *models.Factura) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertFacturaTx(ctx, tx, factura); err != nil {
		return err
	}

	if err := ingresarMercaderiaTx(ctx, tx, factura.Items); err != nil {
		return err
	}

	detalles := fmt.Sprintf("factura %s, proveedor %d, monto %s",
		factura.NumeroFactura, factura.IDProveedor, factura.MontoTotal.String())
	if err := insertAuditoriaTx(ctx, tx, factura.AutorizadoPor, "factura_comprometida", "factura", factura.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// CrearPendiente inserta la factura sin ingresar mercadería
func (r *facturaRepository) CrearPendiente(ctx context.Context, factura *models.Factura) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertFacturaTx(ctx, tx, factura); err != nil {
		return err
	}

	detalles := fmt.Sprintf("factura %s, proveedor %d, monto %s",
		factura.NumeroFactura, factura.IDProveedor, factura.MontoTotal.String())
	if err := insertAuditoriaTx(ctx, tx, factura.AutorizadoPor, "factura_pendiente", "factura", factura.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// AprobarCommit ejecuta el ingreso diferido de mercadería con guardia
// transaccional contra doble aprobación
func (r *facturaRepository) AprobarCommit(ctx context.Context, id uuid.UUID, usuario string) (*models.Factura, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	factura, err := scanFactura(tx.QueryRowContext(ctx, `
		UPDATE facturas
		SET estado_aprobacion = 'aprobada', autorizado_por = $2, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING `+facturaColumns+`
	`, id, usuario))
	if err == sql.ErrNoRows {
		return nil, ErrNoPendiente
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve factura: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, id_factura, codigo_producto, cantidad, costo_unitario
		FROM factura_items
		WHERE id_factura = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get factura items: %w", err)
	}
	defer rows.Close()

	var items []models.FacturaItem
	for rows.Next() {
		var item models.FacturaItem
		if err := rows.Scan(&item.ID, &item.IDFactura, &item.CodigoProducto, &item.Cantidad, &item.CostoUnitario); err != nil {
			return nil, fmt.Errorf("failed to scan factura item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	factura.Items = items

	if err := ingresarMercaderiaTx(ctx, tx, items); err != nil {
		return nil, err
	}

	detalles := fmt.Sprintf("factura %s, monto %s", factura.NumeroFactura, factura.MontoTotal.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "factura_aprobada", "factura", id.String(), detalles); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	factura.AutorizadoPor = usuario
	return factura, nil
}

// Rechazar marca la factura pendiente como rechazada; la mercadería nunca
// ingresa
func (r *facturaRepository) Rechazar(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var returnedID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		UPDATE facturas
		SET estado_aprobacion = 'rechazada', motivo_rechazo = $2,
			autorizado_por = $3, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING id
	`, id, motivo, usuario).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return ErrNoPendiente
	}
	if err != nil {
		return fmt.Errorf("failed to reject factura: %w", err)
	}

	if err := insertAuditoriaTx(ctx, tx, usuario, "factura_rechazada", "factura", id.String(), motivo); err != nil {
		return err
	}

	return tx.Commit()
}
