package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DespachoRepository define la interfaz para despachos. Las mutaciones de
// stock y deuda viven exclusivamente en los métodos de commit de este
// repository; cada uno corre en una sola transacción junto con su entrada
// de auditoría.
type DespachoRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Despacho, error)
	ListByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error)
	ListActivosByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error)
	ListPendientes(ctx context.Context) ([]*models.Despacho, error)
	CountPendientes(ctx context.Context) (int, error)

	// CrearComprometido inserta el despacho, descuenta stock y aumenta la
	// deuda de la tienda en una transacción. Retorna ErrStockInsuficiente
	// sin aplicar nada si alguna línea no alcanza.
	CrearComprometido(ctx context.Context, despacho *models.Despacho) error

	// CrearPendiente inserta el despacho inerte: sin tocar stock ni deuda.
	CrearPendiente(ctx context.Context, despacho *models.Despacho) error

	// AprobarCommit ejecuta el commit diferido de un despacho pendiente.
	// Idempotente contra doble aprobación: la transición de estado se hace
	// con guardia transaccional y la segunda llamada recibe ErrNoPendiente.
	AprobarCommit(ctx context.Context, id uuid.UUID, usuario string) (*models.Despacho, error)

	// Rechazar marca el despacho pendiente como rechazado; nunca muta
	// stock ni deuda.
	Rechazar(ctx context.Context, id uuid.UUID, motivo, usuario string) error

	// Anular revierte el efecto financiero restante del despacho y
	// opcionalmente restaura el stock no devuelto.
	Anular(ctx context.Context, id uuid.UUID, restaurarStock bool, usuario string) error

	// DevolucionParcial devuelve cantidad de una línea; solo buen_estado
	// restaura stock. La deuda baja siempre en cantidad × precio.
	DevolucionParcial(ctx context.Context, id uuid.UUID, codigoProducto string, cantidad int, motivo models.MotivoDevolucion, usuario string) error
}

type despachoRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewDespachoRepository crea una nueva instancia del repository
func NewDespachoRepository(db *sql.DB) (DespachoRepository, error) {
	repo := &despachoRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

const despachoColumns = `id, folio, id_tienda, fecha, monto_total, estado,
	estado_aprobacion, COALESCE(autorizado_por, ''), COALESCE(motivo_rechazo, ''),
	COALESCE(chofer, ''), COALESCE(patente, ''), fecha_vencimiento, created_at, updated_at`

func (r *despachoRepository) prepareStatements() error {
	statements := map[string]string{
		"get_despacho": `
			SELECT ` + despachoColumns + `
			FROM despachos
			WHERE id = $1
		`,
		"list_by_tienda": `
			SELECT ` + despachoColumns + `
			FROM despachos
			WHERE id_tienda = $1
			ORDER BY fecha DESC
		`,
		"list_activos_by_tienda": `
			SELECT ` + despachoColumns + `
			FROM despachos
			WHERE id_tienda = $1
			  AND estado IN ('activo', 'devolucion_parcial')
			ORDER BY fecha_vencimiento ASC
		`,
		"list_pendientes": `
			SELECT ` + despachoColumns + `
			FROM despachos
			WHERE estado_aprobacion = 'pendiente'
			ORDER BY created_at ASC
		`,
		"count_pendientes": `
			SELECT COUNT(*) FROM despachos WHERE estado_aprobacion = 'pendiente'
		`,
		"get_items": `
			SELECT id, id_despacho, codigo_producto, cantidad, precio_suministro, cantidad_devuelta
			FROM despacho_items
			WHERE id_despacho = $1
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

func scanDespacho(scanner interface{ Scan(...interface{}) error }) (*models.Despacho, error) {
	var d models.Despacho
	err := scanner.Scan(
		&d.ID, &d.Folio, &d.IDTienda, &d.Fecha, &d.MontoTotal, &d.Estado,
		&d.EstadoAprobacion, &d.AutorizadoPor, &d.MotivoRechazo,
		&d.Chofer, &d.Patente, &d.FechaVencimiento, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID obtiene un despacho con sus líneas
func (r *despachoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Despacho, error) {
	despacho, err := scanDespacho(r.stmts["get_despacho"].QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get despacho: %w", err)
	}

	if despacho.Items, err = r.getItems(ctx, id); err != nil {
		return nil, err
	}

	return despacho, nil
}

func (r *despachoRepository) getItems(ctx context.Context, idDespacho uuid.UUID) ([]models.DespachoItem, error) {
	rows, err := r.stmts["get_items"].QueryContext(ctx, idDespacho)
	if err != nil {
		return nil, fmt.Errorf("failed to get despacho items: %w", err)
	}
	defer rows.Close()

	var items []models.DespachoItem
	for rows.Next() {
		var item models.DespachoItem
		err := rows.Scan(&item.ID, &item.IDDespacho, &item.CodigoProducto,
			&item.Cantidad, &item.PrecioSuministro, &item.CantidadDevuelta)
		if err != nil {
			return nil, fmt.Errorf("failed to scan despacho item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *despachoRepository) listWith(ctx context.Context, stmt *sql.Stmt, args ...interface{}) ([]*models.Despacho, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list despachos: %w", err)
	}
	defer rows.Close()

	var despachos []*models.Despacho
	for rows.Next() {
		d, err := scanDespacho(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan despacho: %w", err)
		}
		despachos = append(despachos, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range despachos {
		if d.Items, err = r.getItems(ctx, d.ID); err != nil {
			return nil, err
		}
	}

	return despachos, nil
}

// ListByTienda obtiene los despachos de una tienda
func (r *despachoRepository) ListByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error) {
	return r.listWith(ctx, r.stmts["list_by_tienda"], idTienda)
}

// ListActivosByTienda obtiene los despachos económicamente vigentes de una
// tienda (para evaluar morosidad)
func (r *despachoRepository) ListActivosByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error) {
	return r.listWith(ctx, r.stmts["list_activos_by_tienda"], idTienda)
}

// ListPendientes obtiene los despachos en cola de aprobación
func (r *despachoRepository) ListPendientes(ctx context.Context) ([]*models.Despacho, error) {
	return r.listWith(ctx, r.stmts["list_pendientes"])
}

// CountPendientes cuenta los despachos en cola
func (r *despachoRepository) CountPendientes(ctx context.Context) (int, error) {
	var count int
	if err := r.stmts["count_pendientes"].QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pendientes: %w", err)
	}
	return count, nil
}

const insertDespachoSQL = `
	INSERT INTO despachos
		(id, folio, id_tienda, fecha, monto_total, estado, estado_aprobacion,
		 chofer, patente, fecha_vencimiento)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
	RETURNING created_at, updated_at
`

const insertDespachoItemSQL = `
	INSERT INTO despacho_items (id_despacho, codigo_producto, cantidad, precio_suministro, cantidad_devuelta)
	VALUES ($1, $2, $3, $4, 0)
	RETURNING id
`

// descontarStockTx descuenta stock con verificación condicional: cero filas
// afectadas significa que no alcanza.
func descontarStockTx(ctx context.Context, tx *sql.Tx, codigo string, cantidad int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE productos
		SET stock = stock - $1, updated_at = NOW()
		WHERE codigo = $2 AND stock >= $1
	`, cantidad, codigo)
	if err != nil {
		return fmt.Errorf("failed to update stock for %s: %w", codigo, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: producto %s", ErrStockInsuficiente, codigo)
	}

	return nil
}

func restaurarStockTx(ctx context.Context, tx *sql.Tx, codigo string, cantidad int) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE productos
		SET stock = stock + $1, updated_at = NOW()
		WHERE codigo = $2
	`, cantidad, codigo); err != nil {
		return fmt.Errorf("failed to restore stock for %s: %w", codigo, err)
	}
	return nil
}

func ajustarDeudaTx(ctx context.Context, tx *sql.Tx, idTienda int, delta decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE tiendas
		SET deuda_total = deuda_total + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, idTienda); err != nil {
		return fmt.Errorf("failed to update deuda for tienda %d: %w", idTienda, err)
	}
	return nil
}

// CrearComprometido inserta despacho + líneas, descuenta stock y aumenta la
// deuda en una sola transacción
func (r *despachoRepository) CrearComprometido(ctx context.Context, despacho *models.Despacho) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertDespachoTx(ctx, tx, despacho); err != nil {
		return err
	}

	for i := range despacho.Items {
		if err := descontarStockTx(ctx, tx, despacho.Items[i].CodigoProducto, despacho.Items[i].Cantidad); err != nil {
			return err
		}
	}

	if err := ajustarDeudaTx(ctx, tx, despacho.IDTienda, despacho.MontoTotal); err != nil {
		return err
	}

	detalles := fmt.Sprintf("folio %d, tienda %d, monto %s", despacho.Folio, despacho.IDTienda, despacho.MontoTotal.String())
	if err := insertAuditoriaTx(ctx, tx, despacho.AutorizadoPor, "despacho_comprometido", "despacho", despacho.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// CrearPendiente inserta el despacho sin efectos económicos
func (r *despachoRepository) CrearPendiente(ctx context.Context, despacho *models.Despacho) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertDespachoTx(ctx, tx, despacho); err != nil {
		return err
	}

	detalles := fmt.Sprintf("folio %d, tienda %d, monto %s", despacho.Folio, despacho.IDTienda, despacho.MontoTotal.String())
	if err := insertAuditoriaTx(ctx, tx, despacho.AutorizadoPor, "despacho_pendiente", "despacho", despacho.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *despachoRepository) insertDespachoTx(ctx context.Context, tx *sql.Tx, despacho *models.Despacho) error {
	err := tx.QueryRowContext(ctx, insertDespachoSQL,
		despacho.ID, despacho.Folio, despacho.IDTienda, despacho.Fecha,
		despacho.MontoTotal, despacho.Estado, despacho.EstadoAprobacion,
		despacho.Chofer, despacho.Patente, despacho.FechaVencimiento,
	).Scan(&despacho.CreatedAt, &despacho.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert despacho: %w", err)
	}

	for i := range despacho.Items {
		item := &despacho.Items[i]
		item.IDDespacho = despacho.ID
		err := tx.QueryRowContext(ctx, insertDespachoItemSQL,
			despacho.ID, item.CodigoProducto, item.Cantidad, item.PrecioSuministro,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert despacho item: %w", err)
		}
	}

	return nil
}

// AprobarCommit ejecuta el commit diferido. La guardia
// `WHERE estado_aprobacion = 'pendiente'` dentro de la transacción garantiza
// que una segunda aprobación concurrente no vuelva a descontar stock ni a
// subir la deuda.
func (r *despachoRepository) AprobarCommit(ctx context.Context, id uuid.UUID, usuario string) (*models.Despacho, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	despacho, err := scanDespacho(tx.QueryRowContext(ctx, `
		UPDATE despachos
		SET estado_aprobacion = 'aprobada', autorizado_por = $2, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING `+despachoColumns+`
	`, id, usuario))
	if err == sql.ErrNoRows {
		return nil, ErrNoPendiente
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve despacho: %w", err)
	}

	// Re-verificar stock al momento de la aprobación, no al de la creación
	items, err := r.getItemsTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	despacho.Items = items

	for _, item := range items {
		if err := descontarStockTx(ctx, tx, item.CodigoProducto, item.Cantidad); err != nil {
			return nil, err
		}
	}

	if err := ajustarDeudaTx(ctx, tx, despacho.IDTienda, despacho.MontoTotal); err != nil {
		return nil, err
	}

	detalles := fmt.Sprintf("folio %d, monto %s", despacho.Folio, despacho.MontoTotal.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "despacho_aprobado", "despacho", id.String(), detalles); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	despacho.AutorizadoPor = usuario
	return despacho, nil
}

func (r *despachoRepository) getItemsTx(ctx context.Context, tx *sql.Tx, idDespacho uuid.UUID) ([]models.DespachoItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, id_despacho, codigo_producto, cantidad, precio_suministro, cantidad_devuelta
		FROM despacho_items
		WHERE id_despacho = $1
		ORDER BY id
		FOR UPDATE
	`, idDespacho)
	if err != nil {
		return nil, fmt.Errorf("failed to get despacho items: %w", err)
	}
	defer rows.Close()

	var items []models.DespachoItem
	for rows.Next() {
		var item models.DespachoItem
		err := rows.Scan(&item.ID, &item.IDDespacho, &item.CodigoProducto,
			&item.Cantidad, &item.PrecioSuministro, &item.CantidadDevuelta)
		if err != nil {
			return nil, fmt.Errorf("failed to scan despacho item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Rechazar marca el despacho como rechazado; queda visible en el historial
// pero económicamente inerte para siempre
func (r *despachoRepository) Rechazar(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var returnedID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		UPDATE despachos
		SET estado_aprobacion = 'rechazada', motivo_rechazo = $2,
			autorizado_por = $3, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING id
	`, id, motivo, usuario).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return ErrNoPendiente
	}
	if err != nil {
		return fmt.Errorf("failed to reject despacho: %w", err)
	}

	if err := insertAuditoriaTx(ctx, tx, usuario, "despacho_rechazado", "despacho", id.String(), motivo); err != nil {
		return err
	}

	return tx.Commit()
}

// Anular revierte la deuda restante del despacho. Con restaurarStock la
// mercadería no devuelta vuelve a bodega; sin él se absorbe como merma.
// Un despacho pendiente no se anula: se rechaza.
func (r *despachoRepository) Anular(ctx context.Context, id uuid.UUID, restaurarStock bool, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	despacho, err := scanDespacho(tx.QueryRowContext(ctx, `
		UPDATE despachos
		SET estado = 'anulado', updated_at = NOW()
		WHERE id = $1
		  AND estado IN ('activo', 'devolucion_parcial')
		  AND estado_aprobacion IN ('no_requerida', 'aprobada')
		RETURNING `+despachoColumns+`
	`, id))
	if err == sql.ErrNoRows {
		return ErrNoAnulable
	}
	if err != nil {
		return fmt.Errorf("failed to anular despacho: %w", err)
	}

	items, err := r.getItemsTx(ctx, tx, id)
	if err != nil {
		return err
	}
	despacho.Items = items

	// La deuda baja solo en lo que quedaba vigente; las devoluciones
	// parciales previas ya la habían descontado.
	deudaRestante := despacho.DeudaRestante()
	if err := ajustarDeudaTx(ctx, tx, despacho.IDTienda, deudaRestante.Neg()); err != nil {
		return err
	}

	if restaurarStock {
		for _, item := range items {
			restante := item.Cantidad - item.CantidadDevuelta
			if restante > 0 {
				if err := restaurarStockTx(ctx, tx, item.CodigoProducto, restante); err != nil {
					return err
				}
			}
		}
	}

	detalles := fmt.Sprintf("folio %d, deuda revertida %s, restaurar_stock=%t",
		despacho.Folio, deudaRestante.String(), restaurarStock)
	if err := insertAuditoriaTx(ctx, tx, usuario, "despacho_anulado", "despacho", id.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// DevolucionParcial devuelve cantidad de una línea del despacho
func (r *despachoRepository) DevolucionParcial(ctx context.Context, id uuid.UUID, codigoProducto string, cantidad int, motivo models.MotivoDevolucion, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	despacho, err := scanDespacho(tx.QueryRowContext(ctx, `
		SELECT `+despachoColumns+`
		FROM despachos
		WHERE id = $1
		  AND estado IN ('activo', 'devolucion_parcial')
		  AND estado_aprobacion IN ('no_requerida', 'aprobada')
		FOR UPDATE
	`, id))
	if err == sql.ErrNoRows {
		return ErrNoAnulable
	}
	if err != nil {
		return fmt.Errorf("failed to lock despacho: %w", err)
	}

	// La guardia cantidad_devuelta + cantidad ≤ cantidad es transaccional:
	// dos devoluciones concurrentes no pueden superar lo despachado.
	var itemID int
	var precioSuministro decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		UPDATE despacho_items
		SET cantidad_devuelta = cantidad_devuelta + $3
		WHERE id_despacho = $1 AND codigo_producto = $2
		  AND cantidad_devuelta + $3 <= cantidad
		RETURNING id, precio_suministro
	`, id, codigoProducto, cantidad).Scan(&itemID, &precioSuministro)
	if err == sql.ErrNoRows {
		return ErrDevolucionExcedida
	}
	if err != nil {
		return fmt.Errorf("failed to update despacho item: %w", err)
	}

	montoDevuelto := precioSuministro.Mul(decimal.NewFromInt(int64(cantidad)))
	if err := ajustarDeudaTx(ctx, tx, despacho.IDTienda, montoDevuelto.Neg()); err != nil {
		return err
	}

	// Solo la mercadería en buen estado vuelve a bodega; el resto es merma
	if motivo == models.DevolucionBuenEstado {
		if err := restaurarStockTx(ctx, tx, codigoProducto, cantidad); err != nil {
			return err
		}
	}

	// Si todas las líneas quedaron devueltas por completo, el despacho pasa
	// a devuelto; si no, a devolución parcial
	var lineasVigentes int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM despacho_items
		WHERE id_despacho = $1 AND cantidad_devuelta < cantidad
	`, id).Scan(&lineasVigentes)
	if err != nil {
		return fmt.Errorf("failed to count remaining items: %w", err)
	}

	nuevoEstado := models.DespachoDevolucionParcial
	if lineasVigentes == 0 {
		nuevoEstado = models.DespachoDevuelto
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE despachos SET estado = $2, updated_at = NOW() WHERE id = $1
	`, id, nuevoEstado); err != nil {
		return fmt.Errorf("failed to update despacho estado: %w", err)
	}

	detalles := fmt.Sprintf("producto %s, cantidad %d, motivo %s, monto %s",
		codigoProducto, cantidad, motivo, montoDevuelto.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "devolucion_parcial", "despacho", id.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}
