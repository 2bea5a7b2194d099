package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PagoRepository define la interfaz para pagos a proveedor y abonos de
// tienda. La guardia de sobrepago corre dentro de la transacción dueña, con
// el documento contraparte bloqueado FOR UPDATE.
type PagoRepository interface {
	GetPagoProveedor(ctx context.Context, id uuid.UUID) (*models.PagoProveedor, error)
	GetAbono(ctx context.Context, id uuid.UUID) (*models.AbonoTienda, error)
	ListPagosPendientes(ctx context.Context) ([]*models.PagoProveedor, error)
	ListAbonosPendientes(ctx context.Context) ([]*models.AbonoTienda, error)
	CountPagosPendientes(ctx context.Context) (int, error)
	CountAbonosPendientes(ctx context.Context) (int, error)

	CrearPagoComprometido(ctx context.Context, pago *models.PagoProveedor) error
	CrearPagoPendiente(ctx context.Context, pago *models.PagoProveedor) error
	AprobarPago(ctx context.Context, id uuid.UUID, usuario string) (*models.PagoProveedor, error)
	RechazarPago(ctx context.Context, id uuid.UUID, motivo, usuario string) error
	AnularPago(ctx context.Context, id uuid.UUID, usuario string) error

	CrearAbonoComprometido(ctx context.Context, abono *models.AbonoTienda) error
	CrearAbonoPendiente(ctx context.Context, abono *models.AbonoTienda) error
	AprobarAbono(ctx context.Context, id uuid.UUID, usuario string) (*models.AbonoTienda, error)
	RechazarAbono(ctx context.Context, id uuid.UUID, motivo, usuario string) error
	AnularAbono(ctx context.Context, id uuid.UUID, usuario string) error
}

type pagoRepository struct {
	db *sql.DB
}

// NewPagoRepository crea una nueva instancia del repository
func NewPagoRepository(db *sql.DB) PagoRepository {
	return &pagoRepository{db: db}
}

const pagoColumns = `id, id_proveedor, id_factura, monto, metodo, COALESCE(referencia, ''),
	estado, estado_aprobacion, COALESCE(autorizado_por, ''), COALESCE(motivo_rechazo, ''),
	created_at, updated_at`

const abonoColumns = `id, id_tienda, id_despacho, monto, metodo, COALESCE(referencia, ''),
	estado, estado_aprobacion, COALESCE(autorizado_por, ''), COALESCE(motivo_rechazo, ''),
	created_at, updated_at`

func scanPago(scanner interface{ Scan(...interface{}) error }) (*models.PagoProveedor, error) {
	var p models.PagoProveedor
	err := scanner.Scan(
		&p.ID, &p.IDProveedor, &p.IDFactura, &p.Monto, &p.Metodo, &p.Referencia,
		&p.Estado, &p.EstadoAprobacion, &p.AutorizadoPor, &p.MotivoRechazo,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanAbono(scanner interface{ Scan(...interface{}) error }) (*models.AbonoTienda, error) {
	var a models.AbonoTienda
	err := scanner.Scan(
		&a.ID, &a.IDTienda, &a.IDDespacho, &a.Monto, &a.Metodo, &a.Referencia,
		&a.Estado, &a.EstadoAprobacion, &a.AutorizadoPor, &a.MotivoRechazo,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetPagoProveedor obtiene un pago por ID
func (r *pagoRepository) GetPagoProveedor(ctx context.Context, id uuid.UUID) (*models.PagoProveedor, error) {
	pago, err := scanPago(r.db.QueryRowContext(ctx, `
		SELECT `+pagoColumns+` FROM pagos_proveedor WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pago: %w", err)
	}
	return pago, nil
}

// GetAbono obtiene un abono por ID
func (r *pagoRepository) GetAbono(ctx context.Context, id uuid.UUID) (*models.AbonoTienda, error) {
	abono, err := scanAbono(r.db.QueryRowContext(ctx, `
		SELECT `+abonoColumns+` FROM abonos_tienda WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get abono: %w", err)
	}
	return abono, nil
}

// ListPagosPendientes obtiene los pagos a proveedor en cola
func (r *pagoRepository) ListPagosPendientes(ctx context.Context) ([]*models.PagoProveedor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pagoColumns+` FROM pagos_proveedor
		WHERE estado_aprobacion = 'pendiente'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pagos pendientes: %w", err)
	}
	defer rows.Close()

	var pagos []*models.PagoProveedor
	for rows.Next() {
		p, err := scanPago(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pago: %w", err)
		}
		pagos = append(pagos, p)
	}
	return pagos, rows.Err()
}

// ListAbonosPendientes obtiene los abonos de tienda en cola
func (r *pagoRepository) ListAbonosPendientes(ctx context.Context) ([]*models.AbonoTienda, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+abonoColumns+` FROM abonos_tienda
		WHERE estado_aprobacion = 'pendiente'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list abonos pendientes: %w", err)
	}
	defer rows.Close()

	var abonos []*models.AbonoTienda
	for rows.Next() {
		a, err := scanAbono(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan abono: %w", err)
		}
		abonos = append(abonos, a)
	}
	return abonos, rows.Err()
}

// CountPagosPendientes cuenta los pagos en cola
func (r *pagoRepository) CountPagosPendientes(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pagos_proveedor WHERE estado_aprobacion = 'pendiente'
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pagos pendientes: %w", err)
	}
	return count, nil
}

// CountAbonosPendientes cuenta los abonos en cola
func (r *pagoRepository) CountAbonosPendientes(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM abonos_tienda WHERE estado_aprobacion = 'pendiente'
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count abonos pendientes: %w", err)
	}
	return count, nil
}

const insertPagoSQL = `
	INSERT INTO pagos_proveedor
		(id, id_proveedor, id_factura, monto, metodo, referencia, estado, estado_aprobacion)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	RETURNING created_at, updated_at
`

// aplicarPagoAFacturaTx aplica el monto a la factura con guardia de
// sobrepago; la factura queda bloqueada FOR UPDATE durante la verificación
func aplicarPagoAFacturaTx(ctx context.Context, tx *sql.Tx, idFactura uuid.UUID, monto decimal.Decimal) error {
	var montoTotal, montoPagado decimal.Decimal
	err := tx.QueryRowContext(ctx, `
		SELECT monto_total, monto_pagado
		FROM facturas
		WHERE id = $1 AND estado_aprobacion IN ('no_requerida', 'aprobada')
		FOR UPDATE
	`, idFactura).Scan(&montoTotal, &montoPagado)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: factura %s", ErrNoEncontrado, idFactura)
	}
	if err != nil {
		return fmt.Errorf("failed to lock factura: %w", err)
	}

	nuevoPagado := montoPagado.Add(monto)
	if nuevoPagado.GreaterThan(montoTotal) {
		return fmt.Errorf("%w: factura %s, saldo %s, pago %s",
			ErrSobrepago, idFactura, montoTotal.Sub(montoPagado).String(), monto.String())
	}

	nuevoEstado := models.DerivarEstadoFactura(nuevoPagado, montoTotal)
	if _, err := tx.ExecContext(ctx, `
		UPDATE facturas
		SET monto_pagado = $2, estado = $3, updated_at = NOW()
		WHERE id = $1
	`, idFactura, nuevoPagado, nuevoEstado); err != nil {
		return fmt.Errorf("failed to apply pago to factura: %w", err)
	}

	return nil
}

// revertirPagoDeFacturaTx revierte el monto de la factura (anulación)
func revertirPagoDeFacturaTx(ctx context.Context, tx *sql.Tx, idFactura uuid.UUID, monto decimal.Decimal) error {
	var montoTotal, montoPagado decimal.Decimal
	err := tx.QueryRowContext(ctx, `
		SELECT monto_total, monto_pagado FROM facturas WHERE id = $1 FOR UPDATE
	`, idFactura).Scan(&montoTotal, &montoPagado)
	if err != nil {
		return fmt.Errorf("failed to lock factura: %w", err)
	}

	nuevoPagado := montoPagado.Sub(monto)
	nuevoEstado := models.DerivarEstadoFactura(nuevoPagado, montoTotal)
	if _, err := tx.ExecContext(ctx, `
		UPDATE facturas
		SET monto_pagado = $2, estado = $3, updated_at = NOW()
		WHERE id = $1
	`, idFactura, nuevoPagado, nuevoEstado); err != nil {
		return fmt.Errorf("failed to revert pago from factura: %w", err)
	}

	return nil
}

// CrearPagoComprometido inserta el pago y lo aplica a la factura en una
// transacción
func (r *pagoRepository) CrearPagoComprometido(ctx context.Context, pago *models.PagoProveedor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if pago.IDFactura != nil {
		if err := aplicarPagoAFacturaTx(ctx, tx, *pago.IDFactura, pago.Monto); err != nil {
			return err
		}
	}

	err = tx.QueryRowContext(ctx, insertPagoSQL,
		pago.ID, pago.IDProveedor, pago.IDFactura, pago.Monto, pago.Metodo,
		pago.Referencia, pago.Estado, pago.EstadoAprobacion,
	).Scan(&pago.CreatedAt, &pago.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pago: %w", err)
	}

	detalles := fmt.Sprintf("proveedor %d, monto %s, metodo %s", pago.IDProveedor, pago.Monto.String(), pago.Metodo)
	if err := insertAuditoriaTx(ctx, tx, pago.AutorizadoPor, "pago_comprometido", "pago_proveedor", pago.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// CrearPagoPendiente inserta el pago sin aplicarlo
func (r *pagoRepository) CrearPagoPendiente(ctx context.Context, pago *models.PagoProveedor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, insertPagoSQL,
		pago.ID, pago.IDProveedor, pago.IDFactura, pago.Monto, pago.Metodo,
		pago.Referencia, pago.Estado, pago.EstadoAprobacion,
	).Scan(&pago.CreatedAt, &pago.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pago: %w", err)
	}

	detalles := fmt.Sprintf("proveedor %d, monto %s, metodo %s", pago.IDProveedor, pago.Monto.String(), pago.Metodo)
	if err := insertAuditoriaTx(ctx, tx, pago.AutorizadoPor, "pago_pendiente", "pago_proveedor", pago.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// AprobarPago aplica el pago diferido con guardia contra doble aprobación.
// Si al aprobar el pago excedería el saldo (otros pagos entraron antes), la
// transacción se revierte completa y el pago sigue pendiente.
func (r *pagoRepository) AprobarPago(ctx context.Context, id uuid.UUID, usuario string) (*models.PagoProveedor, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pago, err := scanPago(tx.QueryRowContext(ctx, `
		UPDATE pagos_proveedor
		SET estado_aprobacion = 'aprobada', autorizado_por = $2, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING `+pagoColumns+`
	`, id, usuario))
	if err == sql.ErrNoRows {
		return nil, ErrNoPendiente
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve pago: %w", err)
	}

	if pago.IDFactura != nil {
		if err := aplicarPagoAFacturaTx(ctx, tx, *pago.IDFactura, pago.Monto); err != nil {
			return nil, err
		}
	}

	detalles := fmt.Sprintf("proveedor %d, monto %s", pago.IDProveedor, pago.Monto.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "pago_aprobado", "pago_proveedor", id.String(), detalles); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	pago.AutorizadoPor = usuario
	return pago, nil
}

// RechazarPago marca el pago pendiente como rechazado
func (r *pagoRepository) RechazarPago(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	return r.rechazar(ctx, "pagos_proveedor", "pago_proveedor", "pago_rechazado", id, motivo, usuario)
}

// RechazarAbono marca el abono pendiente como rechazado
func (r *pagoRepository) RechazarAbono(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	return r.rechazar(ctx, "abonos_tienda", "abono_tienda", "abono_rechazado", id, motivo, usuario)
}

func (r *pagoRepository) rechazar(ctx context.Context, tabla, entidad, accion string, id uuid.UUID, motivo, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var returnedID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		UPDATE `+tabla+`
		SET estado_aprobacion = 'rechazada', motivo_rechazo = $2,
			autorizado_por = $3, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING id
	`, id, motivo, usuario).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return ErrNoPendiente
	}
	if err != nil {
		return fmt.Errorf("failed to reject %s: %w", entidad, err)
	}

	if err := insertAuditoriaTx(ctx, tx, usuario, accion, entidad, id.String(), motivo); err != nil {
		return err
	}

	return tx.Commit()
}

// AnularPago revierte el efecto del pago sobre su factura
func (r *pagoRepository) AnularPago(ctx context.Context, id uuid.UUID, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pago, err := scanPago(tx.QueryRowContext(ctx, `
		UPDATE pagos_proveedor
		SET estado = 'anulado', updated_at = NOW()
		WHERE id = $1 AND estado = 'activo'
		  AND estado_aprobacion IN ('no_requerida', 'aprobada')
		RETURNING `+pagoColumns+`
	`, id))
	if err == sql.ErrNoRows {
		return ErrNoAnulable
	}
	if err != nil {
		return fmt.Errorf("failed to anular pago: %w", err)
	}

	if pago.IDFactura != nil {
		if err := revertirPagoDeFacturaTx(ctx, tx, *pago.IDFactura, pago.Monto); err != nil {
			return err
		}
	}

	detalles := fmt.Sprintf("proveedor %d, monto %s", pago.IDProveedor, pago.Monto.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "pago_anulado", "pago_proveedor", id.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

const insertAbonoSQL = `
	INSERT INTO abonos_tienda
		(id, id_tienda, id_despacho, monto, metodo, referencia, estado, estado_aprobacion)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	RETURNING created_at, updated_at
`

// descontarDeudaTx reduce la deuda de la tienda con guardia de sobrepago: un
// abono nunca puede dejar la deuda negativa
func descontarDeudaTx(ctx context.Context, tx *sql.Tx, idTienda int, monto decimal.Decimal) error {
	var deuda decimal.Decimal
	err := tx.QueryRowContext(ctx, `
		SELECT deuda_total FROM tiendas WHERE id = $1 FOR UPDATE
	`, idTienda).Scan(&deuda)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: tienda %d", ErrNoEncontrado, idTienda)
	}
	if err != nil {
		return fmt.Errorf("failed to lock tienda: %w", err)
	}

	if monto.GreaterThan(deuda) {
		return fmt.Errorf("%w: tienda %d, deuda %s, abono %s",
			ErrSobrepago, idTienda, deuda.String(), monto.String())
	}

	return ajustarDeudaTx(ctx, tx, idTienda, monto.Neg())
}

// CrearAbonoComprometido inserta el abono y descuenta la deuda en una
// transacción
func (r *pagoRepository) CrearAbonoComprometido(ctx context.Context, abono *models.AbonoTienda) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := descontarDeudaTx(ctx, tx, abono.IDTienda, abono.Monto); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, insertAbonoSQL,
		abono.ID, abono.IDTienda, abono.IDDespacho, abono.Monto, abono.Metodo,
		abono.Referencia, abono.Estado, abono.EstadoAprobacion,
	).Scan(&abono.CreatedAt, &abono.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert abono: %w", err)
	}

	detalles := fmt.Sprintf("tienda %d, monto %s, metodo %s", abono.IDTienda, abono.Monto.String(), abono.Metodo)
	if err := insertAuditoriaTx(ctx, tx, abono.AutorizadoPor, "abono_comprometido", "abono_tienda", abono.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// CrearAbonoPendiente inserta el abono sin descontar deuda
func (r *pagoRepository) CrearAbonoPendiente(ctx context.Context, abono *models.AbonoTienda) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, insertAbonoSQL,
		abono.ID, abono.IDTienda, abono.IDDespacho, abono.Monto, abono.Metodo,
		abono.Referencia, abono.Estado, abono.EstadoAprobacion,
	).Scan(&abono.CreatedAt, &abono.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert abono: %w", err)
	}

	detalles := fmt.Sprintf("tienda %d, monto %s, metodo %s", abono.IDTienda, abono.Monto.String(), abono.Metodo)
	if err := insertAuditoriaTx(ctx, tx, abono.AutorizadoPor, "abono_pendiente", "abono_tienda", abono.ID.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}

// AprobarAbono descuenta la deuda diferida con guardia contra doble
// aprobación
func (r *pagoRepository) AprobarAbono(ctx context.Context, id uuid.UUID, usuario string) (*models.AbonoTienda, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	abono, err := scanAbono(tx.QueryRowContext(ctx, `
		UPDATE abonos_tienda
		SET estado_aprobacion = 'aprobada', autorizado_por = $2, updated_at = NOW()
		WHERE id = $1 AND estado_aprobacion = 'pendiente'
		RETURNING `+abonoColumns+`
	`, id, usuario))
	if err == sql.ErrNoRows {
		return nil, ErrNoPendiente
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve abono: %w", err)
	}

	if err := descontarDeudaTx(ctx, tx, abono.IDTienda, abono.Monto); err != nil {
		return nil, err
	}

	detalles := fmt.Sprintf("tienda %d, monto %s", abono.IDTienda, abono.Monto.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "abono_aprobado", "abono_tienda", id.String(), detalles); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	abono.AutorizadoPor = usuario
	return abono, nil
}

// AnularAbono revierte el descuento de deuda del abono
func (r *pagoRepository) AnularAbono(ctx context.Context, id uuid.UUID, usuario string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	abono, err := scanAbono(tx.QueryRowContext(ctx, `
		UPDATE abonos_tienda
		SET estado = 'anulado', updated_at = NOW()
		WHERE id = $1 AND estado = 'activo'
		  AND estado_aprobacion IN ('no_requerida', 'aprobada')
		RETURNING `+abonoColumns+`
	`, id))
	if err == sql.ErrNoRows {
		return ErrNoAnulable
	}
	if err != nil {
		return fmt.Errorf("failed to anular abono: %w", err)
	}

	if err := ajustarDeudaTx(ctx, tx, abono.IDTienda, abono.Monto); err != nil {
		return err
	}

	detalles := fmt.Sprintf("tienda %d, monto %s", abono.IDTienda, abono.Monto.String())
	if err := insertAuditoriaTx(ctx, tx, usuario, "abono_anulado", "abono_tienda", id.String(), detalles); err != nil {
		return err
	}

	return tx.Commit()
}
