package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pagomatic-service/internal/models"

	"github.com/lib/pq"
)

// ProductoRepository define la interfaz para consultas de productos.
// El stock solo se escribe desde los commits transaccionales de despachos,
// facturas y devoluciones.
type ProductoRepository interface {
	GetByCodigo(ctx context.Context, codigo string) (*models.Producto, error)
	GetByCodigos(ctx context.Context, codigos []string) (map[string]*models.Producto, error)
	List(ctx context.Context) ([]*models.Producto, error)
}

type productoRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewProductoRepository crea una nueva instancia del repository
func NewProductoRepository(db *sql.DB) (ProductoRepository, error) {
	repo := &productoRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

const productoColumns = `id, codigo, nombre, stock, precio_suministro,
	costo_compra, impuesto, flete, precio_detalle, activo, created_at, updated_at`

func (r *productoRepository) prepareStatements() error {
	statements := map[string]string{
		"get_producto": `
			SELECT ` + productoColumns + `
			FROM productos
			WHERE codigo = $1 AND activo = true
		`,
		"get_productos": `
			SELECT ` + productoColumns + `
			FROM productos
			WHERE codigo = ANY($1) AND activo = true
		`,
		"list_productos": `
			SELECT ` + productoColumns + `
			FROM productos
			WHERE activo = true
			ORDER BY nombre
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

func scanProducto(scanner interface{ Scan(...interface{}) error }) (*models.Producto, error) {
	var p models.Producto
	err := scanner.Scan(
		&p.ID, &p.Codigo, &p.Nombre, &p.Stock, &p.PrecioSuministro,
		&p.CostoCompra, &p.Impuesto, &p.Flete, &p.PrecioDetalle,
		&p.Activo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByCodigo obtiene un producto por código
func (r *productoRepository) GetByCodigo(ctx context.Context, codigo string) (*models.Producto, error) {
	producto, err := scanProducto(r.stmts["get_producto"].QueryRowContext(ctx, codigo))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get producto: %w", err)
	}
	return producto, nil
}

// GetByCodigos obtiene varios productos en una sola consulta, indexados por
// código
func (r *productoRepository) GetByCodigos(ctx context.Context, codigos []string) (map[string]*models.Producto, error) {
	rows, err := r.stmts["get_productos"].QueryContext(ctx, pq.Array(codigos))
	if err != nil {
		return nil, fmt.Errorf("failed to get productos: %w", err)
	}
	defer rows.Close()

	productos := make(map[string]*models.Producto, len(codigos))
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan producto: %w", err)
		}
		productos[p.Codigo] = p
	}

	return productos, rows.Err()
}

// List obtiene todos los productos activos
func (r *productoRepository) List(ctx context.Context) ([]*models.Producto, error) {
	rows, err := r.stmts["list_productos"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list productos: %w", err)
	}
	defer rows.Close()

	var productos []*models.Producto
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan producto: %w", err)
		}
		productos = append(productos, p)
	}

	return productos, rows.Err()
}
