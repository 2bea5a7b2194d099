package services

import (
	"context"
	"fmt"
	"time"

	"pagomatic-service/internal/cache"
	"pagomatic-service/internal/guard"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlazoPagoFacturaDefault días de plazo cuando la factura no trae uno
const PlazoPagoFacturaDefault = 30

// FacturaService define la interfaz para facturas de proveedor. El commit de
// una factura ingresa la mercadería a bodega y actualiza el costo de compra.
type FacturaService interface {
	Registrar(ctx context.Context, req *models.RegistrarFacturaRequest) (*models.ResultadoDocumento, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Factura, error)
	ListByProveedor(ctx context.Context, idProveedor int) ([]*models.Factura, error)
}

type facturaService struct {
	facturaRepo   repository.FacturaRepository
	productoRepo  repository.ProductoRepository
	ajustes       AjustesService
	productoCache *cache.ProductoCache
	logger        *zap.Logger
}

// NewFacturaService crea una nueva instancia del servicio
func NewFacturaService(
	facturaRepo repository.FacturaRepository,
	productoRepo repository.ProductoRepository,
	ajustes AjustesService,
	productoCache *cache.ProductoCache,
	logger *zap.Logger,
) FacturaService {
	return &facturaService{
		facturaRepo:   facturaRepo,
		productoRepo:  productoRepo,
		ajustes:       ajustes,
		productoCache: productoCache,
		logger:        logger,
	}
}

// Registrar registra una factura de proveedor. Comprometida de inmediato o
// en cola, según el interruptor de aprobación de facturas.
func (s *facturaService) Registrar(ctx context.Context, req *models.RegistrarFacturaRequest) (*models.ResultadoDocumento, error) {
	logger := s.logger.With(
		zap.String("operation", "registrar_factura"),
		zap.Int("id_proveedor", req.IDProveedor),
		zap.String("numero_factura", req.NumeroFactura),
	)

	if len(req.Items) == 0 {
		return nil, ErrCarritoVacio
	}

	ajustes, err := s.ajustes.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Las líneas deben referir productos del catálogo: el ingreso de
	// mercadería actualiza stock y costo de productos existentes
	codigos := make([]string, len(req.Items))
	for i, item := range req.Items {
		codigos[i] = item.CodigoProducto
	}
	productos, err := s.productoRepo.GetByCodigos(ctx, codigos)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo productos: %w", err)
	}

	items := make([]models.FacturaItem, 0, len(req.Items))
	montoTotal := decimal.Zero
	for _, item := range req.Items {
		if _, ok := productos[item.CodigoProducto]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.CodigoProducto)
		}
		if item.Cantidad <= 0 {
			return nil, fmt.Errorf("%w: %s x%d", ErrCantidadInvalida, item.CodigoProducto, item.Cantidad)
		}
		if !item.CostoUnitario.IsPositive() {
			return nil, fmt.Errorf("%w: producto %s", ErrMontoInvalido, item.CodigoProducto)
		}

		linea := models.FacturaItem{
			CodigoProducto: item.CodigoProducto,
			Cantidad:       item.Cantidad,
			CostoUnitario:  item.CostoUnitario,
		}
		items = append(items, linea)
		montoTotal = montoTotal.Add(linea.Subtotal())
	}

	plazo := req.PlazoPagoDias
	if plazo <= 0 {
		plazo = PlazoPagoFacturaDefault
	}

	factura := &models.Factura{
		ID:               uuid.New(),
		IDProveedor:      req.IDProveedor,
		NumeroFactura:    req.NumeroFactura,
		Items:            items,
		MontoTotal:       montoTotal,
		MontoPagado:      decimal.Zero,
		Estado:           models.FacturaPendiente,
		EstadoAprobacion: guard.EstadoInicialAprobacion(models.EntidadFactura, ajustes),
		AutorizadoPor:    req.Usuario,
		FechaVencimiento: time.Now().AddDate(0, 0, plazo),
	}

	if factura.EstadoAprobacion == models.AprobacionPendiente {
		if err := s.facturaRepo.CrearPendiente(ctx, factura); err != nil {
			return nil, fmt.Errorf("error creando factura pendiente: %w", err)
		}
		logger.Info("Factura en cola de aprobación", zap.String("id", factura.ID.String()))
		return &models.ResultadoDocumento{Estado: models.ResultadoPendiente, ID: factura.ID}, nil
	}

	if err := s.facturaRepo.CrearComprometida(ctx, factura); err != nil {
		return nil, fmt.Errorf("error comprometiendo factura: %w", err)
	}

	// El ingreso de mercadería cambió stock y costos
	s.productoCache.Invalidar(ctx, codigos...)

	logger.Info("Factura comprometida",
		zap.String("id", factura.ID.String()),
		zap.String("monto_total", montoTotal.String()),
		zap.Int("lineas", len(items)))
	return &models.ResultadoDocumento{Estado: models.ResultadoComprometido, ID: factura.ID}, nil
}

// GetByID obtiene una factura con sus líneas
func (s *facturaService) GetByID(ctx context.Context, id uuid.UUID) (*models.Factura, error) {
	factura, err := s.facturaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo factura: %w", err)
	}
	return factura, nil
}

// ListByProveedor obtiene las facturas de un proveedor
func (s *facturaService) ListByProveedor(ctx context.Context, idProveedor int) ([]*models.Factura, error) {
	facturas, err := s.facturaRepo.ListByProveedor(ctx, idProveedor)
	if err != nil {
		return nil, fmt.Errorf("error listando facturas: %w", err)
	}
	return facturas, nil
}
