package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pagomatic-service/internal/cache"
	"pagomatic-service/internal/formatter"
	"pagomatic-service/internal/guard"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DespachoService define la interfaz del flujo de despachos: registro con
// guardián de crédito, anulación y devoluciones.
type DespachoService interface {
	Registrar(ctx context.Context, req *models.RegistrarDespachoRequest) (*models.ResultadoDespacho, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Despacho, error)
	ListByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error)
	Anular(ctx context.Context, id uuid.UUID, req *models.AnularDespachoRequest) error
	DevolucionParcial(ctx context.Context, id uuid.UUID, req *models.DevolucionParcialRequest) error
}

type despachoService struct {
	despachoRepo  repository.DespachoRepository
	tiendaRepo    repository.TiendaRepository
	productoRepo  repository.ProductoRepository
	ajustes       AjustesService
	productoCache *cache.ProductoCache
	impresora     formatter.Impresora
	logger        *zap.Logger
}

// NewDespachoService crea una nueva instancia del servicio
func NewDespachoService(
	despachoRepo repository.DespachoRepository,
	tiendaRepo repository.TiendaRepository,
	productoRepo repository.ProductoRepository,
	ajustes AjustesService,
	productoCache *cache.ProductoCache,
	impresora formatter.Impresora,
	logger *zap.Logger,
) DespachoService {
	return &despachoService{
		despachoRepo:  despachoRepo,
		tiendaRepo:    tiendaRepo,
		productoRepo:  productoRepo,
		ajustes:       ajustes,
		productoCache: productoCache,
		impresora:     impresora,
		logger:        logger,
	}
}

// Registrar ejecuta el flujo completo de registro de un despacho:
// resolver carrito → guardián de crédito → verificación de stock → política
// de aprobación → commit inmediato o cola de pendientes.
func (s *despachoService) Registrar(ctx context.Context, req *models.RegistrarDespachoRequest) (*models.ResultadoDespacho, error) {
	logger := s.logger.With(
		zap.String("operation", "registrar_despacho"),
		zap.Int("id_tienda", req.IDTienda),
		zap.Int("folio", req.Folio),
	)

	if len(req.Items) == 0 {
		return nil, ErrCarritoVacio
	}
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, fmt.Errorf("%w: %s x%d", ErrCantidadInvalida, item.CodigoProducto, item.Cantidad)
		}
	}

	tienda, err := s.tiendaRepo.GetByID(ctx, req.IDTienda)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo tienda: %w", err)
	}
	if tienda == nil {
		return nil, fmt.Errorf("%w: %d", ErrTiendaNoEncontrada, req.IDTienda)
	}

	// Los ajustes se leen una sola vez al inicio; el resto del flujo usa
	// este snapshot aunque un admin cambie los interruptores en paralelo
	ajustes, err := s.ajustes.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	productos, items, montoTotal, err := s.resolverCarrito(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	ahora := time.Now()

	despachosActivos, err := s.despachoRepo.ListActivosByTienda(ctx, req.IDTienda)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo despachos activos: %w", err)
	}

	decision := guard.EvaluarCredito(tienda, montoTotal, despachosActivos, ahora)
	if !decision.Permitido {
		logger.Info("Despacho bloqueado por guardián de crédito",
			zap.String("motivo", string(decision.Motivo)),
			zap.String("monto_total", montoTotal.String()))
		return &models.ResultadoDespacho{
			Estado: models.ResultadoBloqueado,
			Motivo: decision.Motivo,
		}, nil
	}

	// Pre-verificación de stock con los valores leídos; la verificación
	// definitiva ocurre dentro de la transacción de commit
	for _, item := range req.Items {
		if productos[item.CodigoProducto].Stock < item.Cantidad {
			logger.Info("Despacho bloqueado por stock insuficiente",
				zap.String("codigo_producto", item.CodigoProducto),
				zap.Int("cantidad", item.Cantidad))
			return &models.ResultadoDespacho{
				Estado: models.ResultadoBloqueado,
				Motivo: models.BloqueoStock,
			}, nil
		}
	}

	despacho := &models.Despacho{
		ID:               uuid.New(),
		Folio:            req.Folio,
		IDTienda:         req.IDTienda,
		Fecha:            ahora,
		Items:            items,
		MontoTotal:       montoTotal,
		Estado:           models.DespachoActivo,
		EstadoAprobacion: guard.EstadoInicialAprobacion(models.EntidadDespacho, ajustes),
		AutorizadoPor:    req.Usuario,
		Chofer:           req.Chofer,
		Patente:          req.Patente,
		FechaVencimiento: ahora.AddDate(0, 0, tienda.PlazoPago()),
	}

	if despacho.EstadoAprobacion == models.AprobacionPendiente {
		if err := s.despachoRepo.CrearPendiente(ctx, despacho); err != nil {
			return nil, fmt.Errorf("error creando despacho pendiente: %w", err)
		}

		logger.Info("Despacho en cola de aprobación",
			zap.String("id", despacho.ID.String()),
			zap.String("monto_total", montoTotal.String()))
		return &models.ResultadoDespacho{
			Estado:           models.ResultadoPendiente,
			ID:               despacho.ID,
			Folio:            despacho.Folio,
			MontoTotal:       montoTotal,
			FechaVencimiento: despacho.FechaVencimiento,
		}, nil
	}

	err = s.despachoRepo.CrearComprometido(ctx, despacho)
	if errors.Is(err, repository.ErrStockInsuficiente) {
		// Otro despacho se llevó el stock entre la pre-verificación y el
		// commit; la transacción no aplicó nada
		logger.Info("Despacho bloqueado por stock en commit", zap.Error(err))
		return &models.ResultadoDespacho{
			Estado: models.ResultadoBloqueado,
			Motivo: models.BloqueoStock,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error comprometiendo despacho: %w", err)
	}

	s.invalidarProductos(ctx, despacho.Items)
	s.imprimirDespacho(tienda, productos, despacho)

	logger.Info("Despacho comprometido",
		zap.String("id", despacho.ID.String()),
		zap.String("monto_total", montoTotal.String()),
		zap.Time("fecha_vencimiento", despacho.FechaVencimiento))

	return &models.ResultadoDespacho{
		Estado:           models.ResultadoComprometido,
		ID:               despacho.ID,
		Folio:            despacho.Folio,
		MontoTotal:       montoTotal,
		FechaVencimiento: despacho.FechaVencimiento,
	}, nil
}

// resolverCarrito carga los productos del carrito (caché primero) y arma las
// líneas con el precio de suministro vigente. El precio lo fija el producto,
// nunca el cliente.
func (s *despachoService) resolverCarrito(ctx context.Context, carrito []models.ItemCarrito) (map[string]*models.Producto, []models.DespachoItem, decimal.Decimal, error) {
	productos := make(map[string]*models.Producto, len(carrito))
	var faltantes []string

	for _, item := range carrito {
		if p := s.productoCache.Get(ctx, item.CodigoProducto); p != nil {
			productos[item.CodigoProducto] = p
			continue
		}
		faltantes = append(faltantes, item.CodigoProducto)
	}

	if len(faltantes) > 0 {
		desdeDB, err := s.productoRepo.GetByCodigos(ctx, faltantes)
		if err != nil {
			return nil, nil, decimal.Zero, fmt.Errorf("error obteniendo productos: %w", err)
		}
		for codigo, p := range desdeDB {
			productos[codigo] = p
			s.productoCache.Set(ctx, p)
		}
	}

	items := make([]models.DespachoItem, 0, len(carrito))
	montoTotal := decimal.Zero

	for _, item := range carrito {
		producto, ok := productos[item.CodigoProducto]
		if !ok || !producto.Activo {
			return nil, nil, decimal.Zero, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.CodigoProducto)
		}

		linea := models.DespachoItem{
			CodigoProducto:   item.CodigoProducto,
			Cantidad:         item.Cantidad,
			PrecioSuministro: producto.PrecioSuministro,
		}
		items = append(items, linea)
		montoTotal = montoTotal.Add(linea.Subtotal())
	}

	return productos, items, montoTotal, nil
}

func (s *despachoService) invalidarProductos(ctx context.Context, items []models.DespachoItem) {
	codigos := make([]string, len(items))
	for i, item := range items {
		codigos[i] = item.CodigoProducto
	}
	s.productoCache.Invalidar(ctx, codigos...)
}

// imprimirDespacho arma el documento y lo entrega a la impresora sin esperar
func (s *despachoService) imprimirDespacho(tienda *models.Tienda, productos map[string]*models.Producto, despacho *models.Despacho) {
	lineas := make([]formatter.LineaDocumento, 0, len(despacho.Items))
	for _, item := range despacho.Items {
		descripcion := item.CodigoProducto
		if p, ok := productos[item.CodigoProducto]; ok {
			descripcion = p.Nombre
		}
		lineas = append(lineas, formatter.LineaDocumento{
			Descripcion:    descripcion,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioSuministro,
		})
	}

	vence := despacho.FechaVencimiento
	doc := &formatter.Documento{
		Titulo:        "Despacho",
		Folio:         fmt.Sprintf("D-%04d", despacho.Folio),
		Fecha:         despacho.Fecha,
		Contraparte:   tienda.Nombre,
		Items:         lineas,
		Total:         despacho.MontoTotal,
		AutorizadoPor: despacho.AutorizadoPor,
		Vencimiento:   &vence,
	}

	go s.impresora.Imprimir(doc)
}

// GetByID obtiene un despacho con sus líneas
func (s *despachoService) GetByID(ctx context.Context, id uuid.UUID) (*models.Despacho, error) {
	despacho, err := s.despachoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo despacho: %w", err)
	}
	return despacho, nil
}

// ListByTienda obtiene el historial de despachos de una tienda
func (s *despachoService) ListByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error) {
	despachos, err := s.despachoRepo.ListByTienda(ctx, idTienda)
	if err != nil {
		return nil, fmt.Errorf("error listando despachos: %w", err)
	}
	return despachos, nil
}

// Anular revierte el efecto financiero restante de un despacho comprometido
func (s *despachoService) Anular(ctx context.Context, id uuid.UUID, req *models.AnularDespachoRequest) error {
	if err := s.despachoRepo.Anular(ctx, id, req.RestaurarStock, req.Usuario); err != nil {
		return err
	}

	if req.RestaurarStock {
		if despacho, err := s.despachoRepo.GetByID(ctx, id); err == nil && despacho != nil {
			s.invalidarProductos(ctx, despacho.Items)
		}
	}

	s.logger.Info("Despacho anulado",
		zap.String("operation", "anular_despacho"),
		zap.String("id", id.String()),
		zap.Bool("restaurar_stock", req.RestaurarStock),
		zap.String("usuario", req.Usuario))
	return nil
}

// DevolucionParcial devuelve parte de una línea del despacho
func (s *despachoService) DevolucionParcial(ctx context.Context, id uuid.UUID, req *models.DevolucionParcialRequest) error {
	if req.Cantidad <= 0 {
		return fmt.Errorf("%w: %d", ErrCantidadInvalida, req.Cantidad)
	}
	if !models.MotivoDevolucionValido(req.Motivo) {
		return fmt.Errorf("%w: %s", ErrMotivoInvalido, req.Motivo)
	}

	err := s.despachoRepo.DevolucionParcial(ctx, id, req.CodigoProducto, req.Cantidad, req.Motivo, req.Usuario)
	if err != nil {
		return err
	}

	if req.Motivo == models.DevolucionBuenEstado {
		s.productoCache.Invalidar(ctx, req.CodigoProducto)
	}

	s.logger.Info("Devolución parcial registrada",
		zap.String("operation", "devolucion_parcial"),
		zap.String("id", id.String()),
		zap.String("codigo_producto", req.CodigoProducto),
		zap.Int("cantidad", req.Cantidad),
		zap.String("motivo", string(req.Motivo)))
	return nil
}
