package services

import (
	"context"
	"fmt"
	"time"

	"pagomatic-service/internal/cache"
	"pagomatic-service/internal/formatter"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AprobacionService define la interfaz de la cola de aprobaciones: la
// bandeja unificada de despachos, pagos, abonos y facturas pendientes.
type AprobacionService interface {
	ListarPendientes(ctx context.Context) (*models.ColaPendientes, error)
	Conteo(ctx context.Context) (*models.ConteoPendientes, error)

	// Aprobar ejecuta el commit diferido del documento. Una segunda
	// aprobación del mismo documento retorna repository.ErrNoPendiente sin
	// aplicar nada.
	Aprobar(ctx context.Context, tipo models.TipoEntidad, id uuid.UUID, usuario string) error

	// Rechazar deja el documento rechazado para siempre; un documento
	// rechazado no se reactiva, se registra de nuevo.
	Rechazar(ctx context.Context, tipo models.TipoEntidad, id uuid.UUID, motivo, usuario string) error
}

type aprobacionService struct {
	despachoRepo  repository.DespachoRepository
	pagoRepo      repository.PagoRepository
	facturaRepo   repository.FacturaRepository
	tiendaRepo    repository.TiendaRepository
	productoCache *cache.ProductoCache
	impresora     formatter.Impresora
	logger        *zap.Logger
}

// NewAprobacionService crea una nueva instancia del servicio
func NewAprobacionService(
	despachoRepo repository.DespachoRepository,
	pagoRepo repository.PagoRepository,
	facturaRepo repository.FacturaRepository,
	tiendaRepo repository.TiendaRepository,
	productoCache *cache.ProductoCache,
	impresora formatter.Impresora,
	logger *zap.Logger,
) AprobacionService {
	return &aprobacionService{
		despachoRepo:  despachoRepo,
		pagoRepo:      pagoRepo,
		facturaRepo:   facturaRepo,
		tiendaRepo:    tiendaRepo,
		productoCache: productoCache,
		impresora:     impresora,
		logger:        logger,
	}
}

// ListarPendientes arma la bandeja completa de documentos en espera
func (s *aprobacionService) ListarPendientes(ctx context.Context) (*models.ColaPendientes, error) {
	despachos, err := s.despachoRepo.ListPendientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listando despachos pendientes: %w", err)
	}

	pagos, err := s.pagoRepo.ListPagosPendientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listando pagos pendientes: %w", err)
	}

	abonos, err := s.pagoRepo.ListAbonosPendientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listando abonos pendientes: %w", err)
	}

	facturas, err := s.facturaRepo.ListPendientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listando facturas pendientes: %w", err)
	}

	return &models.ColaPendientes{
		Despachos:       despachos,
		PagosProveedor:  pagos,
		AbonosTienda:    abonos,
		Facturas:        facturas,
		TotalPendientes: len(despachos) + len(pagos) + len(abonos) + len(facturas),
	}, nil
}

// Conteo retorna el resumen liviano para el feed en vivo
func (s *aprobacionService) Conteo(ctx context.Context) (*models.ConteoPendientes, error) {
	despachos, err := s.despachoRepo.CountPendientes(ctx)
	if err != nil {
		return nil, err
	}

	pagos, err := s.pagoRepo.CountPagosPendientes(ctx)
	if err != nil {
		return nil, err
	}

	abonos, err := s.pagoRepo.CountAbonosPendientes(ctx)
	if err != nil {
		return nil, err
	}

	facturas, err := s.facturaRepo.CountPendientes(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ConteoPendientes{
		Despachos:      despachos,
		PagosProveedor: pagos,
		AbonosTienda:   abonos,
		Facturas:       facturas,
		Total:          despachos + pagos + abonos + facturas,
		Timestamp:      time.Now().Format(time.RFC3339),
	}, nil
}

// Aprobar despacha el commit diferido según el tipo de documento
func (s *aprobacionService) Aprobar(ctx context.Context, tipo models.TipoEntidad, id uuid.UUID, usuario string) error {
	logger := s.logger.With(
		zap.String("operation", "aprobar"),
		zap.String("tipo", string(tipo)),
		zap.String("id", id.String()),
		zap.String("usuario", usuario),
	)

	var err error
	switch tipo {
	case models.EntidadDespacho:
		err = s.aprobarDespacho(ctx, id, usuario)
	case models.EntidadPagoProveedor:
		_, err = s.pagoRepo.AprobarPago(ctx, id, usuario)
	case models.EntidadAbonoTienda:
		_, err = s.pagoRepo.AprobarAbono(ctx, id, usuario)
	case models.EntidadFactura:
		err = s.aprobarFactura(ctx, id, usuario)
	default:
		return fmt.Errorf("%w: %s", ErrTipoEntidadInvalido, tipo)
	}

	if err != nil {
		logger.Warn("Aprobación fallida", zap.Error(err))
		return err
	}

	logger.Info("Documento aprobado")
	return nil
}

// aprobarDespacho ejecuta el commit diferido del despacho y dispara la
// impresión con los datos ya comprometidos
func (s *aprobacionService) aprobarDespacho(ctx context.Context, id uuid.UUID, usuario string) error {
	despacho, err := s.despachoRepo.AprobarCommit(ctx, id, usuario)
	if err != nil {
		return err
	}

	codigos := make([]string, len(despacho.Items))
	for i, item := range despacho.Items {
		codigos[i] = item.CodigoProducto
	}
	s.productoCache.Invalidar(ctx, codigos...)

	contraparte := fmt.Sprintf("Tienda %d", despacho.IDTienda)
	if tienda, err := s.tiendaRepo.GetByID(ctx, despacho.IDTienda); err == nil && tienda != nil {
		contraparte = tienda.Nombre
	}

	lineas := make([]formatter.LineaDocumento, 0, len(despacho.Items))
	for _, item := range despacho.Items {
		lineas = append(lineas, formatter.LineaDocumento{
			Descripcion:    item.CodigoProducto,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioSuministro,
		})
	}

	vence := despacho.FechaVencimiento
	go s.impresora.Imprimir(&formatter.Documento{
		Titulo:        "Despacho",
		Folio:         fmt.Sprintf("D-%04d", despacho.Folio),
		Fecha:         despacho.Fecha,
		Contraparte:   contraparte,
		Items:         lineas,
		Total:         despacho.MontoTotal,
		AutorizadoPor: usuario,
		Vencimiento:   &vence,
	})

	return nil
}

func (s *aprobacionService) aprobarFactura(ctx context.Context, id uuid.UUID, usuario string) error {
	factura, err := s.facturaRepo.AprobarCommit(ctx, id, usuario)
	if err != nil {
		return err
	}

	// El commit ingresó mercadería y actualizó costos
	codigos := make([]string, len(factura.Items))
	for i, item := range factura.Items {
		codigos[i] = item.CodigoProducto
	}
	s.productoCache.Invalidar(ctx, codigos...)

	return nil
}

// Rechazar marca el documento pendiente como rechazado
func (s *aprobacionService) Rechazar(ctx context.Context, tipo models.TipoEntidad, id uuid.UUID, motivo, usuario string) error {
	logger := s.logger.With(
		zap.String("operation", "rechazar"),
		zap.String("tipo", string(tipo)),
		zap.String("id", id.String()),
		zap.String("usuario", usuario),
	)

	var err error
	switch tipo {
	case models.EntidadDespacho:
		err = s.despachoRepo.Rechazar(ctx, id, motivo, usuario)
	case models.EntidadPagoProveedor:
		err = s.pagoRepo.RechazarPago(ctx, id, motivo, usuario)
	case models.EntidadAbonoTienda:
		err = s.pagoRepo.RechazarAbono(ctx, id, motivo, usuario)
	case models.EntidadFactura:
		err = s.facturaRepo.Rechazar(ctx, id, motivo, usuario)
	default:
		return fmt.Errorf("%w: %s", ErrTipoEntidadInvalido, tipo)
	}

	if err != nil {
		logger.Warn("Rechazo fallido", zap.Error(err))
		return err
	}

	logger.Info("Documento rechazado", zap.String("motivo", motivo))
	return nil
}
