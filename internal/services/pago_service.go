package services

import (
	"context"
	"fmt"

	"pagomatic-service/internal/guard"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PagoService define la interfaz para pagos a proveedor y abonos de tienda.
// Ambos pasan por la misma política de aprobación (interruptor de pagos).
type PagoService interface {
	RegistrarPagoProveedor(ctx context.Context, req *models.RegistrarPagoProveedorRequest) (*models.ResultadoDocumento, error)
	RegistrarAbono(ctx context.Context, req *models.RegistrarAbonoRequest) (*models.ResultadoDocumento, error)
	AnularPago(ctx context.Context, id uuid.UUID, usuario string) error
	AnularAbono(ctx context.Context, id uuid.UUID, usuario string) error
	GetPagoProveedor(ctx context.Context, id uuid.UUID) (*models.PagoProveedor, error)
	GetAbono(ctx context.Context, id uuid.UUID) (*models.AbonoTienda, error)
}

type pagoService struct {
	pagoRepo   repository.PagoRepository
	tiendaRepo repository.TiendaRepository
	ajustes    AjustesService
	logger     *zap.Logger
}

// NewPagoService crea una nueva instancia del servicio
func NewPagoService(pagoRepo repository.PagoRepository, tiendaRepo repository.TiendaRepository, ajustes AjustesService, logger *zap.Logger) PagoService {
	return &pagoService{
		pagoRepo:   pagoRepo,
		tiendaRepo: tiendaRepo,
		ajustes:    ajustes,
		logger:     logger,
	}
}

// RegistrarPagoProveedor registra un pago hacia un proveedor. Si está ligado
// a una factura, el monto se aplica con guardia de sobrepago dentro de la
// transacción de commit.
func (s *pagoService) RegistrarPagoProveedor(ctx context.Context, req *models.RegistrarPagoProveedorRequest) (*models.ResultadoDocumento, error) {
	logger := s.logger.With(
		zap.String("operation", "registrar_pago_proveedor"),
		zap.Int("id_proveedor", req.IDProveedor),
	)

	if !req.Monto.IsPositive() {
		return nil, ErrMontoInvalido
	}

	ajustes, err := s.ajustes.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	pago := &models.PagoProveedor{
		ID:               uuid.New(),
		IDProveedor:      req.IDProveedor,
		IDFactura:        req.IDFactura,
		Monto:            req.Monto,
		Metodo:           req.Metodo,
		Referencia:       req.Referencia,
		Estado:           models.PagoActivo,
		EstadoAprobacion: guard.EstadoInicialAprobacion(models.EntidadPagoProveedor, ajustes),
		AutorizadoPor:    req.Usuario,
	}

	if pago.EstadoAprobacion == models.AprobacionPendiente {
		if err := s.pagoRepo.CrearPagoPendiente(ctx, pago); err != nil {
			return nil, fmt.Errorf("error creando pago pendiente: %w", err)
		}
		logger.Info("Pago en cola de aprobación", zap.String("id", pago.ID.String()))
		return &models.ResultadoDocumento{Estado: models.ResultadoPendiente, ID: pago.ID}, nil
	}

	if err := s.pagoRepo.CrearPagoComprometido(ctx, pago); err != nil {
		return nil, err
	}

	logger.Info("Pago comprometido",
		zap.String("id", pago.ID.String()),
		zap.String("monto", req.Monto.String()),
		zap.String("metodo", req.Metodo))
	return &models.ResultadoDocumento{Estado: models.ResultadoComprometido, ID: pago.ID}, nil
}

// RegistrarAbono registra un abono de tienda que reduce su deuda. Un abono
// mayor que la deuda actual se rechaza con ErrSobrepago.
func (s *pagoService) RegistrarAbono(ctx context.Context, req *models.RegistrarAbonoRequest) (*models.ResultadoDocumento, error) {
	logger := s.logger.With(
		zap.String("operation", "registrar_abono"),
		zap.Int("id_tienda", req.IDTienda),
	)

	if !req.Monto.IsPositive() {
		return nil, ErrMontoInvalido
	}

	tienda, err := s.tiendaRepo.GetByID(ctx, req.IDTienda)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo tienda: %w", err)
	}
	if tienda == nil {
		return nil, fmt.Errorf("%w: %d", ErrTiendaNoEncontrada, req.IDTienda)
	}

	ajustes, err := s.ajustes.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	abono := &models.AbonoTienda{
		ID:               uuid.New(),
		IDTienda:         req.IDTienda,
		IDDespacho:       req.IDDespacho,
		Monto:            req.Monto,
		Metodo:           req.Metodo,
		Referencia:       req.Referencia,
		Estado:           models.PagoActivo,
		EstadoAprobacion: guard.EstadoInicialAprobacion(models.EntidadAbonoTienda, ajustes),
		AutorizadoPor:    req.Usuario,
	}

	if abono.EstadoAprobacion == models.AprobacionPendiente {
		if err := s.pagoRepo.CrearAbonoPendiente(ctx, abono); err != nil {
			return nil, fmt.Errorf("error creando abono pendiente: %w", err)
		}
		logger.Info("Abono en cola de aprobación", zap.String("id", abono.ID.String()))
		return &models.ResultadoDocumento{Estado: models.ResultadoPendiente, ID: abono.ID}, nil
	}

	if err := s.pagoRepo.CrearAbonoComprometido(ctx, abono); err != nil {
		return nil, err
	}

	logger.Info("Abono comprometido",
		zap.String("id", abono.ID.String()),
		zap.String("monto", req.Monto.String()),
		zap.String("metodo", req.Metodo))
	return &models.ResultadoDocumento{Estado: models.ResultadoComprometido, ID: abono.ID}, nil
}

// AnularPago revierte el efecto del pago sobre su factura
func (s *pagoService) AnularPago(ctx context.Context, id uuid.UUID, usuario string) error {
	if err := s.pagoRepo.AnularPago(ctx, id, usuario); err != nil {
		return err
	}
	s.logger.Info("Pago anulado",
		zap.String("operation", "anular_pago"),
		zap.String("id", id.String()),
		zap.String("usuario", usuario))
	return nil
}

// AnularAbono revierte el descuento de deuda del abono
func (s *pagoService) AnularAbono(ctx context.Context, id uuid.UUID, usuario string) error {
	if err := s.pagoRepo.AnularAbono(ctx, id, usuario); err != nil {
		return err
	}
	s.logger.Info("Abono anulado",
		zap.String("operation", "anular_abono"),
		zap.String("id", id.String()),
		zap.String("usuario", usuario))
	return nil
}

// GetPagoProveedor obtiene un pago por ID
func (s *pagoService) GetPagoProveedor(ctx context.Context, id uuid.UUID) (*models.PagoProveedor, error) {
	return s.pagoRepo.GetPagoProveedor(ctx, id)
}

// GetAbono obtiene un abono por ID
func (s *pagoService) GetAbono(ctx context.Context, id uuid.UUID) (*models.AbonoTienda, error) {
	return s.pagoRepo.GetAbono(ctx, id)
}
