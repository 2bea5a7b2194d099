package services

import (
	"context"
	"fmt"

	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"go.uber.org/zap"
)

// AjustesService define la interfaz para los ajustes globales de aprobación
type AjustesService interface {
	// Snapshot lee los ajustes una sola vez al inicio de cada operación.
	// Un cambio de interruptor a mitad de un flujo no puede partir la
	// operación entre dos políticas.
	Snapshot(ctx context.Context) (*models.Ajustes, error)
	Actualizar(ctx context.Context, req *models.ActualizarAjustesRequest) (*models.Ajustes, error)
}

type ajustesService struct {
	repo          repository.AjustesRepository
	auditoriaRepo repository.AuditoriaRepository
	logger        *zap.Logger
}

// NewAjustesService crea una nueva instancia del servicio
func NewAjustesService(repo repository.AjustesRepository, auditoriaRepo repository.AuditoriaRepository, logger *zap.Logger) AjustesService {
	return &ajustesService{
		repo:          repo,
		auditoriaRepo: auditoriaRepo,
		logger:        logger,
	}
}

// Snapshot lee los ajustes vigentes
func (s *ajustesService) Snapshot(ctx context.Context) (*models.Ajustes, error) {
	ajustes, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo ajustes: %w", err)
	}
	return ajustes, nil
}

// Actualizar escribe los interruptores de aprobación. Aplica solo a las
// acciones posteriores, nunca retroactivamente.
func (s *ajustesService) Actualizar(ctx context.Context, req *models.ActualizarAjustesRequest) (*models.Ajustes, error) {
	logger := s.logger.With(
		zap.String("operation", "actualizar_ajustes"),
		zap.String("usuario", req.Usuario),
	)

	ajustes := &models.Ajustes{
		RequiereAprobacionDespacho: req.RequiereAprobacionDespacho,
		RequiereAprobacionPago:     req.RequiereAprobacionPago,
		RequiereAprobacionFactura:  req.RequiereAprobacionFactura,
		UpdatedBy:                  req.Usuario,
	}

	if err := s.repo.Actualizar(ctx, ajustes); err != nil {
		logger.Error("Error actualizando ajustes", zap.Error(err))
		return nil, fmt.Errorf("error actualizando ajustes: %w", err)
	}

	entrada := &models.Auditoria{
		Usuario:   req.Usuario,
		Accion:    "ajustes_actualizados",
		Entidad:   "ajustes",
		IDEntidad: "1",
		Detalles: fmt.Sprintf("despacho=%t pago=%t factura=%t",
			req.RequiereAprobacionDespacho, req.RequiereAprobacionPago, req.RequiereAprobacionFactura),
	}
	if err := s.auditoriaRepo.Crear(ctx, entrada); err != nil {
		logger.Error("Error registrando auditoría de ajustes", zap.Error(err))
	}

	logger.Info("Ajustes actualizados",
		zap.Bool("requiere_aprobacion_despacho", req.RequiereAprobacionDespacho),
		zap.Bool("requiere_aprobacion_pago", req.RequiereAprobacionPago),
		zap.Bool("requiere_aprobacion_factura", req.RequiereAprobacionFactura))

	return ajustes, nil
}
