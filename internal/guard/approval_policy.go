package guard

import "pagomatic-service/internal/models"

// RequiereAprobacion decide si un documento nuevo debe entrar pendiente en
// vez de aplicarse de inmediato. Es solo una consulta de ajustes: no hay
// excepciones por rol; un despacho de un ADMIN también queda en cola si el
// interruptor está activo.
func RequiereAprobacion(tipo models.TipoEntidad, ajustes *models.Ajustes) bool {
	switch tipo {
	case models.EntidadDespacho:
		return ajustes.RequiereAprobacionDespacho
	case models.EntidadPagoProveedor, models.EntidadAbonoTienda:
		return ajustes.RequiereAprobacionPago
	case models.EntidadFactura:
		return ajustes.RequiereAprobacionFactura
	}
	return false
}

// EstadoInicialAprobacion retorna el estado de aprobación con que nace el
// documento según la política
func EstadoInicialAprobacion(tipo models.TipoEntidad, ajustes *models.Ajustes) models.EstadoAprobacion {
	if RequiereAprobacion(tipo, ajustes) {
		return models.AprobacionPendiente
	}
	return models.AprobacionNoRequerida
}
