package guard

import (
	"time"

	"pagomatic-service/internal/models"

	"github.com/shopspring/decimal"
)

// DecisionCredito es el veredicto del guardián de crédito sobre un despacho
// prospectivo. Sin efectos secundarios: puro sobre sus entradas.
type DecisionCredito struct {
	Permitido bool
	Motivo    models.MotivoBloqueo
}

// Permitir construye una decisión favorable
func Permitir() DecisionCredito {
	return DecisionCredito{Permitido: true}
}

// Bloquear construye una decisión de rechazo con su código de motivo
func Bloquear(motivo models.MotivoBloqueo) DecisionCredito {
	return DecisionCredito{Permitido: false, Motivo: motivo}
}

// EvaluarCredito aplica las reglas de crédito en orden; gana la primera que
// calce:
//  1. tienda inactiva
//  2. tienda con despachos activos vencidos (morosidad)
//  3. deuda actual + total del carrito supera el límite de crédito
//     (solo cuando la tienda tiene límite configurado)
//
// Debe re-evaluarse al momento del commit, no solo al armar el carrito.
func EvaluarCredito(tienda *models.Tienda, totalCarrito decimal.Decimal, despachosActivos []*models.Despacho, ahora time.Time) DecisionCredito {
	if !tienda.Activa {
		return Bloquear(models.BloqueoInactiva)
	}

	for _, d := range despachosActivos {
		if d.Vencido(ahora) {
			return Bloquear(models.BloqueoMorosidad)
		}
	}

	if tienda.TieneLimiteCredito() {
		deudaProyectada := tienda.DeudaTotal.Add(totalCarrito)
		if deudaProyectada.GreaterThan(tienda.LimiteCredito) {
			return Bloquear(models.BloqueoLimiteCredito)
		}
	}

	return Permitir()
}
