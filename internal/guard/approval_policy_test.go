package guard

import (
	"testing"

	"pagomatic-service/internal/models"
)

func TestRequiereAprobacion(t *testing.T) {
	ajustes := &models.Ajustes{
		RequiereAprobacionDespacho: true,
		RequiereAprobacionPago:     false,
		RequiereAprobacionFactura:  true,
	}

	casos := []struct {
		tipo     models.TipoEntidad
		esperado bool
	}{
		{models.EntidadDespacho, true},
		{models.EntidadPagoProveedor, false},
		{models.EntidadAbonoTienda, false},
		{models.EntidadFactura, true},
	}

	for _, c := range casos {
		if got := RequiereAprobacion(c.tipo, ajustes); got != c.esperado {
			t.Errorf("RequiereAprobacion(%q) = %v, se esperaba %v", c.tipo, got, c.esperado)
		}
	}
}

func TestRequiereAprobacion_PagoYAbonoCompartenInterruptor(t *testing.T) {
	ajustes := &models.Ajustes{RequiereAprobacionPago: true}

	if !RequiereAprobacion(models.EntidadPagoProveedor, ajustes) {
		t.Error("pago a proveedor debe seguir el interruptor de pagos")
	}
	if !RequiereAprobacion(models.EntidadAbonoTienda, ajustes) {
		t.Error("abono de tienda debe seguir el interruptor de pagos")
	}
}

func TestEstadoInicialAprobacion(t *testing.T) {
	ajustes := &models.Ajustes{RequiereAprobacionDespacho: true}

	if got := EstadoInicialAprobacion(models.EntidadDespacho, ajustes); got != models.AprobacionPendiente {
		t.Errorf("estado inicial = %q, se esperaba pendiente", got)
	}
	if got := EstadoInicialAprobacion(models.EntidadFactura, ajustes); got != models.AprobacionNoRequerida {
		t.Errorf("estado inicial = %q, se esperaba no_requerida", got)
	}
}
