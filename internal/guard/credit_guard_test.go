package guard

import (
	"testing"
	"time"

	"pagomatic-service/internal/models"

	"github.com/shopspring/decimal"
)

func tiendaDePrueba(deuda, limite int64, activa bool) *models.Tienda {
	return &models.Tienda{
		ID:            1,
		Nombre:        "Almacén Central",
		DeudaTotal:    decimal.NewFromInt(deuda),
		LimiteCredito: decimal.NewFromInt(limite),
		PlazoPagoDias: 15,
		Activa:        activa,
	}
}

func TestEvaluarCredito_TiendaInactiva(t *testing.T) {
	tienda := tiendaDePrueba(0, 20000, false)

	// Inactiva bloquea sin importar deuda ni límite
	decision := EvaluarCredito(tienda, decimal.NewFromInt(1), nil, time.Now())
	if decision.Permitido {
		t.Fatal("se esperaba bloqueo por tienda inactiva")
	}
	if decision.Motivo != models.BloqueoInactiva {
		t.Fatalf("motivo = %q, se esperaba %q", decision.Motivo, models.BloqueoInactiva)
	}
}

func TestEvaluarCredito_Morosidad(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tienda := tiendaDePrueba(1000, 50000, true)

	vencido := &models.Despacho{
		Estado:           models.DespachoActivo,
		EstadoAprobacion: models.AprobacionNoRequerida,
		FechaVencimiento: ahora.AddDate(0, 0, -3),
	}

	decision := EvaluarCredito(tienda, decimal.NewFromInt(500), []*models.Despacho{vencido}, ahora)
	if decision.Permitido || decision.Motivo != models.BloqueoMorosidad {
		t.Fatalf("se esperaba bloqueo por morosidad, got %+v", decision)
	}
}

func TestEvaluarCredito_DespachoPendienteNoCuentaComoMoroso(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tienda := tiendaDePrueba(0, 0, true)

	// Un despacho pendiente de aprobación es inerte: aunque su fecha de
	// vencimiento haya pasado, no constituye morosidad.
	pendiente := &models.Despacho{
		Estado:           models.DespachoActivo,
		EstadoAprobacion: models.AprobacionPendiente,
		FechaVencimiento: ahora.AddDate(0, 0, -10),
	}

	decision := EvaluarCredito(tienda, decimal.NewFromInt(500), []*models.Despacho{pendiente}, ahora)
	if !decision.Permitido {
		t.Fatalf("no se esperaba bloqueo, got motivo %q", decision.Motivo)
	}
}

func TestEvaluarCredito_LimiteCredito(t *testing.T) {
	// Escenario de referencia: límite 20000, deuda 18000, carrito 3000
	tienda := tiendaDePrueba(18000, 20000, true)

	decision := EvaluarCredito(tienda, decimal.NewFromInt(3000), nil, time.Now())
	if decision.Permitido || decision.Motivo != models.BloqueoLimiteCredito {
		t.Fatalf("se esperaba bloqueo por límite de crédito, got %+v", decision)
	}

	// Justo en el límite se permite
	decision = EvaluarCredito(tienda, decimal.NewFromInt(2000), nil, time.Now())
	if !decision.Permitido {
		t.Fatalf("deuda proyectada igual al límite debe permitirse, got motivo %q", decision.Motivo)
	}
}

func TestEvaluarCredito_LimiteCeroEsSinTope(t *testing.T) {
	tienda := tiendaDePrueba(1000000, 0, true)

	decision := EvaluarCredito(tienda, decimal.NewFromInt(999999), nil, time.Now())
	if !decision.Permitido {
		t.Fatalf("límite 0 significa sin tope, got motivo %q", decision.Motivo)
	}
}

func TestEvaluarCredito_OrdenDeReglas(t *testing.T) {
	ahora := time.Now()

	// Inactiva y morosa y sobre el límite: gana inactiva
	tienda := tiendaDePrueba(18000, 20000, false)
	vencido := &models.Despacho{
		Estado:           models.DespachoActivo,
		FechaVencimiento: ahora.AddDate(0, 0, -1),
	}

	decision := EvaluarCredito(tienda, decimal.NewFromInt(3000), []*models.Despacho{vencido}, ahora)
	if decision.Motivo != models.BloqueoInactiva {
		t.Fatalf("la regla de inactividad va primero, got %q", decision.Motivo)
	}

	// Morosa y sobre el límite: gana morosidad
	tienda.Activa = true
	decision = EvaluarCredito(tienda, decimal.NewFromInt(3000), []*models.Despacho{vencido}, ahora)
	if decision.Motivo != models.BloqueoMorosidad {
		t.Fatalf("la regla de morosidad va antes que el límite, got %q", decision.Motivo)
	}
}
