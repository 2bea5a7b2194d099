package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func sembrarMundo() *mundo {
	m := nuevoMundo()
	m.tiendas[1] = &models.Tienda{
		ID:            1,
		Nombre:        "Minimarket El Sol",
		DeudaTotal:    decimal.NewFromInt(18000),
		LimiteCredito: decimal.NewFromInt(20000),
		PlazoPagoDias: 15,
		Activa:        true,
	}
	m.productos["B2L"] = &models.Producto{
		Codigo: "B2L", Nombre: "Bebida 2L", Stock: 100,
		PrecioSuministro: decimal.NewFromInt(1500), Activo: true,
	}
	m.productos["A500"] = &models.Producto{
		Codigo: "A500", Nombre: "Agua 500ml", Stock: 50,
		PrecioSuministro: decimal.NewFromInt(400), Activo: true,
	}
	return m
}

func armarDespachoService(m *mundo) (DespachoService, *fakeImpresora) {
	impresora := nuevaFakeImpresora()
	svc := NewDespachoService(
		&fakeDespachoRepo{m}, &fakeTiendaRepo{m}, &fakeProductoRepo{m},
		&fakeAjustesService{m}, cacheDePrueba(), impresora, zap.NewNop(),
	)
	return svc, impresora
}

func armarAprobacionService(m *mundo, impresora *fakeImpresora) AprobacionService {
	return NewAprobacionService(
		&fakeDespachoRepo{m}, &fakePagoRepo{m}, &fakeFacturaRepo{m},
		&fakeTiendaRepo{m}, cacheDePrueba(), impresora, zap.NewNop(),
	)
}

func requestDespacho(cantidad int) *models.RegistrarDespachoRequest {
	return &models.RegistrarDespachoRequest{
		IDTienda: 1,
		Folio:    42,
		Items:    []models.ItemCarrito{{CodigoProducto: "B2L", Cantidad: cantidad}},
		Usuario:  "carla",
	}
}

func TestRegistrarDespacho_Comprometido(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, impresora := armarDespachoService(m)

	antes := time.Now()
	resultado, err := svc.Registrar(context.Background(), requestDespacho(10))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}

	if resultado.Estado != models.ResultadoComprometido {
		t.Fatalf("estado = %s, quería comprometido", resultado.Estado)
	}
	if !resultado.MontoTotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("monto total = %s, quería 15000", resultado.MontoTotal)
	}

	if m.productos["B2L"].Stock != 90 {
		t.Errorf("stock = %d, quería 90", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("deuda = %s, quería 15000", m.tiendas[1].DeudaTotal)
	}

	// Vencimiento = fecha + plazo de la tienda
	esperado := antes.AddDate(0, 0, 15)
	if resultado.FechaVencimiento.Before(esperado.Add(-time.Minute)) ||
		resultado.FechaVencimiento.After(esperado.Add(time.Minute)) {
		t.Errorf("fecha vencimiento = %v, quería ~%v", resultado.FechaVencimiento, esperado)
	}

	doc := impresora.esperar(t)
	if doc.Contraparte != "Minimarket El Sol" {
		t.Errorf("contraparte del documento = %q", doc.Contraparte)
	}
}

func TestRegistrarDespacho_BloqueadoPorLimiteCredito(t *testing.T) {
	// Deuda 18000, límite 20000: un carrito de 3000 proyecta 21000
	m := sembrarMundo()
	svc, impresora := armarDespachoService(m)

	resultado, err := svc.Registrar(context.Background(), requestDespacho(2))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}

	if !resultado.Bloqueado() || resultado.Motivo != models.BloqueoLimiteCredito {
		t.Fatalf("resultado = %+v, quería bloqueado por credit_limit", resultado)
	}

	// Un bloqueo no persiste nada ni toca el mundo
	if len(m.despachos) != 0 {
		t.Error("no debió persistirse ningún despacho")
	}
	if m.productos["B2L"].Stock != 100 {
		t.Errorf("stock = %d, el bloqueo no debe descontar", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("deuda = %s, el bloqueo no debe cambiarla", m.tiendas[1].DeudaTotal)
	}
	if impresora.cantidad() != 0 {
		t.Error("un despacho bloqueado no se imprime")
	}
}

func TestRegistrarDespacho_LimiteCeroEsSinTope(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].LimiteCredito = decimal.Zero
	m.tiendas[1].DeudaTotal = decimal.NewFromInt(1000000)
	svc, _ := armarDespachoService(m)

	resultado, err := svc.Registrar(context.Background(), requestDespacho(10))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}
	if resultado.Estado != models.ResultadoComprometido {
		t.Fatalf("estado = %s, límite cero significa crédito sin tope", resultado.Estado)
	}
}

func TestRegistrarDespacho_TiendaInactivaTieneProridad(t *testing.T) {
	// Inactiva, morosa y sobre el límite a la vez: gana inactiva
	m := sembrarMundo()
	m.tiendas[1].Activa = false
	m.tiendas[1].DeudaTotal = decimal.NewFromInt(50000)
	svc, _ := armarDespachoService(m)

	resultado, err := svc.Registrar(context.Background(), requestDespacho(2))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}
	if !resultado.Bloqueado() || resultado.Motivo != models.BloqueoInactiva {
		t.Fatalf("motivo = %s, quería inactive", resultado.Motivo)
	}
}

func TestRegistrarDespacho_TiendaMorosa(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.NewFromInt(100)
	svc, _ := armarDespachoService(m)

	// Primero un despacho comprometido ya vencido
	vencido := &models.Despacho{
		ID:       uuid.New(),
		IDTienda: 1,
		Estado:   models.DespachoActivo,
		Items: []models.DespachoItem{
			{CodigoProducto: "B2L", Cantidad: 1, PrecioSuministro: decimal.NewFromInt(1500)},
		},
		MontoTotal:       decimal.NewFromInt(1500),
		EstadoAprobacion: models.AprobacionNoRequerida,
		FechaVencimiento: time.Now().AddDate(0, 0, -3),
	}
	m.despachos[vencido.ID] = vencido

	resultado, err := svc.Registrar(context.Background(), requestDespacho(1))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}
	if !resultado.Bloqueado() || resultado.Motivo != models.BloqueoMorosidad {
		t.Fatalf("motivo = %s, quería overdue", resultado.Motivo)
	}
}

func TestRegistrarDespacho_PendienteNoCuentaComoMoroso(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, _ := armarDespachoService(m)

	// Despacho pendiente con fecha de vencimiento pasada: inerte, no moroso
	pendiente := &models.Despacho{
		ID:               uuid.New(),
		IDTienda:         1,
		Estado:           models.DespachoActivo,
		EstadoAprobacion: models.AprobacionPendiente,
		FechaVencimiento: time.Now().AddDate(0, 0, -3),
	}
	m.despachos[pendiente.ID] = pendiente

	resultado, err := svc.Registrar(context.Background(), requestDespacho(1))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}
	if resultado.Estado != models.ResultadoComprometido {
		t.Fatalf("estado = %s, un pendiente vencido no bloquea", resultado.Estado)
	}
}

func TestRegistrarDespacho_BloqueadoPorStock(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	m.tiendas[1].LimiteCredito = decimal.Zero
	m.productos["B2L"].Stock = 5
	svc, _ := armarDespachoService(m)

	resultado, err := svc.Registrar(context.Background(), requestDespacho(10))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}
	if !resultado.Bloqueado() || resultado.Motivo != models.BloqueoStock {
		t.Fatalf("resultado = %+v, quería bloqueado por stock", resultado)
	}
	if m.productos["B2L"].Stock != 5 {
		t.Error("el bloqueo por stock no debe descontar nada")
	}
}

func TestRegistrarDespacho_TiendaInexistente(t *testing.T) {
	m := sembrarMundo()
	svc, _ := armarDespachoService(m)

	req := requestDespacho(1)
	req.IDTienda = 99
	_, err := svc.Registrar(context.Background(), req)
	if !errors.Is(err, ErrTiendaNoEncontrada) {
		t.Fatalf("err = %v, quería ErrTiendaNoEncontrada", err)
	}
}

func TestRegistrarDespacho_CantidadNegativaNoAplicaNada(t *testing.T) {
	m := sembrarMundo()
	svc, impresora := armarDespachoService(m)

	_, err := svc.Registrar(context.Background(), requestDespacho(-5))
	if !errors.Is(err, ErrCantidadInvalida) {
		t.Fatalf("err = %v, quería ErrCantidadInvalida", err)
	}

	if m.productos["B2L"].Stock != 100 {
		t.Errorf("stock = %d, una cantidad negativa no debe mutar stock", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("deuda = %s, una cantidad negativa no debe mutar deuda", m.tiendas[1].DeudaTotal)
	}
	if len(m.despachos) != 0 {
		t.Error("no debe persistirse ningún despacho")
	}
	if impresora.cantidad() != 0 {
		t.Error("no debe imprimirse nada")
	}
}

func TestRegistrarDespacho_CantidadCeroEsInvalida(t *testing.T) {
	m := sembrarMundo()
	svc, _ := armarDespachoService(m)

	req := requestDespacho(10)
	req.Items = append(req.Items, models.ItemCarrito{CodigoProducto: "A500", Cantidad: 0})
	_, err := svc.Registrar(context.Background(), req)
	if !errors.Is(err, ErrCantidadInvalida) {
		t.Fatalf("err = %v, quería ErrCantidadInvalida", err)
	}
	if m.productos["B2L"].Stock != 100 {
		t.Error("una línea inválida invalida el carrito completo")
	}
}

func TestRegistrarDespacho_ConAprobacionQuedaPendiente(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	m.ajustes.RequiereAprobacionDespacho = true
	svc, impresora := armarDespachoService(m)

	resultado, err := svc.Registrar(context.Background(), requestDespacho(10))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}

	if resultado.Estado != models.ResultadoPendiente {
		t.Fatalf("estado = %s, quería pendiente", resultado.Estado)
	}

	// Pendiente es económicamente inerte
	if m.productos["B2L"].Stock != 100 {
		t.Errorf("stock = %d, un pendiente no descuenta", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.IsZero() {
		t.Errorf("deuda = %s, un pendiente no aumenta deuda", m.tiendas[1].DeudaTotal)
	}
	if impresora.cantidad() != 0 {
		t.Error("un pendiente no se imprime hasta aprobarse")
	}

	d := m.despachos[resultado.ID]
	if d == nil || d.EstadoAprobacion != models.AprobacionPendiente {
		t.Fatal("el despacho debió persistirse con aprobación pendiente")
	}
}

func TestAprobarDespacho_AplicaEfectosUnaVez(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	m.ajustes.RequiereAprobacionDespacho = true
	svc, impresora := armarDespachoService(m)
	aprobaciones := armarAprobacionService(m, impresora)

	resultado, err := svc.Registrar(context.Background(), requestDespacho(10))
	if err != nil {
		t.Fatalf("Registrar: %v", err)
	}

	if err := aprobaciones.Aprobar(context.Background(), models.EntidadDespacho, resultado.ID, "marcos"); err != nil {
		t.Fatalf("Aprobar: %v", err)
	}

	if m.productos["B2L"].Stock != 90 {
		t.Errorf("stock = %d, quería 90 tras aprobar", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("deuda = %s, quería 15000 tras aprobar", m.tiendas[1].DeudaTotal)
	}
	if m.despachos[resultado.ID].AutorizadoPor != "marcos" {
		t.Errorf("autorizado por = %q, quería marcos", m.despachos[resultado.ID].AutorizadoPor)
	}

	doc := impresora.esperar(t)
	if doc.AutorizadoPor != "marcos" {
		t.Errorf("documento autorizado por = %q", doc.AutorizadoPor)
	}

	// Segunda aprobación: rechazada sin aplicar nada de nuevo
	err = aprobaciones.Aprobar(context.Background(), models.EntidadDespacho, resultado.ID, "otra")
	if !errors.Is(err, repository.ErrNoPendiente) {
		t.Fatalf("err = %v, quería ErrNoPendiente", err)
	}
	if m.productos["B2L"].Stock != 90 {
		t.Errorf("stock = %d, la doble aprobación no debe volver a descontar", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("deuda = %s, la doble aprobación no debe duplicar", m.tiendas[1].DeudaTotal)
	}
}

func TestRechazarDespacho_QuedaInerteParaSiempre(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	m.ajustes.RequiereAprobacionDespacho = true
	svc, impresora := armarDespachoService(m)
	aprobaciones := armarAprobacionService(m, impresora)

	resultado, _ := svc.Registrar(context.Background(), requestDespacho(10))

	if err := aprobaciones.Rechazar(context.Background(), models.EntidadDespacho, resultado.ID, "folio duplicado", "marcos"); err != nil {
		t.Fatalf("Rechazar: %v", err)
	}

	d := m.despachos[resultado.ID]
	if d.EstadoAprobacion != models.AprobacionRechazada || d.MotivoRechazo != "folio duplicado" {
		t.Fatalf("despacho = %+v, quería rechazado con motivo", d)
	}
	if m.productos["B2L"].Stock != 100 {
		t.Error("el rechazo no toca stock")
	}

	// Un rechazado no se puede aprobar después
	err := aprobaciones.Aprobar(context.Background(), models.EntidadDespacho, resultado.ID, "marcos")
	if !errors.Is(err, repository.ErrNoPendiente) {
		t.Fatalf("err = %v, un rechazado no vuelve a la cola", err)
	}
}

func TestDevolucionParcial_DanadoNoRestauraStock(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, _ := armarDespachoService(m)

	req := requestDespacho(10)
	req.Items = []models.ItemCarrito{{CodigoProducto: "A500", Cantidad: 10}}
	resultado, _ := svc.Registrar(context.Background(), req)

	// Devolver 2 dañados de 10: deuda baja 800, stock no vuelve
	err := svc.DevolucionParcial(context.Background(), resultado.ID, &models.DevolucionParcialRequest{
		CodigoProducto: "A500",
		Cantidad:       2,
		Motivo:         models.DevolucionDanado,
		Usuario:        "carla",
	})
	if err != nil {
		t.Fatalf("DevolucionParcial: %v", err)
	}

	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(3200)) {
		t.Errorf("deuda = %s, quería 3200 (4000 - 800)", m.tiendas[1].DeudaTotal)
	}
	if m.productos["A500"].Stock != 40 {
		t.Errorf("stock = %d, lo dañado no vuelve a bodega", m.productos["A500"].Stock)
	}
	if m.despachos[resultado.ID].Estado != models.DespachoDevolucionParcial {
		t.Errorf("estado = %s, quería devolucion_parcial", m.despachos[resultado.ID].Estado)
	}
}

func TestDevolucionParcial_BuenEstadoRestauraStock(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, _ := armarDespachoService(m)

	resultado, _ := svc.Registrar(context.Background(), requestDespacho(10))

	err := svc.DevolucionParcial(context.Background(), resultado.ID, &models.DevolucionParcialRequest{
		CodigoProducto: "B2L",
		Cantidad:       10,
		Motivo:         models.DevolucionBuenEstado,
		Usuario:        "carla",
	})
	if err != nil {
		t.Fatalf("DevolucionParcial: %v", err)
	}

	if m.productos["B2L"].Stock != 100 {
		t.Errorf("stock = %d, el buen estado vuelve completo", m.productos["B2L"].Stock)
	}
	if !m.tiendas[1].DeudaTotal.IsZero() {
		t.Errorf("deuda = %s, quería 0", m.tiendas[1].DeudaTotal)
	}
	// Todas las líneas devueltas: el despacho queda devuelto
	if m.despachos[resultado.ID].Estado != models.DespachoDevuelto {
		t.Errorf("estado = %s, quería devuelto", m.despachos[resultado.ID].Estado)
	}
}

func TestDevolucionParcial_NoPuedeExcederLoDespachado(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, _ := armarDespachoService(m)

	resultado, _ := svc.Registrar(context.Background(), requestDespacho(5))

	err := svc.DevolucionParcial(context.Background(), resultado.ID, &models.DevolucionParcialRequest{
		CodigoProducto: "B2L",
		Cantidad:       6,
		Motivo:         models.DevolucionBuenEstado,
		Usuario:        "carla",
	})
	if !errors.Is(err, repository.ErrDevolucionExcedida) {
		t.Fatalf("err = %v, quería ErrDevolucionExcedida", err)
	}
	if m.productos["B2L"].Stock != 95 {
		t.Error("una devolución excedida no debe mutar nada")
	}
}

func TestDevolucionParcial_CantidadNegativaEsInvalida(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, _ := armarDespachoService(m)

	resultado, _ := svc.Registrar(context.Background(), requestDespacho(10))

	err := svc.DevolucionParcial(context.Background(), resultado.ID, &models.DevolucionParcialRequest{
		CodigoProducto: "B2L",
		Cantidad:       -3,
		Motivo:         models.DevolucionBuenEstado,
		Usuario:        "carla",
	})
	if !errors.Is(err, ErrCantidadInvalida) {
		t.Fatalf("err = %v, quería ErrCantidadInvalida", err)
	}
	if m.productos["B2L"].Stock != 90 {
		t.Error("una cantidad negativa no debe mutar stock")
	}
	if !m.tiendas[1].DeudaTotal.Equal(decimal.NewFromInt(15000)) {
		t.Error("una cantidad negativa no debe mutar deuda")
	}
}

func TestAnularDespacho_RevierteDeudaRestante(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	svc, _ := armarDespachoService(m)

	resultado, _ := svc.Registrar(context.Background(), requestDespacho(10))

	// Una devolución previa ya descontó parte de la deuda
	if err := svc.DevolucionParcial(context.Background(), resultado.ID, &models.DevolucionParcialRequest{
		CodigoProducto: "B2L", Cantidad: 4, Motivo: models.DevolucionDanado, Usuario: "carla",
	}); err != nil {
		t.Fatalf("DevolucionParcial: %v", err)
	}

	if err := svc.Anular(context.Background(), resultado.ID, &models.AnularDespachoRequest{
		RestaurarStock: true,
		Usuario:        "carla",
	}); err != nil {
		t.Fatalf("Anular: %v", err)
	}

	// Solo la deuda restante (6 × 1500) se revierte; las 4 dañadas ya
	// habían bajado la deuda
	if !m.tiendas[1].DeudaTotal.IsZero() {
		t.Errorf("deuda = %s, quería 0", m.tiendas[1].DeudaTotal)
	}
	// Vuelven las 6 no devueltas; las 4 dañadas son merma
	if m.productos["B2L"].Stock != 96 {
		t.Errorf("stock = %d, quería 96", m.productos["B2L"].Stock)
	}
	if m.despachos[resultado.ID].Estado != models.DespachoAnulado {
		t.Errorf("estado = %s, quería anulado", m.despachos[resultado.ID].Estado)
	}
}

func TestAnularDespacho_PendienteNoEsAnulable(t *testing.T) {
	m := sembrarMundo()
	m.tiendas[1].DeudaTotal = decimal.Zero
	m.ajustes.RequiereAprobacionDespacho = true
	svc, _ := armarDespachoService(m)

	resultado, _ := svc.Registrar(context.Background(), requestDespacho(1))

	err := svc.Anular(context.Background(), resultado.ID, &models.AnularDespachoRequest{Usuario: "carla"})
	if !errors.Is(err, repository.ErrNoAnulable) {
		t.Fatalf("err = %v, un pendiente se rechaza, no se anula", err)
	}
}
