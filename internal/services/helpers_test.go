package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pagomatic-service/internal/cache"
	"pagomatic-service/internal/formatter"
	"pagomatic-service/internal/models"
	"pagomatic-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func decimalDesdeInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// mundo es el estado compartido de los repositories falsos: un almacén en
// memoria que respeta los mismos contratos que la implementación Postgres
// (guardias de pendiente, stock condicional, sobrepago).
type mundo struct {
	mu        sync.Mutex
	tiendas   map[int]*models.Tienda
	productos map[string]*models.Producto
	despachos map[uuid.UUID]*models.Despacho
	pagos     map[uuid.UUID]*models.PagoProveedor
	abonos    map[uuid.UUID]*models.AbonoTienda
	facturas  map[uuid.UUID]*models.Factura
	ajustes   models.Ajustes
	auditoria []string
}

func nuevoMundo() *mundo {
	return &mundo{
		tiendas:   make(map[int]*models.Tienda),
		productos: make(map[string]*models.Producto),
		despachos: make(map[uuid.UUID]*models.Despacho),
		pagos:     make(map[uuid.UUID]*models.PagoProveedor),
		abonos:    make(map[uuid.UUID]*models.AbonoTienda),
		facturas:  make(map[uuid.UUID]*models.Factura),
	}
}

func (m *mundo) auditar(accion, id string) {
	m.auditoria = append(m.auditoria, fmt.Sprintf("%s:%s", accion, id))
}

// ===== Tienda =====

type fakeTiendaRepo struct{ m *mundo }

func (r *fakeTiendaRepo) GetByID(ctx context.Context, id int) (*models.Tienda, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tiendas[id]
	if !ok {
		return nil, nil
	}
	copia := *t
	return &copia, nil
}

func (r *fakeTiendaRepo) List(ctx context.Context) ([]*models.Tienda, error) {
	return nil, nil
}

func (r *fakeTiendaRepo) Crear(ctx context.Context, tienda *models.Tienda) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.tiendas[tienda.ID] = tienda
	return nil
}

func (r *fakeTiendaRepo) ActualizarConfig(ctx context.Context, tienda *models.Tienda) error {
	return nil
}

// ===== Producto =====

type fakeProductoRepo struct{ m *mundo }

func (r *fakeProductoRepo) GetByCodigo(ctx context.Context, codigo string) (*models.Producto, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.productos[codigo]
	if !ok {
		return nil, nil
	}
	copia := *p
	return &copia, nil
}

func (r *fakeProductoRepo) GetByCodigos(ctx context.Context, codigos []string) (map[string]*models.Producto, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	resultado := make(map[string]*models.Producto)
	for _, codigo := range codigos {
		if p, ok := r.m.productos[codigo]; ok {
			copia := *p
			resultado[codigo] = &copia
		}
	}
	return resultado, nil
}

func (r *fakeProductoRepo) List(ctx context.Context) ([]*models.Producto, error) {
	return nil, nil
}

// ===== Despacho =====

type fakeDespachoRepo struct{ m *mundo }

func (r *fakeDespachoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Despacho, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.despachos[id]
	if !ok {
		return nil, nil
	}
	copia := *d
	copia.Items = append([]models.DespachoItem(nil), d.Items...)
	return &copia, nil
}

func (r *fakeDespachoRepo) ListByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.Despacho
	for _, d := range r.m.despachos {
		if d.IDTienda == idTienda {
			copia := *d
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakeDespachoRepo) ListActivosByTienda(ctx context.Context, idTienda int) ([]*models.Despacho, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.Despacho
	for _, d := range r.m.despachos {
		if d.IDTienda == idTienda &&
			(d.Estado == models.DespachoActivo || d.Estado == models.DespachoDevolucionParcial) {
			copia := *d
			copia.Items = append([]models.DespachoItem(nil), d.Items...)
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakeDespachoRepo) ListPendientes(ctx context.Context) ([]*models.Despacho, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.Despacho
	for _, d := range r.m.despachos {
		if d.EstadoAprobacion == models.AprobacionPendiente {
			copia := *d
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakeDespachoRepo) CountPendientes(ctx context.Context) (int, error) {
	pendientes, _ := r.ListPendientes(ctx)
	return len(pendientes), nil
}

func (r *fakeDespachoRepo) aplicarEfectos(d *models.Despacho) error {
	for _, item := range d.Items {
		p, ok := r.m.productos[item.CodigoProducto]
		if !ok || p.Stock < item.Cantidad {
			return fmt.Errorf("%w: producto %s", repository.ErrStockInsuficiente, item.CodigoProducto)
		}
	}
	for _, item := range d.Items {
		r.m.productos[item.CodigoProducto].Stock -= item.Cantidad
	}
	tienda := r.m.tiendas[d.IDTienda]
	tienda.DeudaTotal = tienda.DeudaTotal.Add(d.MontoTotal)
	return nil
}

func (r *fakeDespachoRepo) CrearComprometido(ctx context.Context, despacho *models.Despacho) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.aplicarEfectos(despacho); err != nil {
		return err
	}
	copia := *despacho
	copia.Items = append([]models.DespachoItem(nil), despacho.Items...)
	r.m.despachos[despacho.ID] = &copia
	r.m.auditar("despacho_comprometido", despacho.ID.String())
	return nil
}

func (r *fakeDespachoRepo) CrearPendiente(ctx context.Context, despacho *models.Despacho) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	copia := *despacho
	copia.Items = append([]models.DespachoItem(nil), despacho.Items...)
	r.m.despachos[despacho.ID] = &copia
	r.m.auditar("despacho_pendiente", despacho.ID.String())
	return nil
}

func (r *fakeDespachoRepo) AprobarCommit(ctx context.Context, id uuid.UUID, usuario string) (*models.Despacho, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.despachos[id]
	if !ok || d.EstadoAprobacion != models.AprobacionPendiente {
		return nil, repository.ErrNoPendiente
	}
	if err := r.aplicarEfectos(d); err != nil {
		return nil, err
	}
	d.EstadoAprobacion = models.AprobacionAprobada
	d.AutorizadoPor = usuario
	r.m.auditar("despacho_aprobado", id.String())
	copia := *d
	copia.Items = append([]models.DespachoItem(nil), d.Items...)
	return &copia, nil
}

func (r *fakeDespachoRepo) Rechazar(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.despachos[id]
	if !ok || d.EstadoAprobacion != models.AprobacionPendiente {
		return repository.ErrNoPendiente
	}
	d.EstadoAprobacion = models.AprobacionRechazada
	d.MotivoRechazo = motivo
	d.AutorizadoPor = usuario
	r.m.auditar("despacho_rechazado", id.String())
	return nil
}

func (r *fakeDespachoRepo) Anular(ctx context.Context, id uuid.UUID, restaurarStock bool, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.despachos[id]
	if !ok {
		return repository.ErrNoAnulable
	}
	anulable := (d.Estado == models.DespachoActivo || d.Estado == models.DespachoDevolucionParcial) &&
		(d.EstadoAprobacion == models.AprobacionNoRequerida || d.EstadoAprobacion == models.AprobacionAprobada)
	if !anulable {
		return repository.ErrNoAnulable
	}

	tienda := r.m.tiendas[d.IDTienda]
	tienda.DeudaTotal = tienda.DeudaTotal.Sub(d.DeudaRestante())

	if restaurarStock {
		for _, item := range d.Items {
			restante := item.Cantidad - item.CantidadDevuelta
			if restante > 0 {
				r.m.productos[item.CodigoProducto].Stock += restante
			}
		}
	}

	d.Estado = models.DespachoAnulado
	r.m.auditar("despacho_anulado", id.String())
	return nil
}

func (r *fakeDespachoRepo) DevolucionParcial(ctx context.Context, id uuid.UUID, codigoProducto string, cantidad int, motivo models.MotivoDevolucion, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.despachos[id]
	if !ok {
		return repository.ErrNoAnulable
	}

	var item *models.DespachoItem
	for i := range d.Items {
		if d.Items[i].CodigoProducto == codigoProducto {
			item = &d.Items[i]
			break
		}
	}
	if item == nil || item.CantidadDevuelta+cantidad > item.Cantidad {
		return repository.ErrDevolucionExcedida
	}

	item.CantidadDevuelta += cantidad
	montoDevuelto := item.PrecioSuministro.Mul(decimalDesdeInt(cantidad))

	tienda := r.m.tiendas[d.IDTienda]
	tienda.DeudaTotal = tienda.DeudaTotal.Sub(montoDevuelto)

	if motivo == models.DevolucionBuenEstado {
		r.m.productos[codigoProducto].Stock += cantidad
	}

	vigentes := 0
	for _, it := range d.Items {
		if it.CantidadDevuelta < it.Cantidad {
			vigentes++
		}
	}
	if vigentes == 0 {
		d.Estado = models.DespachoDevuelto
	} else {
		d.Estado = models.DespachoDevolucionParcial
	}
	r.m.auditar("devolucion_parcial", id.String())
	return nil
}

// ===== Pago / Abono =====

type fakePagoRepo struct{ m *mundo }

func (r *fakePagoRepo) GetPagoProveedor(ctx context.Context, id uuid.UUID) (*models.PagoProveedor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.pagos[id]
	if !ok {
		return nil, nil
	}
	copia := *p
	return &copia, nil
}

func (r *fakePagoRepo) GetAbono(ctx context.Context, id uuid.UUID) (*models.AbonoTienda, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.abonos[id]
	if !ok {
		return nil, nil
	}
	copia := *a
	return &copia, nil
}

func (r *fakePagoRepo) ListPagosPendientes(ctx context.Context) ([]*models.PagoProveedor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.PagoProveedor
	for _, p := range r.m.pagos {
		if p.EstadoAprobacion == models.AprobacionPendiente {
			copia := *p
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakePagoRepo) ListAbonosPendientes(ctx context.Context) ([]*models.AbonoTienda, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.AbonoTienda
	for _, a := range r.m.abonos {
		if a.EstadoAprobacion == models.AprobacionPendiente {
			copia := *a
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakePagoRepo) CountPagosPendientes(ctx context.Context) (int, error) {
	pendientes, _ := r.ListPagosPendientes(ctx)
	return len(pendientes), nil
}

func (r *fakePagoRepo) CountAbonosPendientes(ctx context.Context) (int, error) {
	pendientes, _ := r.ListAbonosPendientes(ctx)
	return len(pendientes), nil
}

// aplicarPagoAFactura replica la guardia de sobrepago del repository real
func (r *fakePagoRepo) aplicarPagoAFactura(idFactura uuid.UUID, monto decimal.Decimal) error {
	f, ok := r.m.facturas[idFactura]
	if !ok {
		return repository.ErrNoEncontrado
	}
	nuevoPagado := f.MontoPagado.Add(monto)
	if nuevoPagado.GreaterThan(f.MontoTotal) {
		return repository.ErrSobrepago
	}
	f.MontoPagado = nuevoPagado
	f.Estado = models.DerivarEstadoFactura(nuevoPagado, f.MontoTotal)
	return nil
}

func (r *fakePagoRepo) descontarDeuda(idTienda int, monto decimal.Decimal) error {
	tienda, ok := r.m.tiendas[idTienda]
	if !ok {
		return repository.ErrNoEncontrado
	}
	if monto.GreaterThan(tienda.DeudaTotal) {
		return repository.ErrSobrepago
	}
	tienda.DeudaTotal = tienda.DeudaTotal.Sub(monto)
	return nil
}

func (r *fakePagoRepo) CrearPagoComprometido(ctx context.Context, pago *models.PagoProveedor) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if pago.IDFactura != nil {
		if err := r.aplicarPagoAFactura(*pago.IDFactura, pago.Monto); err != nil {
			return err
		}
	}
	copia := *pago
	r.m.pagos[pago.ID] = &copia
	r.m.auditar("pago_comprometido", pago.ID.String())
	return nil
}

func (r *fakePagoRepo) CrearPagoPendiente(ctx context.Context, pago *models.PagoProveedor) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	copia := *pago
	r.m.pagos[pago.ID] = &copia
	r.m.auditar("pago_pendiente", pago.ID.String())
	return nil
}

func (r *fakePagoRepo) AprobarPago(ctx context.Context, id uuid.UUID, usuario string) (*models.PagoProveedor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.pagos[id]
	if !ok || p.EstadoAprobacion != models.AprobacionPendiente {
		return nil, repository.ErrNoPendiente
	}
	if p.IDFactura != nil {
		if err := r.aplicarPagoAFactura(*p.IDFactura, p.Monto); err != nil {
			return nil, err
		}
	}
	p.EstadoAprobacion = models.AprobacionAprobada
	p.AutorizadoPor = usuario
	copia := *p
	return &copia, nil
}

func (r *fakePagoRepo) RechazarPago(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.pagos[id]
	if !ok || p.EstadoAprobacion != models.AprobacionPendiente {
		return repository.ErrNoPendiente
	}
	p.EstadoAprobacion = models.AprobacionRechazada
	p.MotivoRechazo = motivo
	return nil
}

func (r *fakePagoRepo) AnularPago(ctx context.Context, id uuid.UUID, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.pagos[id]
	if !ok || p.Estado != models.PagoActivo || p.EstadoAprobacion == models.AprobacionPendiente ||
		p.EstadoAprobacion == models.AprobacionRechazada {
		return repository.ErrNoAnulable
	}
	p.Estado = models.PagoAnulado
	if p.IDFactura != nil {
		f := r.m.facturas[*p.IDFactura]
		f.MontoPagado = f.MontoPagado.Sub(p.Monto)
		f.Estado = models.DerivarEstadoFactura(f.MontoPagado, f.MontoTotal)
	}
	return nil
}

func (r *fakePagoRepo) CrearAbonoComprometido(ctx context.Context, abono *models.AbonoTienda) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.descontarDeuda(abono.IDTienda, abono.Monto); err != nil {
		return err
	}
	copia := *abono
	r.m.abonos[abono.ID] = &copia
	r.m.auditar("abono_comprometido", abono.ID.String())
	return nil
}

func (r *fakePagoRepo) CrearAbonoPendiente(ctx context.Context, abono *models.AbonoTienda) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	copia := *abono
	r.m.abonos[abono.ID] = &copia
	r.m.auditar("abono_pendiente", abono.ID.String())
	return nil
}

func (r *fakePagoRepo) AprobarAbono(ctx context.Context, id uuid.UUID, usuario string) (*models.AbonoTienda, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.abonos[id]
	if !ok || a.EstadoAprobacion != models.AprobacionPendiente {
		return nil, repository.ErrNoPendiente
	}
	if err := r.descontarDeuda(a.IDTienda, a.Monto); err != nil {
		return nil, err
	}
	a.EstadoAprobacion = models.AprobacionAprobada
	a.AutorizadoPor = usuario
	copia := *a
	return &copia, nil
}

func (r *fakePagoRepo) RechazarAbono(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.abonos[id]
	if !ok || a.EstadoAprobacion != models.AprobacionPendiente {
		return repository.ErrNoPendiente
	}
	a.EstadoAprobacion = models.AprobacionRechazada
	a.MotivoRechazo = motivo
	return nil
}

func (r *fakePagoRepo) AnularAbono(ctx context.Context, id uuid.UUID, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.abonos[id]
	if !ok || a.Estado != models.PagoActivo || a.EstadoAprobacion == models.AprobacionPendiente ||
		a.EstadoAprobacion == models.AprobacionRechazada {
		return repository.ErrNoAnulable
	}
	a.Estado = models.PagoAnulado
	r.m.tiendas[a.IDTienda].DeudaTotal = r.m.tiendas[a.IDTienda].DeudaTotal.Add(a.Monto)
	return nil
}

// ===== Factura =====

type fakeFacturaRepo struct{ m *mundo }

func (r *fakeFacturaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Factura, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.facturas[id]
	if !ok {
		return nil, nil
	}
	copia := *f
	copia.Items = append([]models.FacturaItem(nil), f.Items...)
	return &copia, nil
}

func (r *fakeFacturaRepo) ListByProveedor(ctx context.Context, idProveedor int) ([]*models.Factura, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.Factura
	for _, f := range r.m.facturas {
		if f.IDProveedor == idProveedor {
			copia := *f
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakeFacturaRepo) ListPendientes(ctx context.Context) ([]*models.Factura, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var resultado []*models.Factura
	for _, f := range r.m.facturas {
		if f.EstadoAprobacion == models.AprobacionPendiente {
			copia := *f
			resultado = append(resultado, &copia)
		}
	}
	return resultado, nil
}

func (r *fakeFacturaRepo) CountPendientes(ctx context.Context) (int, error) {
	pendientes, _ := r.ListPendientes(ctx)
	return len(pendientes), nil
}

func (r *fakeFacturaRepo) ingresarMercaderia(f *models.Factura) {
	for _, item := range f.Items {
		if p, ok := r.m.productos[item.CodigoProducto]; ok {
			p.Stock += item.Cantidad
			p.CostoCompra = item.CostoUnitario
		}
	}
}

func (r *fakeFacturaRepo) CrearComprometida(ctx context.Context, factura *models.Factura) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.ingresarMercaderia(factura)
	copia := *factura
	copia.Items = append([]models.FacturaItem(nil), factura.Items...)
	r.m.facturas[factura.ID] = &copia
	r.m.auditar("factura_comprometida", factura.ID.String())
	return nil
}

func (r *fakeFacturaRepo) CrearPendiente(ctx context.Context, factura *models.Factura) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	copia := *factura
	copia.Items = append([]models.FacturaItem(nil), factura.Items...)
	r.m.facturas[factura.ID] = &copia
	r.m.auditar("factura_pendiente", factura.ID.String())
	return nil
}

func (r *fakeFacturaRepo) AprobarCommit(ctx context.Context, id uuid.UUID, usuario string) (*models.Factura, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.facturas[id]
	if !ok || f.EstadoAprobacion != models.AprobacionPendiente {
		return nil, repository.ErrNoPendiente
	}
	r.ingresarMercaderia(f)
	f.EstadoAprobacion = models.AprobacionAprobada
	f.AutorizadoPor = usuario
	copia := *f
	copia.Items = append([]models.FacturaItem(nil), f.Items...)
	return &copia, nil
}

func (r *fakeFacturaRepo) Rechazar(ctx context.Context, id uuid.UUID, motivo, usuario string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.facturas[id]
	if !ok || f.EstadoAprobacion != models.AprobacionPendiente {
		return repository.ErrNoPendiente
	}
	f.EstadoAprobacion = models.AprobacionRechazada
	f.MotivoRechazo = motivo
	return nil
}

// ===== Ajustes =====

type fakeAjustesService struct{ m *mundo }

func (s *fakeAjustesService) Snapshot(ctx context.Context) (*models.Ajustes, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	copia := s.m.ajustes
	return &copia, nil
}

func (s *fakeAjustesService) Actualizar(ctx context.Context, req *models.ActualizarAjustesRequest) (*models.Ajustes, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.ajustes = models.Ajustes{
		RequiereAprobacionDespacho: req.RequiereAprobacionDespacho,
		RequiereAprobacionPago:     req.RequiereAprobacionPago,
		RequiereAprobacionFactura:  req.RequiereAprobacionFactura,
		UpdatedBy:                  req.Usuario,
	}
	copia := s.m.ajustes
	return &copia, nil
}

// ===== Impresora =====

type fakeImpresora struct {
	mu   sync.Mutex
	docs []*formatter.Documento
	hubo chan struct{}
}

func nuevaFakeImpresora() *fakeImpresora {
	return &fakeImpresora{hubo: make(chan struct{}, 16)}
}

func (i *fakeImpresora) Imprimir(doc *formatter.Documento) {
	i.mu.Lock()
	i.docs = append(i.docs, doc)
	i.mu.Unlock()
	i.hubo <- struct{}{}
}

// esperar bloquea hasta que llegue un documento o venza el plazo
func (i *fakeImpresora) esperar(t testingT) *formatter.Documento {
	select {
	case <-i.hubo:
	case <-time.After(2 * time.Second):
		t.Fatal("la impresora nunca recibió el documento")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.docs[len(i.docs)-1]
}

func (i *fakeImpresora) cantidad() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.docs)
}

type testingT interface {
	Fatal(args ...interface{})
}

// ===== Armado =====

// cacheDePrueba arma un caché cuyo Redis no existe: cada acceso L2 falla y el
// caché degrada a solo L1, que es el comportamiento esperado sin servidor
func cacheDePrueba() *cache.ProductoCache {
	client := redis.NewClient(&redis.Options{
		Addr:            "127.0.0.1:1",
		MaxRetries:      -1,
		DialTimeout:     10 * time.Millisecond,
		ReadTimeout:     10 * time.Millisecond,
		WriteTimeout:    10 * time.Millisecond,
		PoolTimeout:     10 * time.Millisecond,
		MinRetryBackoff: -1,
		MaxRetryBackoff: -1,
	})
	return cache.NewProductoCache(client, 100, time.Minute, zap.NewNop())
}
