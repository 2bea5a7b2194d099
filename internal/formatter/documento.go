package formatter

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Documento es el registro plano que recibe el formateador: el flujo de
// negocio le entrega los datos ya decididos y el formateador no influye en
// ninguna decisión.
type Documento struct {
	Titulo        string
	Folio         string
	Fecha         time.Time
	Contraparte   string
	Items         []LineaDocumento
	Total         decimal.Decimal
	AutorizadoPor string
	Vencimiento   *time.Time
}

// LineaDocumento es una línea imprimible del documento
type LineaDocumento struct {
	Descripcion    string
	Cantidad       int
	PrecioUnitario decimal.Decimal
}

// Subtotal retorna cantidad × precio unitario
func (l *LineaDocumento) Subtotal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// DocumentoFormateado contiene las representaciones listas para compartir
type DocumentoFormateado struct {
	HTML          string
	TextoWhatsApp string
}

const fechaFormato = "02/01/2006 15:04"

var plantillaHTML = template.Must(template.New("documento").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Titulo}} {{.Folio}}</title></head>
<body>
<h2>{{.Titulo}}</h2>
<p><strong>Folio:</strong> {{.Folio}}<br>
<strong>Fecha:</strong> {{.FechaStr}}<br>
<strong>Cliente:</strong> {{.Contraparte}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Producto</th><th>Cant.</th><th>Precio</th><th>Subtotal</th></tr>
{{range .Items}}<tr><td>{{.Descripcion}}</td><td>{{.Cantidad}}</td><td>${{.PrecioUnitario}}</td><td>${{.Subtotal}}</td></tr>
{{end}}</table>
<p><strong>Total: ${{.Total}}</strong></p>
{{if .Vencimiento}}<p>Vence: {{.VencimientoStr}}</p>{{end}}
{{if .AutorizadoPor}}<p>Autorizado por: {{.AutorizadoPor}}</p>{{end}}
</body>
</html>
`))

type datosPlantilla struct {
	*Documento
	FechaStr       string
	VencimientoStr string
}

// Formatear construye las representaciones HTML y WhatsApp del documento
func Formatear(doc *Documento) (*DocumentoFormateado, error) {
	datos := datosPlantilla{
		Documento: doc,
		FechaStr:  doc.Fecha.Format(fechaFormato),
	}
	if doc.Vencimiento != nil {
		datos.VencimientoStr = doc.Vencimiento.Format("02/01/2006")
	}

	var html strings.Builder
	if err := plantillaHTML.Execute(&html, &datos); err != nil {
		return nil, fmt.Errorf("failed to render documento: %w", err)
	}

	return &DocumentoFormateado{
		HTML:          html.String(),
		TextoWhatsApp: textoWhatsApp(doc),
	}, nil
}

// textoWhatsApp arma el texto plano para compartir por WhatsApp
func textoWhatsApp(doc *Documento) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s %s*\n", doc.Titulo, doc.Folio)
	fmt.Fprintf(&b, "Fecha: %s\n", doc.Fecha.Format(fechaFormato))
	fmt.Fprintf(&b, "Cliente: %s\n", doc.Contraparte)
	b.WriteString("----------------\n")

	for _, item := range doc.Items {
		fmt.Fprintf(&b, "%s x%d  $%s\n", item.Descripcion, item.Cantidad, item.Subtotal().StringFixed(0))
	}

	b.WriteString("----------------\n")
	fmt.Fprintf(&b, "*Total: $%s*\n", doc.Total.StringFixed(0))

	if doc.Vencimiento != nil {
		fmt.Fprintf(&b, "Vence: %s\n", doc.Vencimiento.Format("02/01/2006"))
	}
	if doc.AutorizadoPor != "" {
		fmt.Fprintf(&b, "Autorizado por: %s\n", doc.AutorizadoPor)
	}

	return b.String()
}
