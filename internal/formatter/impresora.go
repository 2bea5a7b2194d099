package formatter

import "go.uber.org/zap"

// Impresora recibe documentos listos para compartir. El flujo de negocio la
// invoca después del commit y nunca espera por ella: un fallo de impresión no
// revierte nada.
type Impresora interface {
	Imprimir(doc *Documento)
}

// ImpresoraLogger formatea el documento y lo deja en el log; la entrega real
// (WhatsApp, correo) la hace el frontend con el mismo texto.
type ImpresoraLogger struct {
	logger *zap.Logger
}

// NewImpresoraLogger crea una nueva instancia de la impresora
func NewImpresoraLogger(logger *zap.Logger) *ImpresoraLogger {
	return &ImpresoraLogger{logger: logger}
}

// Imprimir formatea y registra el documento
func (i *ImpresoraLogger) Imprimir(doc *Documento) {
	formateado, err := Formatear(doc)
	if err != nil {
		i.logger.Error("Error formateando documento",
			zap.String("titulo", doc.Titulo),
			zap.String("folio", doc.Folio),
			zap.Error(err))
		return
	}

	i.logger.Info("Documento formateado",
		zap.String("titulo", doc.Titulo),
		zap.String("folio", doc.Folio),
		zap.Int("lineas", len(doc.Items)))
	i.logger.Debug("Texto WhatsApp", zap.String("texto", formateado.TextoWhatsApp))
}
