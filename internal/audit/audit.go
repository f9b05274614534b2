// Package audit registra acciones sensibles (aprobación de negocios,
// verificación de pagos, cambios de estado de órdenes) como eventos
// estructurados del logger. El sink puede cambiar a DB o a un colector
// externo sin tocar a los llamadores.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// Eventos conocidos. Los llamadores pueden emitir otros, pero estos son
// los que el resto del sistema espera encontrar en los logs.
const (
	EventBusinessApproved = "business.approved"
	EventUserDisabled     = "user.disabled"
	EventPaymentVerified  = "payment.verified"
	EventOrderStatus      = "order.status_changed"
)

// Log escribe un evento de auditoría con campos arbitrarios.
func Log(ctx context.Context, event string, fields map[string]any) {
	log := logger.From(ctx).With(
		logger.Layer("audit"),
		logger.String("event", event),
	)
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	log.Info("audit", zf...)
}
