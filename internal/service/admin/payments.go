package admin

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/audit"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// VerifyPayment confirma una transferencia bancaria pendiente después
// de revisar el comprobante. Devuelve domain.ErrConflict si el pago ya
// no está pendiente.
func (s *Service) VerifyPayment(ctx context.Context, actorID, paymentID string) (*domain.Payment, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.payments"),
		logger.Op("VerifyPayment"),
		logger.PaymentID(paymentID),
	)

	p, err := s.deps.Store.VerifyPayment(ctx, paymentID)
	if err != nil {
		if !domain.IsNotFound(err) && !domain.IsConflict(err) {
			log.Error("verify failed", logger.Err(err))
		}
		return nil, err
	}
	metrics.PaymentsProcessed.WithLabelValues(string(p.Method), string(p.Status)).Inc()

	audit.Log(ctx, audit.EventPaymentVerified, map[string]any{
		"payment_id":   p.ID,
		"order_id":     p.OrderID,
		"actor_id":     actorID,
		"amount_cents": int64(p.AmountCents),
	})
	log.Info("payment verified",
		logger.OrderID(p.OrderID),
		logger.Amount(int64(p.AmountCents)),
	)
	return p, nil
}
