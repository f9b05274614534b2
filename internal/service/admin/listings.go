package admin

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// ListBusinesses lista todos los negocios, incluidos los de dueños sin
// aprobar.
func (s *Service) ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error) {
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListAllBusinesses(ctx, clampLimit(limit), offset)
}

// ListOrders lista órdenes de todo el marketplace, con filtro opcional
// de estado.
func (s *Service) ListOrders(ctx context.Context, status string, limit, offset int) ([]domain.Order, int, error) {
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.AdminListOrders(ctx, pg.OrderFilter{
		Status: status,
		Limit:  clampLimit(limit),
		Offset: offset,
	})
}

// ListPayments lista pagos con filtros opcionales de estado y método;
// con status=pending y method=bank_transfer es la cola de verificación.
func (s *Service) ListPayments(ctx context.Context, status, method string, limit, offset int) ([]domain.Payment, int, error) {
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.AdminListPayments(ctx, pg.PaymentFilter{
		Status: status,
		Method: method,
		Limit:  clampLimit(limit),
		Offset: offset,
	})
}
