package commerce

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Peekay0523/MadidiMarket/internal/audit"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// Viewer identifica a quien consulta una orden.
type Viewer struct {
	UserID string
	Role   domain.Role
}

// OrderDetail es una orden con sus líneas y el resumen de pago.
type OrderDetail struct {
	Order   domain.Order
	Items   []domain.OrderItem
	Payment *domain.Payment
}

// GetOrder retorna el detalle si el viewer es el cliente, el dueño del
// negocio o un admin. Para cualquier otro la orden no existe.
func (s *Service) GetOrder(ctx context.Context, viewer Viewer, orderID string) (*OrderDetail, error) {
	o, err := s.deps.Store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrder(ctx, viewer, o); err != nil {
		return nil, err
	}

	items, err := s.deps.Store.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	detail := &OrderDetail{Order: *o, Items: items}

	p, err := s.deps.Store.GetPaymentByOrderID(ctx, orderID)
	switch {
	case err == nil:
		detail.Payment = p
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return detail, nil
}

// authorizeOrder no revela existencia: un tercero recibe ErrNotFound.
func (s *Service) authorizeOrder(ctx context.Context, viewer Viewer, o *domain.Order) error {
	if viewer.Role == domain.RoleAdmin || o.CustomerID == viewer.UserID {
		return nil
	}
	if viewer.Role == domain.RoleBusinessOwner {
		b, err := s.deps.Store.GetBusinessByOwner(ctx, viewer.UserID)
		if err == nil && b.ID == o.BusinessID {
			return nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return domain.ErrNotFound
}

// ListMyOrders lista las órdenes del cliente, más recientes primero.
func (s *Service) ListMyOrders(ctx context.Context, customerID string, f pg.OrderFilter) ([]domain.Order, int, error) {
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.deps.Store.ListOrdersByCustomer(ctx, customerID, f)
}

// ListBusinessOrders lista las órdenes recibidas por el negocio del
// dueño.
func (s *Service) ListBusinessOrders(ctx context.Context, ownerID string, f pg.OrderFilter) ([]domain.Order, int, error) {
	b, err := s.deps.Store.GetBusinessByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, ErrNoBusiness
		}
		return nil, 0, err
	}
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.deps.Store.ListOrdersByBusiness(ctx, b.ID, f)
}

// ApplyOrderAction aplica una transición de estado sobre una orden del
// negocio del dueño. Completar descuenta stock y cierra el pago contra
// entrega.
func (s *Service) ApplyOrderAction(ctx context.Context, ownerID, orderID string, action domain.OrderAction) (*domain.Order, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("commerce.orders"),
		logger.Op("ApplyOrderAction"),
		logger.OrderID(orderID),
	)

	b, err := s.deps.Store.GetBusinessByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNoBusiness
		}
		return nil, err
	}
	o, err := s.deps.Store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BusinessID != b.ID {
		return nil, domain.ErrNotFound
	}

	next, ok := domain.NextStatus(o.Status, action)
	if !ok {
		return nil, ErrInvalidTransition
	}
	// ErrConflict acá significa que la orden cambió de estado entre la
	// lectura y el update guardado.
	if err := s.deps.Store.UpdateOrderStatus(ctx, orderID, o.Status, next); err != nil {
		return nil, err
	}

	if next == domain.OrderCompleted {
		s.settleCompleted(ctx, orderID, log)
	}

	metrics.OrderStatusChanges.WithLabelValues(string(action)).Inc()
	audit.Log(ctx, audit.EventOrderStatus, map[string]any{
		"order_id":    orderID,
		"business_id": b.ID,
		"actor_id":    ownerID,
		"action":      string(action),
		"from":        string(o.Status),
		"to":          string(next),
	})
	log.Info("order status changed",
		logger.String("action", string(action)),
		logger.String("from", string(o.Status)),
		logger.String("to", string(next)),
	)
	return s.deps.Store.GetOrderByID(ctx, orderID)
}

// settleCompleted descuenta el stock por línea (el SQL clava el piso en
// cero) y marca cobrado el pago contra entrega. Los fallos acá no
// revierten la transición, sólo se registran.
func (s *Service) settleCompleted(ctx context.Context, orderID string, log *zap.Logger) {
	items, err := s.deps.Store.ListOrderItems(ctx, orderID)
	if err != nil {
		log.Error("list items for stock decrement failed", logger.Err(err))
	}
	for i := range items {
		it := &items[i]
		if it.ProductID == nil {
			// Producto borrado después de la compra.
			continue
		}
		if err := s.deps.Store.DecrementProductStock(ctx, *it.ProductID, it.Quantity); err != nil {
			log.Warn("stock decrement failed",
				logger.ProductID(*it.ProductID),
				logger.Err(err),
			)
		}
	}

	p, err := s.deps.Store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn("load payment on completion failed", logger.Err(err))
		}
		return
	}
	if p.Method == domain.PayCashOnDelivery && p.Status == domain.PaymentPending {
		if err := s.deps.Store.MarkPaymentCompletedForOrder(ctx, orderID); err != nil {
			log.Warn("close cash payment failed", logger.Err(err))
		}
	}
}

// CancelMyOrder permite al cliente cancelar su orden mientras siga
// pendiente; una vez confirmada la cancelación pasa por el negocio.
func (s *Service) CancelMyOrder(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	o, err := s.deps.Store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	if o.Status != domain.OrderPending {
		return nil, ErrInvalidTransition
	}
	if err := s.deps.Store.UpdateOrderStatus(ctx, orderID, domain.OrderPending, domain.OrderCancelled); err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(domain.ActionCancel)).Inc()
	audit.Log(ctx, audit.EventOrderStatus, map[string]any{
		"order_id": orderID,
		"actor_id": customerID,
		"action":   string(domain.ActionCancel),
		"from":     string(domain.OrderPending),
		"to":       string(domain.OrderCancelled),
	})
	return s.deps.Store.GetOrderByID(ctx, orderID)
}
