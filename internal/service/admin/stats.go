package admin

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// Stats es el resumen del panel de administración.
type Stats struct {
	UsersByRole          map[string]int
	Businesses           int
	Products             int
	Services             int
	OrdersByStatus       map[string]int
	PendingBankTransfers int
	RevenueCents         domain.Cents
}

// Stats arma el resumen del marketplace: cuentas por rol, catálogo,
// órdenes por estado, transferencias por verificar y recaudación.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	usersByRole, err := s.deps.Store.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	businesses, err := s.deps.Store.CountBusinesses(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.deps.Store.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	services, err := s.deps.Store.CountServices(ctx)
	if err != nil {
		return nil, err
	}
	ordersByStatus, err := s.deps.Store.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	pendingTransfers, err := s.deps.Store.CountPendingBankTransfers(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.deps.Store.RevenueCents(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		UsersByRole:          usersByRole,
		Businesses:           businesses,
		Products:             products,
		Services:             services,
		OrdersByStatus:       ordersByStatus,
		PendingBankTransfers: pendingTransfers,
		RevenueCents:         revenue,
	}, nil
}
