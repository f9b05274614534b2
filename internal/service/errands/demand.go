package errands

import (
	"context"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const (
	// demandWindow es la ventana del reporte de demanda.
	demandWindow = 30 * 24 * time.Hour

	// topTitlesLimit es cuántos títulos más pedidos se muestran.
	topTitlesLimit = 5
)

// DemandReport agrega la demanda reciente del tablero de pedidos para
// que los negocios decidan qué ofrecer.
type DemandReport struct {
	ProductCategories []domain.CategoryDemand
	ServiceCategories []domain.CategoryDemand
	TopProducts       []domain.TitleDemand
	TopServices       []domain.TitleDemand
}

// Demand arma el reporte de los últimos 30 días: pedidos por categoría
// (descendente) y los 5 títulos más pedidos de cada tipo.
func (s *Service) Demand(ctx context.Context) (*DemandReport, error) {
	since := time.Now().Add(-demandWindow)

	productCats, err := s.deps.Store.CategoryDemand(ctx, domain.RequestKindProduct, since)
	if err != nil {
		return nil, err
	}
	serviceCats, err := s.deps.Store.CategoryDemand(ctx, domain.RequestKindService, since)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.deps.Store.TitleDemand(ctx, domain.RequestKindProduct, since, topTitlesLimit)
	if err != nil {
		return nil, err
	}
	topServices, err := s.deps.Store.TitleDemand(ctx, domain.RequestKindService, since, topTitlesLimit)
	if err != nil {
		return nil, err
	}

	return &DemandReport{
		ProductCategories: productCats,
		ServiceCategories: serviceCats,
		TopProducts:       topProducts,
		TopServices:       topServices,
	}, nil
}
