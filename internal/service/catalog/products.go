package catalog

import (
	"context"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// ProductInput son los campos editables de un producto.
type ProductInput struct {
	Name          string
	Description   string
	CategoryID    *string
	PriceCents    domain.Cents
	StockQuantity int
	Available     bool
	ImageURL      string
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrMissingFields
	}
	if in.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if in.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// CreateProduct publica un producto en el negocio del dueño.
func (s *Service) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p := &domain.Product{
		BusinessID:    b.ID,
		CategoryID:    in.CategoryID,
		Name:          in.Name,
		Description:   strings.TrimSpace(in.Description),
		PriceCents:    in.PriceCents,
		StockQuantity: in.StockQuantity,
		Available:     in.Available,
		ImageURL:      strings.TrimSpace(in.ImageURL),
	}
	if err := s.deps.Store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	logger.From(ctx).Info("product created",
		logger.Component("catalog"),
		logger.ProductID(p.ID),
		logger.BusinessID(b.ID),
	)
	return p, nil
}

// UpdateProduct modifica un producto del negocio del dueño.
func (s *Service) UpdateProduct(ctx context.Context, ownerID, productID string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:            productID,
		BusinessID:    b.ID,
		CategoryID:    in.CategoryID,
		Name:          in.Name,
		Description:   strings.TrimSpace(in.Description),
		PriceCents:    in.PriceCents,
		StockQuantity: in.StockQuantity,
		Available:     in.Available,
		ImageURL:      strings.TrimSpace(in.ImageURL),
	}
	if err := s.deps.Store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.deps.Store.GetProductByID(ctx, productID)
}

// DeleteProduct borra un producto del negocio del dueño.
func (s *Service) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.deps.Store.DeleteProduct(ctx, productID, b.ID)
}

// GetProduct retorna un producto por id (vista pública).
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.deps.Store.GetProductByID(ctx, id)
}

// ListProducts lista el catálogo público con filtros.
func (s *Service) ListProducts(ctx context.Context, f pg.ProductFilter) ([]domain.Product, int, error) {
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.deps.Store.ListProducts(ctx, f)
}

// MyProducts lista el catálogo del dueño, incluyendo no disponibles.
func (s *Service) MyProducts(ctx context.Context, ownerID string, limit, offset int) ([]domain.Product, int, error) {
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListProducts(ctx, pg.ProductFilter{
		BusinessID: b.ID,
		Limit:      clampLimit(limit),
		Offset:     offset,
	})
}
