// Package catalog implementa categorías, negocios y el catálogo de
// productos y servicios, con el CRUD de dueños y los listados públicos.
package catalog

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// Errores del catálogo; los handlers los traducen a HTTP.
var (
	ErrMissingFields   = fmt.Errorf("missing required fields")
	ErrBusinessExists  = fmt.Errorf("owner already has a business")
	ErrNoBusiness      = fmt.Errorf("owner has no business yet")
	ErrUnknownCategory = fmt.Errorf("unknown category")
	ErrInvalidPrice    = fmt.Errorf("invalid price")
	ErrInvalidStock    = fmt.Errorf("invalid stock")
)

// Store es el subconjunto del store que usa el catálogo.
type Store interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListPopularCategories(ctx context.Context, limit int) ([]domain.CategoryCount, error)

	CreateBusiness(ctx context.Context, b *domain.Business) error
	GetBusinessByID(ctx context.Context, id string) (*domain.Business, error)
	GetBusinessByOwner(ctx context.Context, ownerID string) (*domain.Business, error)
	UpdateBusiness(ctx context.Context, b *domain.Business) error
	ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error)

	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id, businessID string) error
	ListProducts(ctx context.Context, f pg.ProductFilter) ([]domain.Product, int, error)

	CreateService(ctx context.Context, v *domain.Service) error
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	UpdateService(ctx context.Context, v *domain.Service) error
	DeleteService(ctx context.Context, id, businessID string) error
	ListServices(ctx context.Context, f pg.ServiceFilter) ([]domain.Service, int, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Store Store
	// PopularTTL controla la memo de categorías populares (default 5m).
	PopularTTL time.Duration
}

type Service struct {
	deps Deps
	memo *gocache.Cache
}

func New(deps Deps) *Service {
	if deps.PopularTTL <= 0 {
		deps.PopularTTL = 5 * time.Minute
	}
	return &Service{
		deps: deps,
		memo: gocache.New(deps.PopularTTL, time.Minute),
	}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampLimit normaliza el tamaño de página de los listados.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// resolveCategory valida que la categoría exista cuando viene seteada.
func (s *Service) resolveCategory(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	if _, err := s.deps.Store.GetCategoryByID(ctx, *id); err != nil {
		if domain.IsNotFound(err) {
			return ErrUnknownCategory
		}
		return err
	}
	return nil
}
