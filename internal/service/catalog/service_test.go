package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

type fakeStore struct {
	seq        int
	categories map[string]*domain.Category
	businesses map[string]*domain.Business // por owner
	products   map[string]*domain.Product
	services   map[string]*domain.Service

	popularCalls int
	lastFilter   pg.ProductFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[string]*domain.Category),
		businesses: make(map[string]*domain.Business),
		products:   make(map[string]*domain.Product),
		services:   make(map[string]*domain.Service),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return domain.ErrConflict
		}
	}
	c.ID = f.nextID("cat")
	f.categories[c.ID] = c
	return nil
}

func (f *fakeStore) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	cur, ok := f.categories[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.Description = c.Name, c.Description
	return nil
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	if _, ok := f.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) ListPopularCategories(ctx context.Context, limit int) ([]domain.CategoryCount, error) {
	f.popularCalls++
	var out []domain.CategoryCount
	for _, c := range f.categories {
		out = append(out, domain.CategoryCount{Category: *c})
	}
	return out, nil
}

func (f *fakeStore) CreateBusiness(ctx context.Context, b *domain.Business) error {
	if _, ok := f.businesses[b.OwnerID]; ok {
		return domain.ErrConflict
	}
	b.ID = f.nextID("biz")
	f.businesses[b.OwnerID] = b
	return nil
}

func (f *fakeStore) GetBusinessByID(ctx context.Context, id string) (*domain.Business, error) {
	for _, b := range f.businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) GetBusinessByOwner(ctx context.Context, ownerID string) (*domain.Business, error) {
	b, ok := f.businesses[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) UpdateBusiness(ctx context.Context, b *domain.Business) error {
	cur, ok := f.businesses[b.OwnerID]
	if !ok {
		return domain.ErrNotFound
	}
	*cur = *b
	return nil
}

func (f *fakeStore) ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error) {
	var out []domain.Business
	for _, b := range f.businesses {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (f *fakeStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	p.ID = f.nextID("prod")
	f.products[p.ID] = p
	return nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, p *domain.Product) error {
	cur, ok := f.products[p.ID]
	if !ok || cur.BusinessID != p.BusinessID {
		return domain.ErrNotFound
	}
	*cur = *p
	return nil
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id, businessID string) error {
	p, ok := f.products[id]
	if !ok || p.BusinessID != businessID {
		return domain.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeStore) ListProducts(ctx context.Context, filter pg.ProductFilter) ([]domain.Product, int, error) {
	f.lastFilter = filter
	var out []domain.Product
	for _, p := range f.products {
		if filter.BusinessID != "" && p.BusinessID != filter.BusinessID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeStore) CreateService(ctx context.Context, v *domain.Service) error {
	v.ID = f.nextID("svc")
	f.services[v.ID] = v
	return nil
}

func (f *fakeStore) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	v, ok := f.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) UpdateService(ctx context.Context, v *domain.Service) error {
	cur, ok := f.services[v.ID]
	if !ok || cur.BusinessID != v.BusinessID {
		return domain.ErrNotFound
	}
	*cur = *v
	return nil
}

func (f *fakeStore) DeleteService(ctx context.Context, id, businessID string) error {
	v, ok := f.services[id]
	if !ok || v.BusinessID != businessID {
		return domain.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

func (f *fakeStore) ListServices(ctx context.Context, filter pg.ServiceFilter) ([]domain.Service, int, error) {
	var out []domain.Service
	for _, v := range f.services {
		if filter.BusinessID != "" && v.BusinessID != filter.BusinessID {
			continue
		}
		out = append(out, *v)
	}
	return out, len(out), nil
}

// ---- tests ----

func newTestService() (*Service, *fakeStore) {
	fs := newFakeStore()
	return New(Deps{Store: fs, PopularTTL: time.Minute}), fs
}

func TestCreateBusinessOnePerOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBusiness(ctx, "owner-1", BusinessInput{Name: "Tienda Madidi"})
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)

	_, err = svc.CreateBusiness(ctx, "owner-1", BusinessInput{Name: "Otra Tienda"})
	require.ErrorIs(t, err, ErrBusinessExists)
}

func TestCreateProductRequiresBusiness(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), "owner-sin-negocio", ProductInput{
		Name:       "Quinua",
		PriceCents: 2500,
	})
	require.ErrorIs(t, err, ErrNoBusiness)
}

func TestCreateProductValidations(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.CreateBusiness(ctx, "owner-1", BusinessInput{Name: "Tienda"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, "owner-1", ProductInput{Name: "  ", PriceCents: 100})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.CreateProduct(ctx, "owner-1", ProductInput{Name: "Quinua", PriceCents: -1})
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.CreateProduct(ctx, "owner-1", ProductInput{Name: "Quinua", PriceCents: 100, StockQuantity: -5})
	require.ErrorIs(t, err, ErrInvalidStock)

	bogus := "cat-inexistente"
	_, err = svc.CreateProduct(ctx, "owner-1", ProductInput{Name: "Quinua", PriceCents: 100, CategoryID: &bogus})
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestProductLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateBusiness(ctx, "owner-1", BusinessInput{Name: "Tienda"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Alimentos"})
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, "owner-1", ProductInput{
		Name:          "Quinua real",
		CategoryID:    &cat.ID,
		PriceCents:    2500,
		StockQuantity: 10,
		Available:     true,
	})
	require.NoError(t, err)

	p2, err := svc.UpdateProduct(ctx, "owner-1", p.ID, ProductInput{
		Name:          "Quinua real 1kg",
		CategoryID:    &cat.ID,
		PriceCents:    2800,
		StockQuantity: 8,
		Available:     true,
	})
	require.NoError(t, err)
	require.Equal(t, "Quinua real 1kg", p2.Name)
	require.Equal(t, domain.Cents(2800), p2.PriceCents)

	// Otro dueño no puede tocar el producto.
	_, err = svc.CreateBusiness(ctx, "owner-2", BusinessInput{Name: "Competencia"})
	require.NoError(t, err)
	_, err = svc.UpdateProduct(ctx, "owner-2", p.ID, ProductInput{Name: "Robo", PriceCents: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, "owner-1", p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServicePriceOptional(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.CreateBusiness(ctx, "owner-1", BusinessInput{Name: "Guías Madidi"})
	require.NoError(t, err)

	v, err := svc.CreateService(ctx, "owner-1", ServiceInput{
		Name:      "Tour por el parque",
		Duration:  "3 días",
		Available: true,
	})
	require.NoError(t, err)
	require.Nil(t, v.PriceCents)

	precio := domain.Cents(150000)
	v2, err := svc.UpdateService(ctx, "owner-1", v.ID, ServiceInput{
		Name:       "Tour por el parque",
		PriceCents: &precio,
		Duration:   "3 días",
		Available:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, v2.PriceCents)
	require.Equal(t, precio, *v2.PriceCents)
}

func TestPopularCategoriesMemoized(t *testing.T) {
	svc, fs := newTestService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.PopularCategories(ctx, 10)
		require.NoError(t, err)
	}
	require.Equal(t, 1, fs.popularCalls)

	// Crear una categoría invalida la memo.
	_, err := svc.CreateCategory(ctx, CategoryInput{Name: "Artesanías"})
	require.NoError(t, err)
	_, err = svc.PopularCategories(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, fs.popularCalls)
}

func TestListProductsClampsLimit(t *testing.T) {
	svc, fs := newTestService()

	_, _, err := svc.ListProducts(context.Background(), pg.ProductFilter{Limit: 10000, Offset: -3})
	require.NoError(t, err)
	require.Equal(t, maxPageSize, fs.lastFilter.Limit)
	require.Equal(t, 0, fs.lastFilter.Offset)

	_, _, err = svc.ListProducts(context.Background(), pg.ProductFilter{})
	require.NoError(t, err)
	require.Equal(t, defaultPageSize, fs.lastFilter.Limit)
}
