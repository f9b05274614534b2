// Package recommend arma las recomendaciones del home: para usuarios
// con reseñas propone ítems de las categorías que reseñaron; para el
// resto cae a los populares del sitio, memoizados.
package recommend

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// DefaultLimit es la cantidad de ítems por tipo cuando el caller no
// pide otra cosa.
const DefaultLimit = 4

const maxLimit = 50

// Store es el subconjunto del store que el motor necesita.
type Store interface {
	RecommendProducts(ctx context.Context, userID string, limit int) ([]domain.Product, error)
	RecommendServices(ctx context.Context, userID string, limit int) ([]domain.Service, error)
	PopularProducts(ctx context.Context, limit int) ([]domain.Product, error)
	PopularServices(ctx context.Context, limit int) ([]domain.Service, error)
}

// Result agrupa lo recomendado; Fallback indica que se usaron los
// populares del sitio en lugar del historial del usuario.
type Result struct {
	Products []domain.Product
	Services []domain.Service
	Fallback bool
}

type Engine struct {
	store Store
	memo  *gocache.Cache
	sf    singleflight.Group
	ttl   time.Duration
}

// New crea el motor; popularTTL controla cuánto vive la memo del
// fallback (por defecto 5 minutos).
func New(store Store, popularTTL time.Duration) *Engine {
	if popularTTL <= 0 {
		popularTTL = 5 * time.Minute
	}
	return &Engine{
		store: store,
		memo:  gocache.New(popularTTL, time.Minute),
		ttl:   popularTTL,
	}
}

// ForUser calcula recomendaciones para el usuario. userID vacío (o sin
// reseñas previas) va directo a los populares.
func (e *Engine) ForUser(ctx context.Context, userID string, limit int) (*Result, error) {
	if limit <= 0 || limit > maxLimit {
		limit = DefaultLimit
	}
	if userID != "" {
		products, err := e.store.RecommendProducts(ctx, userID, limit)
		if err != nil {
			return nil, err
		}
		services, err := e.store.RecommendServices(ctx, userID, limit)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 || len(services) > 0 {
			return &Result{Products: products, Services: services}, nil
		}
	}
	return e.popular(ctx, limit)
}

// popular memoiza el fallback global; singleflight colapsa las llamadas
// concurrentes cuando la entrada expira.
func (e *Engine) popular(ctx context.Context, limit int) (*Result, error) {
	key := fmt.Sprintf("popular:%d", limit)
	if v, ok := e.memo.Get(key); ok {
		if r, ok := v.(*Result); ok {
			return r, nil
		}
	}

	v, err, _ := e.sf.Do(key, func() (interface{}, error) {
		products, err := e.store.PopularProducts(ctx, limit)
		if err != nil {
			return nil, err
		}
		services, err := e.store.PopularServices(ctx, limit)
		if err != nil {
			return nil, err
		}
		r := &Result{Products: products, Services: services, Fallback: true}
		e.memo.Set(key, r, e.ttl)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// Invalidate borra las memos; se usa tras cambios masivos de catálogo.
func (e *Engine) Invalidate() {
	e.memo.Flush()
}
