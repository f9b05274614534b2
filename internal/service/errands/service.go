// Package errands cubre la economía de encargos: viajes de compras que
// aceptan pedidos de otros usuarios, y el tablero de demanda donde los
// clientes piden productos o servicios que nadie ofrece todavía.
package errands

import (
	"context"
	"fmt"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// Errores de encargos. Los handlers los mapean a códigos HTTP.
var (
	ErrInvalidWindow     = fmt.Errorf("return time must be after departure")
	ErrOwnTrip           = fmt.Errorf("cannot request items from own trip")
	ErrTripUnavailable   = fmt.Errorf("trip is not accepting requests")
	ErrMissingFields     = fmt.Errorf("missing required fields")
	ErrInvalidAmount     = fmt.Errorf("invalid amount")
	ErrFeeBelowCost      = fmt.Errorf("shopper fee below estimated cost")
	ErrInvalidAction     = fmt.Errorf("invalid action")
	ErrInvalidKind       = fmt.Errorf("invalid request kind")
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
)

// Store es lo que el servicio necesita de Postgres.
type Store interface {
	CreateTrip(ctx context.Context, t *domain.ShoppingTrip) error
	GetTripByID(ctx context.Context, id string) (*domain.ShoppingTrip, error)
	ListAvailableTrips(ctx context.Context, limit, offset int) ([]domain.ShoppingTrip, int, error)
	ListTripsByShopper(ctx context.Context, shopperID string, limit, offset int) ([]domain.ShoppingTrip, int, error)
	UpdateTripStatus(ctx context.Context, tripID, shopperID string, from, to domain.TripStatus) error

	CreateShoppingRequest(ctx context.Context, r *domain.ShoppingRequest) error
	GetShoppingRequestByID(ctx context.Context, id string) (*domain.ShoppingRequest, error)
	ListShoppingRequestsMade(ctx context.Context, requesterID string, limit, offset int) ([]domain.ShoppingRequest, int, error)
	ListShoppingRequestsReceived(ctx context.Context, shopperID string, limit, offset int) ([]domain.ShoppingRequest, int, error)
	UpdateShoppingRequestStatus(ctx context.Context, id, shopperID string, from, to domain.ShoppingRequestStatus) error

	CreateItemRequest(ctx context.Context, r *domain.ItemRequest) error
	GetItemRequestByID(ctx context.Context, id string) (*domain.ItemRequest, error)
	ListItemRequests(ctx context.Context, f pg.ItemRequestFilter) ([]domain.ItemRequest, int, error)
	SetItemRequestFulfilled(ctx context.Context, id, requesterID string, fulfilled bool) error
	DeleteItemRequest(ctx context.Context, id, requesterID string) error
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)

	CategoryDemand(ctx context.Context, kind domain.RequestKind, since time.Time) ([]domain.CategoryDemand, error)
	TitleDemand(ctx context.Context, kind domain.RequestKind, since time.Time, limit int) ([]domain.TitleDemand, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Store Store
}

type Service struct {
	deps Deps
}

// New crea el servicio.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
