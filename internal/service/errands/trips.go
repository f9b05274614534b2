package errands

import (
	"context"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// CreateTripInput es lo que llega del handler para anunciar un viaje.
type CreateTripInput struct {
	Destination string
	Departure   time.Time
	Return      time.Time
	Notes       string
}

// CreateTrip anuncia un viaje de compras abierto a encargos. El retorno
// estimado debe ser posterior a la salida; los viajes cuyo retorno ya
// pasó salen solos del tablero.
func (s *Service) CreateTrip(ctx context.Context, shopperID string, in CreateTripInput) (*domain.ShoppingTrip, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("errands.trips"),
		logger.Op("CreateTrip"),
		logger.UserID(shopperID),
	)

	destination := strings.TrimSpace(in.Destination)
	if destination == "" {
		return nil, ErrMissingFields
	}
	if in.Departure.IsZero() || in.Return.IsZero() || !in.Return.After(in.Departure) {
		return nil, ErrInvalidWindow
	}

	t := &domain.ShoppingTrip{
		UserID:               shopperID,
		Destination:          destination,
		PlannedDepartureTime: in.Departure,
		EstimatedReturnTime:  in.Return,
		Status:               domain.TripAvailable,
		Notes:                strings.TrimSpace(in.Notes),
	}
	if err := s.deps.Store.CreateTrip(ctx, t); err != nil {
		log.Error("create trip failed", logger.Err(err))
		return nil, err
	}

	log.Info("trip created",
		logger.TripID(t.ID),
		logger.String("destination", destination),
	)
	return t, nil
}

// ListAvailable lista los viajes abiertos a encargos, salida más
// próxima primero.
func (s *Service) ListAvailable(ctx context.Context, limit, offset int) ([]domain.ShoppingTrip, int, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListAvailableTrips(ctx, limit, offset)
}

// ListMine lista los viajes del shopper, todos los estados.
func (s *Service) ListMine(ctx context.Context, shopperID string, limit, offset int) ([]domain.ShoppingTrip, int, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListTripsByShopper(ctx, shopperID, limit, offset)
}

// AdvanceTrip avanza el estado de un viaje propio, sólo hacia adelante.
func (s *Service) AdvanceTrip(ctx context.Context, tripID, callerID string, next domain.TripStatus) (*domain.ShoppingTrip, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("errands.trips"),
		logger.Op("AdvanceTrip"),
		logger.TripID(tripID),
	)

	if next != domain.TripInProgress && next != domain.TripCompleted {
		return nil, ErrInvalidTransition
	}

	t, err := s.deps.Store.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.UserID != callerID {
		log.Debug("advance rejected", logger.UserID(callerID))
		return nil, domain.ErrForbidden
	}
	if !domain.CanAdvanceTrip(t.Status, next) {
		return nil, ErrInvalidTransition
	}

	// ErrConflict acá significa que el viaje cambió de estado entre la
	// lectura y el update guardado.
	if err := s.deps.Store.UpdateTripStatus(ctx, tripID, callerID, t.Status, next); err != nil {
		return nil, err
	}

	log.Info("trip status changed",
		logger.String("from", string(t.Status)),
		logger.String("to", string(next)),
	)
	return s.deps.Store.GetTripByID(ctx, tripID)
}
