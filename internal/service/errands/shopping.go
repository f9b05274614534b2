package errands

import (
	"context"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// Acciones sobre un encargo.
const (
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionComplete = "complete"
)

// ShoppingRequestInput es el encargo que un usuario le hace al shopper
// de un viaje disponible.
type ShoppingRequestInput struct {
	TripID              string
	ItemsRequested      string
	EstimatedTotalCents *domain.Cents
	ShopperFeeCents     *domain.Cents
	DeliveryLocation    string
	ContactDetails      string
	Notes               string
}

// CreateShoppingRequest registra un encargo sobre un viaje disponible.
// Nadie puede encargarse a sí mismo, y si ambos montos vienen, la paga
// del shopper no puede ser menor al costo estimado.
func (s *Service) CreateShoppingRequest(ctx context.Context, requesterID string, in ShoppingRequestInput) (*domain.ShoppingRequest, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("errands.shopping"),
		logger.Op("CreateShoppingRequest"),
		logger.TripID(in.TripID),
	)

	trip, err := s.deps.Store.GetTripByID(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripAvailable {
		return nil, ErrTripUnavailable
	}
	if trip.UserID == requesterID {
		return nil, ErrOwnTrip
	}

	items := strings.TrimSpace(in.ItemsRequested)
	location := strings.TrimSpace(in.DeliveryLocation)
	contact := strings.TrimSpace(in.ContactDetails)
	if items == "" || location == "" || contact == "" {
		return nil, ErrMissingFields
	}
	if in.EstimatedTotalCents != nil && *in.EstimatedTotalCents < 0 {
		return nil, ErrInvalidAmount
	}
	if in.ShopperFeeCents != nil && *in.ShopperFeeCents < 0 {
		return nil, ErrInvalidAmount
	}
	if in.EstimatedTotalCents != nil && in.ShopperFeeCents != nil &&
		*in.ShopperFeeCents < *in.EstimatedTotalCents {
		return nil, ErrFeeBelowCost
	}

	r := &domain.ShoppingRequest{
		RequesterID:         requesterID,
		ShopperID:           trip.UserID,
		TripID:              trip.ID,
		ItemsRequested:      items,
		EstimatedTotalCents: in.EstimatedTotalCents,
		ShopperFeeCents:     in.ShopperFeeCents,
		DeliveryLocation:    location,
		ContactDetails:      contact,
		Status:              domain.ShopReqPending,
		Notes:               strings.TrimSpace(in.Notes),
	}
	if err := s.deps.Store.CreateShoppingRequest(ctx, r); err != nil {
		log.Error("create shopping request failed", logger.Err(err))
		return nil, err
	}

	log.Info("shopping request created",
		logger.String("request_id", r.ID),
		logger.UserID(requesterID),
	)
	return r, nil
}

// ListShoppingRequests lista encargos según el rol: "made" los que hizo
// el usuario, "received" los que le llegaron como shopper.
func (s *Service) ListShoppingRequests(ctx context.Context, userID, role string, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	switch role {
	case "", "made":
		return s.deps.Store.ListShoppingRequestsMade(ctx, userID, limit, offset)
	case "received":
		return s.deps.Store.ListShoppingRequestsReceived(ctx, userID, limit, offset)
	}
	return nil, 0, ErrInvalidAction
}

// RespondToRequest aplica una acción sobre un encargo. El shopper
// acepta o rechaza pendientes; completar un aceptado lo puede hacer el
// shopper o quien encargó.
func (s *Service) RespondToRequest(ctx context.Context, requestID, callerID, action string) (*domain.ShoppingRequest, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("errands.shopping"),
		logger.Op("RespondToRequest"),
		logger.String("request_id", requestID),
	)

	r, err := s.deps.Store.GetShoppingRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var from, to domain.ShoppingRequestStatus
	switch action {
	case ActionAccept, ActionReject:
		if callerID != r.ShopperID {
			log.Debug("respond rejected", logger.UserID(callerID))
			return nil, domain.ErrForbidden
		}
		from, to = domain.ShopReqPending, domain.ShopReqAccepted
		if action == ActionReject {
			to = domain.ShopReqRejected
		}
	case ActionComplete:
		if callerID != r.ShopperID && callerID != r.RequesterID {
			log.Debug("respond rejected", logger.UserID(callerID))
			return nil, domain.ErrForbidden
		}
		from, to = domain.ShopReqAccepted, domain.ShopReqCompleted
	default:
		return nil, ErrInvalidAction
	}

	if r.Status != from {
		return nil, ErrInvalidTransition
	}
	// El update va guardado por el shopper real del encargo, no por el
	// caller: completar lo puede disparar también quien encargó.
	if err := s.deps.Store.UpdateShoppingRequestStatus(ctx, requestID, r.ShopperID, from, to); err != nil {
		return nil, err
	}

	log.Info("shopping request updated",
		logger.String("action", action),
		logger.String("from", string(from)),
		logger.String("to", string(to)),
	)
	return s.deps.Store.GetShoppingRequestByID(ctx, requestID)
}
