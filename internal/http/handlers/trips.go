package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/errands"
)

// TripService cubre viajes de compras y sus encargos.
type TripService interface {
	CreateTrip(ctx context.Context, shopperID string, in errands.CreateTripInput) (*domain.ShoppingTrip, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]domain.ShoppingTrip, int, error)
	ListMine(ctx context.Context, shopperID string, limit, offset int) ([]domain.ShoppingTrip, int, error)
	AdvanceTrip(ctx context.Context, tripID, callerID string, next domain.TripStatus) (*domain.ShoppingTrip, error)

	CreateShoppingRequest(ctx context.Context, requesterID string, in errands.ShoppingRequestInput) (*domain.ShoppingRequest, error)
	ListShoppingRequests(ctx context.Context, userID, role string, limit, offset int) ([]domain.ShoppingRequest, int, error)
	RespondToRequest(ctx context.Context, requestID, callerID, action string) (*domain.ShoppingRequest, error)
}

type TripsHandler struct {
	Svc TripService
}

func (h *TripsHandler) Register(r chi.Router) {
	r.Post("/shopping-trips", h.createTrip)
	r.Get("/shopping-trips", h.listAvailable)
	r.Get("/shopping-trips/mine", h.listMine)
	r.Post("/shopping-trips/{id}/status", h.advance)
	r.Post("/shopping-trips/{id}/requests", h.createRequest)
	r.Get("/shopping-requests", h.listRequests)
	r.Post("/shopping-requests/{id}/respond", h.respond)
}

type createTripIn struct {
	Destination          string    `json:"destination"`
	PlannedDepartureTime time.Time `json:"planned_departure_time"`
	EstimatedReturnTime  time.Time `json:"estimated_return_time"`
	Notes                string    `json:"notes"`
}

func (h *TripsHandler) createTrip(w http.ResponseWriter, r *http.Request) {
	var in createTripIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	t, err := h.Svc.CreateTrip(r.Context(), httpx.UserIDFrom(r.Context()), errands.CreateTripInput{
		Destination: in.Destination,
		Departure:   in.PlannedDepartureTime,
		Return:      in.EstimatedReturnTime,
		Notes:       in.Notes,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderTrip(t))
}

func (h *TripsHandler) listAvailable(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	ts, total, err := h.Svc.ListAvailable(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderTrips(ts), page, total))
}

func (h *TripsHandler) listMine(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	ts, total, err := h.Svc.ListMine(r.Context(), httpx.UserIDFrom(r.Context()), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderTrips(ts), page, total))
}

type tripStatusIn struct {
	Status string `json:"status"`
}

func (h *TripsHandler) advance(w http.ResponseWriter, r *http.Request) {
	var in tripStatusIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	t, err := h.Svc.AdvanceTrip(r.Context(), chi.URLParam(r, "id"), httpx.UserIDFrom(r.Context()), domain.TripStatus(in.Status))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderTrip(t))
}

type shoppingRequestIn struct {
	ItemsRequested      string        `json:"items_requested"`
	EstimatedTotalCents *domain.Cents `json:"estimated_total_cents"`
	ShopperFeeCents     *domain.Cents `json:"shopper_fee_cents"`
	DeliveryLocation    string        `json:"delivery_location"`
	ContactDetails      string        `json:"contact_details"`
	Notes               string        `json:"notes"`
}

func (h *TripsHandler) createRequest(w http.ResponseWriter, r *http.Request) {
	var in shoppingRequestIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	sr, err := h.Svc.CreateShoppingRequest(r.Context(), httpx.UserIDFrom(r.Context()), errands.ShoppingRequestInput{
		TripID:              chi.URLParam(r, "id"),
		ItemsRequested:      in.ItemsRequested,
		EstimatedTotalCents: in.EstimatedTotalCents,
		ShopperFeeCents:     in.ShopperFeeCents,
		DeliveryLocation:    in.DeliveryLocation,
		ContactDetails:      in.ContactDetails,
		Notes:               in.Notes,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderShoppingRequest(sr))
}

// listRequests: ?role=made (encargos que hice) | received (encargos a
// mis viajes, el default).
func (h *TripsHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	rs, total, err := h.Svc.ListShoppingRequests(r.Context(), httpx.UserIDFrom(r.Context()), r.URL.Query().Get("role"), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderShoppingRequests(rs), page, total))
}

type respondIn struct {
	Action string `json:"action"`
}

func (h *TripsHandler) respond(w http.ResponseWriter, r *http.Request) {
	var in respondIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	sr, err := h.Svc.RespondToRequest(r.Context(), chi.URLParam(r, "id"), httpx.UserIDFrom(r.Context()), in.Action)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderShoppingRequest(sr))
}
