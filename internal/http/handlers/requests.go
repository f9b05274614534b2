package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/errands"
)

// ItemRequestService es el tablero de pedidos (demanda) y su reporte.
type ItemRequestService interface {
	CreateItemRequest(ctx context.Context, requesterID string, in errands.ItemRequestInput) (*domain.ItemRequest, error)
	ListItemRequests(ctx context.Context, viewerID string, opts errands.ListItemRequestsOptions) ([]domain.ItemRequest, int, error)
	ToggleItemRequestFulfilled(ctx context.Context, id, callerID string, callerRole domain.Role) (*domain.ItemRequest, error)
	DeleteItemRequest(ctx context.Context, id, callerID string, callerRole domain.Role) error
	Demand(ctx context.Context) (*errands.DemandReport, error)
}

type ItemRequestsHandler struct {
	Svc ItemRequestService
}

func (h *ItemRequestsHandler) Register(r chi.Router) {
	r.Post("/product-requests", h.create(domain.RequestKindProduct))
	r.Get("/product-requests", h.list(domain.RequestKindProduct))
	r.Post("/product-requests/{id}/fulfill", h.fulfill)
	r.Delete("/product-requests/{id}", h.remove)

	r.Post("/service-requests", h.create(domain.RequestKindService))
	r.Get("/service-requests", h.list(domain.RequestKindService))
	r.Post("/service-requests/{id}/fulfill", h.fulfill)
	r.Delete("/service-requests/{id}", h.remove)
}

// RegisterOwner monta el reporte de demanda (dueño aprobado).
func (h *ItemRequestsHandler) RegisterOwner(r chi.Router) {
	r.Get("/business/demand", h.demand)
}

type itemRequestIn struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategoryID  string        `json:"category_id"`
	BudgetCents *domain.Cents `json:"budget_cents"`
	ContactInfo string        `json:"contact_info"`
}

func (h *ItemRequestsHandler) create(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in itemRequestIn
		if !httpx.ReadJSON(w, r, &in) {
			return
		}

		req, err := h.Svc.CreateItemRequest(r.Context(), httpx.UserIDFrom(r.Context()), errands.ItemRequestInput{
			Kind:        kind,
			Title:       in.Title,
			Description: in.Description,
			CategoryID:  in.CategoryID,
			BudgetCents: in.BudgetCents,
			ContactInfo: in.ContactInfo,
		})
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, renderItemRequest(req))
	}
}

// list: ?mine=true lista los pedidos propios (incluye cumplidos); sin
// eso es el tablero abierto, filtrable por categoría.
func (h *ItemRequestsHandler) list(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, offset := pageParams(r)
		q := r.URL.Query()

		rs, total, err := h.Svc.ListItemRequests(r.Context(), httpx.UserIDFrom(r.Context()), errands.ListItemRequestsOptions{
			Kind:       kind,
			Mine:       q.Get("mine") == "true",
			CategoryID: q.Get("category"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderItemRequests(rs), page, total))
	}
}

func (h *ItemRequestsHandler) fulfill(w http.ResponseWriter, r *http.Request) {
	id := httpx.IdentityFrom(r.Context())
	req, err := h.Svc.ToggleItemRequestFulfilled(r.Context(), chi.URLParam(r, "id"), id.UserID, id.Role)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderItemRequest(req))
}

func (h *ItemRequestsHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := httpx.IdentityFrom(r.Context())
	if err := h.Svc.DeleteItemRequest(r.Context(), chi.URLParam(r, "id"), id.UserID, id.Role); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemRequestsHandler) demand(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Svc.Demand(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderDemand(rep))
}
