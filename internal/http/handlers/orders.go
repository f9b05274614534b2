package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/commerce"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// OrderService es la parte de comercio que toca las órdenes.
type OrderService interface {
	GetOrder(ctx context.Context, viewer commerce.Viewer, orderID string) (*commerce.OrderDetail, error)
	ListMyOrders(ctx context.Context, customerID string, f pg.OrderFilter) ([]domain.Order, int, error)
	ListBusinessOrders(ctx context.Context, ownerID string, f pg.OrderFilter) ([]domain.Order, int, error)
	ApplyOrderAction(ctx context.Context, ownerID, orderID string, action domain.OrderAction) (*domain.Order, error)
	CancelMyOrder(ctx context.Context, customerID, orderID string) (*domain.Order, error)
}

type OrdersHandler struct {
	Svc OrderService
}

// Register monta las rutas del cliente (autenticado).
func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listMine)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/cancel", h.cancel)
}

// RegisterOwner monta las rutas del dueño de negocio (aprobado).
func (h *OrdersHandler) RegisterOwner(r chi.Router) {
	r.Get("/business/orders", h.listForBusiness)
	r.Post("/business/orders/{id}/status", h.applyAction)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	os, total, err := h.Svc.ListMyOrders(r.Context(), httpx.UserIDFrom(r.Context()), pg.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderOrders(os), page, total))
}

// get ve el detalle: cliente, negocio dueño o admin; el resto recibe 404.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id := httpx.IdentityFrom(r.Context())
	viewer := commerce.Viewer{UserID: id.UserID, Role: id.Role}

	d, err := h.Svc.GetOrder(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderOrderDetail(d))
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.Svc.CancelMyOrder(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderOrder(o))
}

func (h *OrdersHandler) listForBusiness(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	os, total, err := h.Svc.ListBusinessOrders(r.Context(), httpx.UserIDFrom(r.Context()), pg.OrderFilter{
		Status: r.URL.Query().Get("status"),
		From:   dateParam(r, "date_from"),
		To:     dateParam(r, "date_to"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderOrders(os), page, total))
}

type orderActionIn struct {
	Action string `json:"action"`
}

func (h *OrdersHandler) applyAction(w http.ResponseWriter, r *http.Request) {
	var in orderActionIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if in.Action == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "falta action", 1100)
		return
	}

	o, err := h.Svc.ApplyOrderAction(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"), domain.OrderAction(in.Action))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderOrder(o))
}
