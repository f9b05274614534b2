package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/commerce"
)

// CartService es la parte de comercio que toca el carrito.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*commerce.CartView, error)
	AddItem(ctx context.Context, userID, productID string, qty int) (*commerce.CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, qty int) (*commerce.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*commerce.CartView, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	Svc CartService
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.get)
	r.Post("/cart/items", h.add)
	r.Put("/cart/items/{productID}", h.updateQuantity)
	r.Delete("/cart/items/{productID}", h.remove)
	r.Delete("/cart", h.clear)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.GetCart(r.Context(), httpx.UserIDFrom(r.Context()))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCart(v))
}

type addItemIn struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var in addItemIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if in.ProductID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "falta product_id", 1100)
		return
	}

	v, err := h.Svc.AddItem(r.Context(), httpx.UserIDFrom(r.Context()), in.ProductID, in.Quantity)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCart(v))
}

type quantityIn struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var in quantityIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	v, err := h.Svc.UpdateItemQuantity(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "productID"), in.Quantity)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCart(v))
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.RemoveItem(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCart(v))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.ClearCart(r.Context(), httpx.UserIDFrom(r.Context())); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
