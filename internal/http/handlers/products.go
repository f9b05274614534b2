package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/catalog"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// ProductService es la parte de catálogo que tocan los productos.
type ProductService interface {
	ListProducts(ctx context.Context, f pg.ProductFilter) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, ownerID string, in catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID string, in catalog.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID, productID string) error
	MyProducts(ctx context.Context, ownerID string, limit, offset int) ([]domain.Product, int, error)
}

type ProductsHandler struct {
	Svc ProductService
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

// RegisterOwner monta el CRUD del catálogo propio (dueño aprobado).
func (h *ProductsHandler) RegisterOwner(r chi.Router) {
	r.Post("/business/products", h.create)
	r.Get("/business/products", h.mine)
	r.Put("/business/products/{id}", h.update)
	r.Delete("/business/products/{id}", h.remove)
}

// list expone el catálogo público: sólo disponibles, con filtros por
// categoría, negocio y texto.
func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	q := r.URL.Query()

	ps, total, err := h.Svc.ListProducts(r.Context(), pg.ProductFilter{
		CategoryID:    q.Get("category"),
		BusinessID:    q.Get("business"),
		Query:         q.Get("q"),
		OnlyAvailable: true,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderProducts(ps), page, total))
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderProduct(p))
}

type productIn struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	CategoryID    *string      `json:"category_id"`
	PriceCents    domain.Cents `json:"price_cents"`
	StockQuantity int          `json:"stock_quantity"`
	Available     *bool        `json:"available"`
	ImageURL      string       `json:"image_url"`
}

func (in *productIn) toInput() catalog.ProductInput {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	return catalog.ProductInput{
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		PriceCents:    in.PriceCents,
		StockQuantity: in.StockQuantity,
		Available:     available,
		ImageURL:      in.ImageURL,
	}
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in productIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	p, err := h.Svc.CreateProduct(r.Context(), httpx.UserIDFrom(r.Context()), in.toInput())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderProduct(p))
}

func (h *ProductsHandler) mine(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	ps, total, err := h.Svc.MyProducts(r.Context(), httpx.UserIDFrom(r.Context()), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderProducts(ps), page, total))
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in productIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	p, err := h.Svc.UpdateProduct(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"), in.toInput())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderProduct(p))
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteProduct(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
