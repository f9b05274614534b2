package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/catalog"
	"github.com/Peekay0523/MadidiMarket/internal/service/reviews"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// BusinessService es la parte de catálogo que tocan los negocios.
type BusinessService interface {
	ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error)
	GetBusiness(ctx context.Context, id string) (*domain.Business, error)
	CreateBusiness(ctx context.Context, ownerID string, in catalog.BusinessInput) (*domain.Business, error)
	UpdateMyBusiness(ctx context.Context, ownerID string, in catalog.BusinessInput) (*domain.Business, error)
	MyBusiness(ctx context.Context, ownerID string) (*domain.Business, error)
	ListProducts(ctx context.Context, f pg.ProductFilter) ([]domain.Product, int, error)
	ListServices(ctx context.Context, f pg.ServiceFilter) ([]domain.Service, int, error)
}

// ReviewSummarizer agrega rating promedio y conteo para el detalle.
type ReviewSummarizer interface {
	Summary(ctx context.Context, target domain.ReviewTarget, targetID string) (reviews.RatingSummary, error)
}

type BusinessesHandler struct {
	Svc     BusinessService
	Reviews ReviewSummarizer
}

// detalle público: cuántos productos y servicios mostrar por negocio
const businessDetailLimit = 50

func (h *BusinessesHandler) Register(r chi.Router) {
	r.Get("/businesses", h.list)
	r.Get("/businesses/{id}", h.get)
}

// RegisterOwner monta las rutas del negocio propio (dueño aprobado).
func (h *BusinessesHandler) RegisterOwner(r chi.Router) {
	r.Post("/business", h.create)
	r.Get("/business", h.mine)
	r.Put("/business", h.update)
}

func (h *BusinessesHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	bs, total, err := h.Svc.ListBusinesses(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderBusinesses(bs), page, total))
}

type businessDetailOut struct {
	Business businessView      `json:"business"`
	Products []productView     `json:"products"`
	Services []serviceView     `json:"services"`
	Rating   ratingSummaryView `json:"rating"`
}

func (h *BusinessesHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.Svc.GetBusiness(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	products, _, err := h.Svc.ListProducts(r.Context(), pg.ProductFilter{
		BusinessID:    b.ID,
		OnlyAvailable: true,
		Limit:         businessDetailLimit,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	services, _, err := h.Svc.ListServices(r.Context(), pg.ServiceFilter{
		BusinessID:    b.ID,
		OnlyAvailable: true,
		Limit:         businessDetailLimit,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	summary, err := h.Reviews.Summary(r.Context(), domain.TargetBusiness, b.ID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, businessDetailOut{
		Business: renderBusiness(b),
		Products: renderProducts(products),
		Services: renderServices(services),
		Rating:   renderSummary(summary),
	})
}

type businessIn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	LogoURL     string `json:"logo_url"`
}

func (h *BusinessesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in businessIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	b, err := h.Svc.CreateBusiness(r.Context(), httpx.UserIDFrom(r.Context()), catalog.BusinessInput(in))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderBusiness(b))
}

func (h *BusinessesHandler) mine(w http.ResponseWriter, r *http.Request) {
	b, err := h.Svc.MyBusiness(r.Context(), httpx.UserIDFrom(r.Context()))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderBusiness(b))
}

func (h *BusinessesHandler) update(w http.ResponseWriter, r *http.Request) {
	var in businessIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	b, err := h.Svc.UpdateMyBusiness(r.Context(), httpx.UserIDFrom(r.Context()), catalog.BusinessInput(in))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderBusiness(b))
}
