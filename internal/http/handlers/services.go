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

// ServiceCatalog es la parte de catálogo que tocan los servicios
// ofrecidos (cortes de pelo, reparaciones, etc).
type ServiceCatalog interface {
	ListServices(ctx context.Context, f pg.ServiceFilter) ([]domain.Service, int, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	CreateService(ctx context.Context, ownerID string, in catalog.ServiceInput) (*domain.Service, error)
	UpdateService(ctx context.Context, ownerID, serviceID string, in catalog.ServiceInput) (*domain.Service, error)
	DeleteService(ctx context.Context, ownerID, serviceID string) error
	MyServices(ctx context.Context, ownerID string, limit, offset int) ([]domain.Service, int, error)
}

type ServicesHandler struct {
	Svc ServiceCatalog
}

func (h *ServicesHandler) Register(r chi.Router) {
	r.Get("/services", h.list)
	r.Get("/services/{id}", h.get)
}

func (h *ServicesHandler) RegisterOwner(r chi.Router) {
	r.Post("/business/services", h.create)
	r.Get("/business/services", h.mine)
	r.Put("/business/services/{id}", h.update)
	r.Delete("/business/services/{id}", h.remove)
}

func (h *ServicesHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	q := r.URL.Query()

	ss, total, err := h.Svc.ListServices(r.Context(), pg.ServiceFilter{
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
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderServices(ss), page, total))
}

func (h *ServicesHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderService(s))
}

type serviceIn struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CategoryID  *string       `json:"category_id"`
	PriceCents  *domain.Cents `json:"price_cents"`
	Duration    string        `json:"duration"`
	Available   *bool         `json:"available"`
	ImageURL    string        `json:"image_url"`
}

func (in *serviceIn) toInput() catalog.ServiceInput {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	return catalog.ServiceInput{
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		PriceCents:  in.PriceCents,
		Duration:    in.Duration,
		Available:   available,
		ImageURL:    in.ImageURL,
	}
}

func (h *ServicesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in serviceIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	s, err := h.Svc.CreateService(r.Context(), httpx.UserIDFrom(r.Context()), in.toInput())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderService(s))
}

func (h *ServicesHandler) mine(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	ss, total, err := h.Svc.MyServices(r.Context(), httpx.UserIDFrom(r.Context()), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderServices(ss), page, total))
}

func (h *ServicesHandler) update(w http.ResponseWriter, r *http.Request) {
	var in serviceIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	s, err := h.Svc.UpdateService(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"), in.toInput())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderService(s))
}

func (h *ServicesHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteService(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
