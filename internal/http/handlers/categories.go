package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/service/catalog"
)

// CategoryService es la parte de catálogo que tocan las categorías.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	PopularCategories(ctx context.Context, limit int) ([]domain.CategoryCount, error)
	CreateCategory(ctx context.Context, in catalog.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoriesHandler struct {
	Svc CategoryService
}

func (h *CategoriesHandler) Register(r chi.Router) {
	r.Get("/categories", h.list)
	r.Get("/categories/popular", h.popular)
}

// RegisterAdmin monta el CRUD de categorías bajo /admin.
func (h *CategoriesHandler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/categories", h.create)
	r.Put("/admin/categories/{id}", h.update)
	r.Delete("/admin/categories/{id}", h.remove)
}

func (h *CategoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": renderCategories(cs)})
}

func (h *CategoriesHandler) popular(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.PopularCategories(r.Context(), limitParam(r, 20))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": renderCategoryCounts(cs)})
}

type categoryIn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoriesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in categoryIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	c, err := h.Svc.CreateCategory(r.Context(), catalog.CategoryInput(in))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderCategory(c))
}

func (h *CategoriesHandler) update(w http.ResponseWriter, r *http.Request) {
	var in categoryIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	c, err := h.Svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), catalog.CategoryInput(in))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCategory(c))
}

func (h *CategoriesHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
