package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/recommend"
)

// Recommender calcula sugerencias personalizadas o populares.
type Recommender interface {
	ForUser(ctx context.Context, userID string, limit int) (*recommend.Result, error)
}

type RecommendationsHandler struct {
	Engine Recommender
}

// Register monta las rutas públicas; con bearer opcional la respuesta
// se personaliza según las reseñas del caller.
func (h *RecommendationsHandler) Register(r chi.Router) {
	r.Get("/recommendations/products", h.products)
	r.Get("/recommendations/services", h.services)
}

func (h *RecommendationsHandler) compute(w http.ResponseWriter, r *http.Request) *recommend.Result {
	limit := limitParam(r, 50)
	res, err := h.Engine.ForUser(r.Context(), httpx.UserIDFrom(r.Context()), limit)
	if err != nil {
		WriteServiceError(w, r, err)
		return nil
	}
	return res
}

func (h *RecommendationsHandler) products(w http.ResponseWriter, r *http.Request) {
	res := h.compute(w, r)
	if res == nil {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items":    renderProducts(res.Products),
		"fallback": res.Fallback,
	})
}

func (h *RecommendationsHandler) services(w http.ResponseWriter, r *http.Request) {
	res := h.compute(w, r)
	if res == nil {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items":    renderServices(res.Services),
		"fallback": res.Fallback,
	})
}
