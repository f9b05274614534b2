package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
	"github.com/Peekay0523/MadidiMarket/internal/service/reviews"
)

// ReviewService es lo que el handler necesita del servicio de reseñas.
type ReviewService interface {
	CreateReview(ctx context.Context, reviewerID string, in reviews.CreateReviewInput) (*domain.Review, error)
	ListForTarget(ctx context.Context, target domain.ReviewTarget, targetID, callerID string, limit, offset int) ([]domain.Review, int, error)
	Recent(ctx context.Context, callerID string, limit int) ([]domain.Review, error)
	Vote(ctx context.Context, reviewID, userID, action string) (reviews.VoteResult, error)
	DeleteReview(ctx context.Context, id, callerID string, callerRole domain.Role) error
}

type ReviewsHandler struct {
	Svc     ReviewService
	Limiter rate.MultiLimiter

	VoteBudget httpx.RateConfig
}

// recentDefault es el largo por defecto de /reviews/recent.
const recentDefault = 6

// Register monta los listados públicos; con bearer opcional marcan el
// voto del caller en cada reseña.
func (h *ReviewsHandler) Register(r chi.Router) {
	r.Get("/businesses/{id}/reviews", h.forTarget(domain.TargetBusiness))
	r.Get("/products/{id}/reviews", h.forTarget(domain.TargetProduct))
	r.Get("/services/{id}/reviews", h.forTarget(domain.TargetService))
	r.Get("/reviews/recent", h.recent)
}

// RegisterProtected monta crear, votar y borrar (requieren bearer).
func (h *ReviewsHandler) RegisterProtected(r chi.Router) {
	r.Post("/reviews", h.create)
	r.Post("/reviews/{id}/vote", h.vote)
	r.Delete("/reviews/{id}", h.remove)
}

type createReviewIn struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in createReviewIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	rv, err := h.Svc.CreateReview(r.Context(), httpx.UserIDFrom(r.Context()), reviews.CreateReviewInput{
		Target:   domain.ReviewTarget(in.TargetType),
		TargetID: in.TargetID,
		Rating:   in.Rating,
		Comment:  in.Comment,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, renderReview(rv))
}

func (h *ReviewsHandler) forTarget(target domain.ReviewTarget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, offset := pageParams(r)
		rs, total, err := h.Svc.ListForTarget(r.Context(), target, chi.URLParam(r, "id"), httpx.UserIDFrom(r.Context()), limit, offset)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderReviews(rs), page, total))
	}
}

func (h *ReviewsHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 50)
	if limit == 0 {
		limit = recentDefault
	}
	rs, err := h.Svc.Recent(r.Context(), httpx.UserIDFrom(r.Context()), limit)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": renderReviews(rs)})
}

type voteIn struct {
	Action string `json:"action"`
}

type voteOut struct {
	Likes      int    `json:"likes"`
	Dislikes   int    `json:"dislikes"`
	UserAction string `json:"user_action"`
}

func (h *ReviewsHandler) vote(w http.ResponseWriter, r *http.Request) {
	var in voteIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	userID := httpx.UserIDFrom(r.Context())
	if !httpx.EnforceVoteLimit(w, r, h.Limiter, h.VoteBudget, userID) {
		return
	}

	res, err := h.Svc.Vote(r.Context(), chi.URLParam(r, "id"), userID, in.Action)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, voteOut{
		Likes:      res.Likes,
		Dislikes:   res.Dislikes,
		UserAction: string(res.Outcome),
	})
}

func (h *ReviewsHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := httpx.IdentityFrom(r.Context())
	if err := h.Svc.DeleteReview(r.Context(), chi.URLParam(r, "id"), id.UserID, id.Role); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
