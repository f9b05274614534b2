// Package reviews maneja las reseñas con rating 1..5 sobre negocios,
// productos y servicios, y los votos like/dislike con semántica de
// toggle.
//
// Productos y servicios aceptan una reseña por usuario (la segunda
// actualiza la primera); los negocios aceptan varias del mismo usuario.
package reviews

import (
	"context"
	"fmt"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// Errores de reseñas. Los handlers los mapean a códigos HTTP.
var (
	ErrInvalidTarget = fmt.Errorf("invalid review target")
	ErrInvalidRating = fmt.Errorf("rating must be between 1 and 5")
	ErrInvalidVote   = fmt.Errorf("invalid vote action")
)

// Acciones de voto aceptadas por Vote.
const (
	ActionLike    = "like"
	ActionDislike = "dislike"
)

// Store es lo que el servicio necesita de Postgres.
type Store interface {
	CreateReview(ctx context.Context, r *domain.Review) error
	FindReviewByReviewer(ctx context.Context, reviewerID string, target domain.ReviewTarget, targetID string) (*domain.Review, error)
	UpdateReviewContent(ctx context.Context, id string, rating int, comment string) error
	GetReviewByID(ctx context.Context, id, callerID string) (*domain.Review, error)
	DeleteReview(ctx context.Context, id string) error
	ListReviewsForTarget(ctx context.Context, target domain.ReviewTarget, targetID, callerID string, limit, offset int) ([]domain.Review, int, error)
	RecentReviews(ctx context.Context, callerID string, limit int) ([]domain.Review, error)
	RatingSummary(ctx context.Context, target domain.ReviewTarget, targetID string) (float64, int, error)
	ApplyVote(ctx context.Context, reviewID, userID string, isLike bool) (domain.VoteOutcome, int, int, error)

	GetBusinessByID(ctx context.Context, id string) (*domain.Business, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Store Store
}

type Service struct {
	deps Deps
}

// New crea el servicio.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// defaultRecentLimit es cuántas reseñas recientes muestra la portada.
	defaultRecentLimit = 6
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// targetExists verifica que la entidad reseñada exista antes de crear
// la reseña; devuelve domain.ErrNotFound si no.
func (s *Service) targetExists(ctx context.Context, target domain.ReviewTarget, targetID string) error {
	var err error
	switch target {
	case domain.TargetBusiness:
		_, err = s.deps.Store.GetBusinessByID(ctx, targetID)
	case domain.TargetProduct:
		_, err = s.deps.Store.GetProductByID(ctx, targetID)
	case domain.TargetService:
		_, err = s.deps.Store.GetServiceByID(ctx, targetID)
	default:
		return ErrInvalidTarget
	}
	return err
}
