package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// CreateReviewInput es lo que llega del handler para reseñar.
type CreateReviewInput struct {
	Target   domain.ReviewTarget
	TargetID string
	Rating   int
	Comment  string
}

// RatingSummary agrega el promedio y el total de reseñas de una entidad.
type RatingSummary struct {
	Average float64
	Count   int
}

// CreateReview registra la reseña del usuario sobre una entidad. No se
// exige compra previa. Para productos y servicios una segunda reseña
// del mismo usuario pisa la anterior; los negocios aceptan varias.
func (s *Service) CreateReview(ctx context.Context, reviewerID string, in CreateReviewInput) (*domain.Review, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("reviews"),
		logger.Op("CreateReview"),
		logger.UserID(reviewerID),
	)

	if !in.Target.IsValid() {
		return nil, ErrInvalidTarget
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if err := s.targetExists(ctx, in.Target, in.TargetID); err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(in.Comment)

	if in.Target != domain.TargetBusiness {
		prev, err := s.deps.Store.FindReviewByReviewer(ctx, reviewerID, in.Target, in.TargetID)
		switch {
		case err == nil:
			if err := s.deps.Store.UpdateReviewContent(ctx, prev.ID, in.Rating, comment); err != nil {
				log.Error("review update failed", logger.Err(err))
				return nil, err
			}
			log.Info("review updated",
				logger.ReviewID(prev.ID),
				logger.String("target", string(in.Target)),
				logger.Int("rating", in.Rating),
			)
			return s.deps.Store.GetReviewByID(ctx, prev.ID, reviewerID)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	r := &domain.Review{
		ReviewerID: reviewerID,
		Rating:     in.Rating,
		Comment:    comment,
	}
	switch in.Target {
	case domain.TargetBusiness:
		r.BusinessID = &in.TargetID
	case domain.TargetProduct:
		r.ProductID = &in.TargetID
	case domain.TargetService:
		r.ServiceID = &in.TargetID
	}
	if err := s.deps.Store.CreateReview(ctx, r); err != nil {
		log.Error("review create failed", logger.Err(err))
		return nil, err
	}

	log.Info("review created",
		logger.ReviewID(r.ID),
		logger.String("target", string(in.Target)),
		logger.Int("rating", in.Rating),
	)
	return s.deps.Store.GetReviewByID(ctx, r.ID, reviewerID)
}

// GetReview devuelve una reseña con sus conteos de votos. callerID
// puede ser vacío para lecturas anónimas.
func (s *Service) GetReview(ctx context.Context, id, callerID string) (*domain.Review, error) {
	return s.deps.Store.GetReviewByID(ctx, id, callerID)
}

// DeleteReview borra una reseña. Sólo el autor o un admin pueden;
// cualquier otro recibe ErrForbidden (las reseñas son públicas, no
// hace falta ocultar su existencia).
func (s *Service) DeleteReview(ctx context.Context, id, callerID string, callerRole domain.Role) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("reviews"),
		logger.Op("DeleteReview"),
		logger.ReviewID(id),
	)

	r, err := s.deps.Store.GetReviewByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if r.ReviewerID != callerID && callerRole != domain.RoleAdmin {
		log.Debug("delete rejected", logger.UserID(callerID))
		return domain.ErrForbidden
	}
	if err := s.deps.Store.DeleteReview(ctx, id); err != nil {
		return err
	}

	log.Info("review deleted", logger.UserID(callerID))
	return nil
}

// ListForTarget pagina las reseñas de una entidad, las más nuevas
// primero, con conteos de votos y el voto del caller.
func (s *Service) ListForTarget(ctx context.Context, target domain.ReviewTarget, targetID, callerID string, limit, offset int) ([]domain.Review, int, error) {
	if !target.IsValid() {
		return nil, 0, ErrInvalidTarget
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListReviewsForTarget(ctx, target, targetID, callerID, limit, offset)
}

// Recent devuelve las últimas reseñas de todo el sitio para la portada.
func (s *Service) Recent(ctx context.Context, callerID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.deps.Store.RecentReviews(ctx, callerID, limit)
}

// Summary devuelve promedio y cantidad de reseñas de una entidad.
func (s *Service) Summary(ctx context.Context, target domain.ReviewTarget, targetID string) (RatingSummary, error) {
	if !target.IsValid() {
		return RatingSummary{}, ErrInvalidTarget
	}
	avg, count, err := s.deps.Store.RatingSummary(ctx, target, targetID)
	if err != nil {
		return RatingSummary{}, err
	}
	return RatingSummary{Average: avg, Count: count}, nil
}
