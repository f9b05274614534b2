package reviews

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// VoteResult es el estado de los votos después de aplicar el toggle.
type VoteResult struct {
	Outcome  domain.VoteOutcome
	Likes    int
	Dislikes int
}

// Vote aplica un like o dislike con semántica de toggle: el primer
// voto se registra, repetir la misma acción lo quita y la contraria lo
// cambia. Votar la propia reseña está permitido.
func (s *Service) Vote(ctx context.Context, reviewID, userID, action string) (VoteResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("reviews"),
		logger.Op("Vote"),
		logger.ReviewID(reviewID),
	)

	var isLike bool
	switch action {
	case ActionLike:
		isLike = true
	case ActionDislike:
		isLike = false
	default:
		return VoteResult{}, ErrInvalidVote
	}

	outcome, likes, dislikes, err := s.deps.Store.ApplyVote(ctx, reviewID, userID, isLike)
	if err != nil {
		if !domain.IsNotFound(err) {
			log.Error("vote failed", logger.Err(err))
		}
		return VoteResult{}, err
	}
	metrics.ReviewVotes.WithLabelValues(string(outcome)).Inc()

	log.Debug("vote applied",
		logger.UserID(userID),
		logger.String("outcome", string(outcome)),
	)
	return VoteResult{Outcome: outcome, Likes: likes, Dislikes: dislikes}, nil
}
