package domain

import "time"

// ReviewTarget distingue qué entidad recibe la reseña.
type ReviewTarget string

const (
	TargetBusiness ReviewTarget = "business"
	TargetProduct  ReviewTarget = "product"
	TargetService  ReviewTarget = "service"
)

// IsValid retorna true para un target conocido.
func (t ReviewTarget) IsValid() bool {
	switch t {
	case TargetBusiness, TargetProduct, TargetService:
		return true
	}
	return false
}

// Review es una reseña con rating 1..5 sobre exactamente una entidad.
type Review struct {
	ID         string
	ReviewerID string
	BusinessID *string
	ProductID  *string
	ServiceID  *string
	Rating     int
	Comment    string
	CreatedAt  time.Time

	// Agregados para listados; poblados por el store.
	ReviewerName string
	Likes        int
	Dislikes     int
	CallerVote   *bool // nil sin voto; true like, false dislike
}

// ReviewVote es el voto de un usuario sobre una reseña; (review, user)
// es único.
type ReviewVote struct {
	ReviewID  string
	UserID    string
	IsLike    bool
	CreatedAt time.Time
}

// VoteOutcome describe el efecto de un voto con semántica de toggle.
type VoteOutcome string

const (
	VoteLiked             VoteOutcome = "liked"
	VoteDisliked          VoteOutcome = "disliked"
	VoteRemovedLike       VoteOutcome = "removed_like"
	VoteRemovedDislike    VoteOutcome = "removed_dislike"
	VoteSwitchedToLike    VoteOutcome = "switched_to_like"
	VoteSwitchedToDislike VoteOutcome = "switched_to_dislike"
)

// ResolveVote aplica la semántica de toggle: sin voto previo registra;
// repetir la misma acción lo quita; la acción contraria lo cambia.
// prev es nil cuando el usuario no había votado.
func ResolveVote(prev *bool, isLike bool) (outcome VoteOutcome, remove bool) {
	if prev == nil {
		if isLike {
			return VoteLiked, false
		}
		return VoteDisliked, false
	}
	if *prev == isLike {
		if isLike {
			return VoteRemovedLike, true
		}
		return VoteRemovedDislike, true
	}
	if isLike {
		return VoteSwitchedToLike, false
	}
	return VoteSwitchedToDislike, false
}
