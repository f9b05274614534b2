package pg

import (
	"context"
	"fmt"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// reviewCols incluye agregados de votos; $caller es el segundo parámetro
// en todas las consultas que lo usan.
const reviewCols = `r.id, r.reviewer_id, r.business_id, r.product_id, r.service_id,
       r.rating, r.comment, r.created_at, u.full_name,
       (SELECT count(*) FROM review_votes v WHERE v.review_id = r.id AND v.is_like),
       (SELECT count(*) FROM review_votes v WHERE v.review_id = r.id AND NOT v.is_like),
       (SELECT v.is_like FROM review_votes v WHERE v.review_id = r.id AND v.user_id = NULLIF($2, '')::uuid)`

func scanReview(row pgxRow, r *domain.Review) error {
	return row.Scan(
		&r.ID, &r.ReviewerID, &r.BusinessID, &r.ProductID, &r.ServiceID,
		&r.Rating, &r.Comment, &r.CreatedAt, &r.ReviewerName,
		&r.Likes, &r.Dislikes, &r.CallerVote,
	)
}

func reviewTargetCol(t domain.ReviewTarget) (string, error) {
	switch t {
	case domain.TargetBusiness:
		return "business_id", nil
	case domain.TargetProduct:
		return "product_id", nil
	case domain.TargetService:
		return "service_id", nil
	}
	return "", domain.ErrInvalidInput
}

func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	const q = `
INSERT INTO reviews (reviewer_id, business_id, product_id, service_id, rating, comment)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q,
		r.ReviewerID, r.BusinessID, r.ProductID, r.ServiceID, r.Rating, r.Comment,
	).Scan(&r.ID, &r.CreatedAt)
}

// FindReviewByReviewer busca la reseña del usuario sobre una entidad.
// Productos y servicios actualizan la reseña existente en vez de
// duplicarla.
func (s *Store) FindReviewByReviewer(ctx context.Context, reviewerID string, target domain.ReviewTarget, targetID string) (*domain.Review, error) {
	col, err := reviewTargetCol(target)
	if err != nil {
		return nil, err
	}
	// reviewCols usa $2 como caller; acá el caller es el propio reviewer.
	q := `SELECT ` + reviewCols + `
FROM reviews r
JOIN users u ON u.id = r.reviewer_id
WHERE r.reviewer_id = $1 AND r.` + col + ` = $3
LIMIT 1`
	var r domain.Review
	if err := scanReview(s.pool.QueryRow(ctx, q, reviewerID, reviewerID, targetID), &r); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// UpdateReviewContent cambia rating y comentario de una reseña.
func (s *Store) UpdateReviewContent(ctx context.Context, id string, rating int, comment string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reviews SET rating = $2, comment = $3 WHERE id = $1`, id, rating, comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetReviewByID carga la reseña con conteos de votos; callerID puede ser
// vacío para lecturas anónimas.
func (s *Store) GetReviewByID(ctx context.Context, id, callerID string) (*domain.Review, error) {
	q := `SELECT ` + reviewCols + `
FROM reviews r
JOIN users u ON u.id = r.reviewer_id
WHERE r.id = $1
LIMIT 1`
	var r domain.Review
	if err := scanReview(s.pool.QueryRow(ctx, q, id, callerID), &r); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListReviewsForTarget lista las reseñas de un negocio, producto o
// servicio, más recientes primero.
func (s *Store) ListReviewsForTarget(ctx context.Context, target domain.ReviewTarget, targetID, callerID string, limit, offset int) ([]domain.Review, int, error) {
	col, err := reviewTargetCol(target)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM reviews WHERE %s = $1`, col), targetID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + reviewCols + `
FROM reviews r
JOIN users u ON u.id = r.reviewer_id
WHERE r.` + col + ` = $1
ORDER BY r.created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := s.pool.Query(ctx, q, targetID, callerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := scanReview(rows, &r); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// RecentReviews retorna las últimas reseñas de todo el sitio.
func (s *Store) RecentReviews(ctx context.Context, callerID string, limit int) ([]domain.Review, error) {
	q := `SELECT ` + reviewCols + `
FROM reviews r
JOIN users u ON u.id = r.reviewer_id
ORDER BY r.created_at DESC
LIMIT $1`
	// reviewCols referencia $2 como caller; el límite queda en $1.
	rows, err := s.pool.Query(ctx, q, limit, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := scanReview(rows, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RatingSummary retorna promedio y cantidad de reseñas de una entidad.
func (s *Store) RatingSummary(ctx context.Context, target domain.ReviewTarget, targetID string) (float64, int, error) {
	col, err := reviewTargetCol(target)
	if err != nil {
		return 0, 0, err
	}
	var avg float64
	var count int
	q := fmt.Sprintf(`SELECT COALESCE(avg(rating), 0), count(*) FROM reviews WHERE %s = $1`, col)
	if err := s.pool.QueryRow(ctx, q, targetID).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

// ApplyVote aplica la semántica de toggle sobre el voto del usuario y
// retorna el resultado junto con los conteos actualizados.
func (s *Store) ApplyVote(ctx context.Context, reviewID, userID string, isLike bool) (domain.VoteOutcome, int, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", 0, 0, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`, reviewID,
	).Scan(&exists); err != nil {
		return "", 0, 0, err
	}
	if !exists {
		return "", 0, 0, domain.ErrNotFound
	}

	var prev *bool
	err = tx.QueryRow(ctx,
		`SELECT is_like FROM review_votes WHERE review_id = $1 AND user_id = $2 FOR UPDATE`,
		reviewID, userID,
	).Scan(&prev)
	if err != nil && !noRows(err) {
		return "", 0, 0, err
	}

	outcome, remove := domain.ResolveVote(prev, isLike)
	if remove {
		if _, err := tx.Exec(ctx,
			`DELETE FROM review_votes WHERE review_id = $1 AND user_id = $2`, reviewID, userID,
		); err != nil {
			return "", 0, 0, err
		}
	} else {
		const q = `
INSERT INTO review_votes (review_id, user_id, is_like)
VALUES ($1, $2, $3)
ON CONFLICT (review_id, user_id) DO UPDATE SET is_like = EXCLUDED.is_like`
		if _, err := tx.Exec(ctx, q, reviewID, userID, isLike); err != nil {
			return "", 0, 0, err
		}
	}

	var likes, dislikes int
	if err := tx.QueryRow(ctx, `
SELECT count(*) FILTER (WHERE is_like), count(*) FILTER (WHERE NOT is_like)
FROM review_votes WHERE review_id = $1`, reviewID,
	).Scan(&likes, &dislikes); err != nil {
		return "", 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", 0, 0, err
	}
	return outcome, likes, dislikes, nil
}
