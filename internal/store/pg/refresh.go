package pg

import (
	"context"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// CreateRefreshToken emite un refresh token opaco y retorna el
// plaintext. Solo el hash SHA-256 toca la base.
func (s *Store) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration, userAgent, ip string) (string, error) {
	pt, h, err := generateToken()
	if err != nil {
		return "", err
	}
	const q = `
INSERT INTO refresh_tokens (user_id, token_hash, user_agent, ip, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.pool.Exec(ctx, q, userID, h, userAgent, ip, time.Now().Add(ttl)); err != nil {
		return "", err
	}
	return pt, nil
}

// GetRefreshTokenByPlaintext busca el refresh por su hash.
func (s *Store) GetRefreshTokenByPlaintext(ctx context.Context, plaintext string) (*domain.RefreshToken, error) {
	const q = `
SELECT id, user_id, token_hash, user_agent, ip, expires_at, revoked_at, created_at
FROM refresh_tokens
WHERE token_hash = $1
LIMIT 1`
	var rt domain.RefreshToken
	err := s.pool.QueryRow(ctx, q, hashToken(plaintext)).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.UserAgent, &rt.IP,
		&rt.ExpiresAt, &rt.RevokedAt, &rt.CreatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken revoca un refresh por id (idempotente).
func (s *Store) RevokeRefreshToken(ctx context.Context, id string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`
	_, err := s.pool.Exec(ctx, q, id)
	return err
}

// RotateRefreshToken revoca el token viejo y emite uno nuevo en la
// misma transacción. Si el viejo ya estaba revocado retorna
// domain.ErrConflict (posible robo de token: el caller debería revocar
// toda la sesión).
func (s *Store) RotateRefreshToken(ctx context.Context, oldID, userID string, ttl time.Duration, userAgent, ip string) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, oldID)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", domain.ErrConflict
	}

	pt, h, err := generateToken()
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO refresh_tokens (user_id, token_hash, user_agent, ip, expires_at)
VALUES ($1, $2, $3, $4, $5)`,
		userID, h, userAgent, ip, time.Now().Add(ttl))
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return pt, nil
}

// RevokeAllRefreshForUser revoca todas las sesiones del usuario y
// retorna cuántas filas afectó.
func (s *Store) RevokeAllRefreshForUser(ctx context.Context, userID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE refresh_tokens SET revoked_at = now()
WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
