package pg

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// generateToken crea un token opaco: el plaintext viaja en el link del
// email, en la base solo se guarda el hash SHA-256 crudo.
func generateToken() (plaintext string, hash []byte, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", nil, err
	}
	plaintext = base64.RawURLEncoding.EncodeToString(raw)
	h := sha256.Sum256([]byte(plaintext))
	return plaintext, h[:], nil
}

// hashToken recalcula el hash de un plaintext recibido.
func hashToken(plaintext string) []byte {
	h := sha256.Sum256([]byte(plaintext))
	return h[:]
}

// CreateOneTimeToken emite un token de un solo uso (reset o verify) y
// retorna el plaintext para armar el link. Guardamos desde dónde se
// pidió (IP y user agent) igual que con los refresh tokens.
func (s *Store) CreateOneTimeToken(ctx context.Context, userID string, purpose domain.TokenPurpose, ttl time.Duration, userAgent, ip string) (string, error) {
	pt, h, err := generateToken()
	if err != nil {
		return "", err
	}
	const q = `
INSERT INTO one_time_tokens (user_id, purpose, token_hash, expires_at, requested_ua, requested_ip)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.pool.Exec(ctx, q, userID, purpose, h, time.Now().Add(ttl), userAgent, ip); err != nil {
		return "", err
	}
	return pt, nil
}

// ConsumeOneTimeToken marca el token como usado y retorna el user_id.
// La condición used_at IS NULL hace el consumo atómico: un segundo
// intento con el mismo token no matchea fila y retorna ErrNotFound.
func (s *Store) ConsumeOneTimeToken(ctx context.Context, plaintext string, purpose domain.TokenPurpose) (string, error) {
	const q = `
UPDATE one_time_tokens
   SET used_at = now()
 WHERE token_hash = $1
   AND purpose = $2
   AND used_at IS NULL
   AND expires_at > now()
RETURNING user_id`
	var userID string
	if err := s.pool.QueryRow(ctx, q, hashToken(plaintext), purpose).Scan(&userID); err != nil {
		if noRows(err) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return userID, nil
}
