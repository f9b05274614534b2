package auth

import (
	"context"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// Refresh rota el refresh token y emite un access nuevo. Un token
// revocado o vencido invalida la sesión; la reutilización detectada
// revoca todas las sesiones del usuario.
func (s *Service) Refresh(ctx context.Context, refreshPlaintext, userAgent, ip string) (*TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.refresh"),
		logger.Op("Refresh"),
	)

	if refreshPlaintext == "" {
		return nil, ErrMissingFields
	}

	rt, err := s.deps.Store.GetRefreshTokenByPlaintext(ctx, refreshPlaintext)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Debug("refresh token unknown")
			return nil, ErrInvalidRefresh
		}
		log.Error("get refresh token failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.UserID(rt.UserID))

	if rt.RevokedAt != nil {
		// Token ya rotado: alguien está reutilizando un refresh viejo.
		n, _ := s.deps.Store.RevokeAllRefreshForUser(ctx, rt.UserID)
		log.Warn("refresh token reuse detected, all sessions revoked", logger.Count(n))
		return nil, ErrInvalidRefresh
	}
	if time.Now().After(rt.ExpiresAt) {
		log.Debug("refresh token expired")
		return nil, ErrInvalidRefresh
	}

	u, err := s.deps.Store.GetUserByID(ctx, rt.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if u.Disabled {
		log.Info("refresh rejected: user disabled")
		return nil, ErrUserDisabled
	}

	newRefresh, err := s.deps.Store.RotateRefreshToken(ctx, rt.ID, rt.UserID, s.deps.RefreshTTL, userAgent, ip)
	if err != nil {
		if domain.IsConflict(err) {
			// Carrera con otra rotación del mismo token.
			log.Warn("refresh rotation conflict")
			return nil, ErrInvalidRefresh
		}
		log.Error("rotate refresh failed", logger.Err(err))
		return nil, err
	}

	access, exp, err := s.deps.Issuer.IssueAccess(u)
	if err != nil {
		log.Error("access token issue failed", logger.Err(err))
		return nil, err
	}

	log.Debug("refresh rotated")
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}

// Logout revoca el refresh token de la sesión actual; es idempotente.
func (s *Service) Logout(ctx context.Context, refreshPlaintext string) error {
	if refreshPlaintext == "" {
		return nil
	}
	rt, err := s.deps.Store.GetRefreshTokenByPlaintext(ctx, refreshPlaintext)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	return s.deps.Store.RevokeRefreshToken(ctx, rt.ID)
}

// LogoutAll revoca todas las sesiones del usuario y retorna cuántas.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	n, err := s.deps.Store.RevokeAllRefreshForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.From(ctx).Info("all sessions revoked",
		logger.Component("auth.logout"),
		logger.UserID(userID),
		logger.Count(n),
	)
	return n, nil
}
