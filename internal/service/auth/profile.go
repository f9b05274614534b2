package auth

import (
	"context"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
)

// Me retorna el perfil del usuario autenticado.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.deps.Store.GetUserByID(ctx, userID)
}

// UpdateProfileInput son los campos editables del perfil.
type UpdateProfileInput struct {
	FullName string
	Phone    string
	Address  string
}

// UpdateProfile actualiza los datos de contacto y retorna el perfil
// actualizado.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return nil, ErrMissingFields
	}
	if err := s.deps.Store.UpdateUserProfile(ctx, userID, in.FullName, strings.TrimSpace(in.Phone), strings.TrimSpace(in.Address)); err != nil {
		return nil, err
	}
	return s.deps.Store.GetUserByID(ctx, userID)
}

// ChangePassword cambia la clave validando la actual. Las otras
// sesiones del usuario siguen vivas: sólo el reset por email las revoca.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.profile"),
		logger.Op("ChangePassword"),
		logger.UserID(userID),
	)

	if current == "" || next == "" {
		return ErrMissingFields
	}

	u, err := s.deps.Store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(current, u.PasswordHash) {
		log.Debug("current password check failed")
		return ErrInvalidCredentials
	}
	if ok, reasons := s.deps.Policy.Validate(next); !ok {
		return &WeakPasswordError{Reasons: reasons}
	}

	hash, err := password.Hash(password.Default, next)
	if err != nil {
		return err
	}
	if err := s.deps.Store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		log.Error("update password failed", logger.Err(err))
		return err
	}

	log.Info("password changed")
	return nil
}
