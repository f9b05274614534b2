package auth

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
)

// LoginInput son las credenciales más metadatos de la sesión.
type LoginInput struct {
	Email    string
	Password string

	UserAgent string
	IP        string
}

// LoginResult es el par de tokens más el usuario autenticado.
type LoginResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// Login valida credenciales y emite access + refresh. Usuario
// inexistente y password incorrecto devuelven el mismo error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	in.Email = normalizeEmail(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.deps.Store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Debug("user not found")
			return nil, ErrInvalidCredentials
		}
		log.Error("get user failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.UserID(u.ID))

	// Al cliente le respondemos lo mismo que con contraseña mala: una
	// cuenta baneada no debe distinguirse de una inexistente.
	if u.Disabled {
		log.Info("login rejected: user disabled")
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(in.Password, u.PasswordHash) {
		log.Debug("password check failed")
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, u, in.UserAgent, in.IP)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, err
	}

	log.Info("login successful")
	return &LoginResult{User: u, Tokens: tokens}, nil
}
