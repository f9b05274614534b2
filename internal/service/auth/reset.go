package auth

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
	"github.com/Peekay0523/MadidiMarket/internal/util"
)

// ForgotPassword dispara el mail de reset. Siempre responde igual,
// exista o no la cuenta, para no filtrar qué emails están registrados.
// El link retornado es sólo para DebugEchoLinks (nunca en prod).
func (s *Service) ForgotPassword(ctx context.Context, email, userAgent, ip string) (debugLink string, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.reset"),
		logger.Op("ForgotPassword"),
	)

	email = normalizeEmail(email)
	if email == "" {
		return "", ErrMissingFields
	}

	u, err := s.deps.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Info("forgot for unknown email", logger.Email(util.MaskEmail(email)))
			return "", nil
		}
		log.Error("get user failed", logger.Err(err))
		return "", err
	}
	if u.Disabled {
		log.Info("forgot for disabled user", logger.UserID(u.ID))
		return "", nil
	}

	token, err := s.deps.Store.CreateOneTimeToken(ctx, u.ID, domain.TokenPurposeReset, s.deps.ResetTTL, userAgent, ip)
	if err != nil {
		log.Error("create reset token failed", logger.Err(err))
		return "", err
	}

	go s.sendInBackground(func(ctx context.Context) error {
		return s.deps.Mailer.SendPasswordReset(ctx, u.Email, token)
	}, "reset_password", u.ID)

	log.Info("reset email queued",
		logger.UserID(u.ID),
		logger.Email(util.MaskEmail(u.Email)),
	)

	if s.deps.DebugEchoLinks {
		return s.deps.Mailer.ResetLink(token), nil
	}
	return "", nil
}

// ResetPassword consume el token de un solo uso, cambia el hash y
// revoca todas las sesiones abiertas.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.reset"),
		logger.Op("ResetPassword"),
	)

	if token == "" || newPassword == "" {
		return ErrMissingFields
	}
	if ok, reasons := s.deps.Policy.Validate(newPassword); !ok {
		return &WeakPasswordError{Reasons: reasons}
	}

	userID, err := s.deps.Store.ConsumeOneTimeToken(ctx, token, domain.TokenPurposeReset)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Info("reset token invalid or already used")
			return ErrInvalidOneTime
		}
		log.Error("consume reset token failed", logger.Err(err))
		return err
	}

	log = log.With(logger.UserID(userID))

	hash, err := password.Hash(password.Default, newPassword)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		return err
	}
	if err := s.deps.Store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		log.Error("update password failed", logger.Err(err))
		return err
	}

	n, err := s.deps.Store.RevokeAllRefreshForUser(ctx, userID)
	if err != nil {
		log.Warn("session revoke after reset failed", logger.Err(err))
	}

	log.Info("password reset", logger.Count(n))
	return nil
}

// VerifyEmail consume el token de verificación y marca la cuenta.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.verify"),
		logger.Op("VerifyEmail"),
	)

	if token == "" {
		return ErrMissingFields
	}

	userID, err := s.deps.Store.ConsumeOneTimeToken(ctx, token, domain.TokenPurposeVerify)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Info("verify token invalid or already used")
			return ErrInvalidOneTime
		}
		log.Error("consume verify token failed", logger.Err(err))
		return err
	}

	if err := s.deps.Store.SetEmailVerified(ctx, userID); err != nil {
		log.Error("set email verified failed", logger.Err(err))
		return err
	}

	log.Info("email verified", logger.UserID(userID))
	return nil
}

// ResendVerification envía de nuevo el mail de verificación; silencioso
// si la cuenta no existe o ya está verificada.
func (s *Service) ResendVerification(ctx context.Context, email, userAgent, ip string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.verify"),
		logger.Op("ResendVerification"),
	)

	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	u, err := s.deps.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if u.EmailVerified || u.Disabled {
		return nil
	}

	token, err := s.deps.Store.CreateOneTimeToken(ctx, u.ID, domain.TokenPurposeVerify, s.deps.VerifyTTL, userAgent, ip)
	if err != nil {
		log.Error("create verify token failed", logger.Err(err))
		return err
	}

	go s.sendInBackground(func(ctx context.Context) error {
		return s.deps.Mailer.SendEmailVerification(ctx, u.Email, token)
	}, "verify_email", u.ID)

	log.Info("verification email queued", logger.UserID(u.ID))
	return nil
}
