// Package auth implementa registro, login con refresh tokens rotados y
// los flujos de email (reset de password, verificación de cuenta).
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	jwtx "github.com/Peekay0523/MadidiMarket/internal/auth"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
)

// Errores de autenticación. Los handlers los mapean a códigos HTTP.
var (
	ErrMissingFields      = fmt.Errorf("missing required fields")
	ErrInvalidRole        = fmt.Errorf("invalid role")
	ErrEmailTaken         = fmt.Errorf("email already registered")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserDisabled       = fmt.Errorf("user disabled")
	ErrInvalidRefresh     = fmt.Errorf("invalid refresh token")
	ErrInvalidOneTime     = fmt.Errorf("invalid or expired token")
)

// WeakPasswordError lleva las razones machine-readable de la política.
type WeakPasswordError struct {
	Reasons []string
}

func (e *WeakPasswordError) Error() string {
	return "weak password: " + strings.Join(e.Reasons, ",")
}

// Store es lo que el servicio necesita de Postgres.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, userID, fullName, phone, address string) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	SetEmailVerified(ctx context.Context, userID string) error

	CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration, userAgent, ip string) (string, error)
	GetRefreshTokenByPlaintext(ctx context.Context, plaintext string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
	RotateRefreshToken(ctx context.Context, oldID, userID string, ttl time.Duration, userAgent, ip string) (string, error)
	RevokeAllRefreshForUser(ctx context.Context, userID string) (int, error)

	CreateOneTimeToken(ctx context.Context, userID string, purpose domain.TokenPurpose, ttl time.Duration, userAgent, ip string) (string, error)
	ConsumeOneTimeToken(ctx context.Context, plaintext string, purpose domain.TokenPurpose) (string, error)
}

// Mailer es lo que el servicio necesita del correo saliente.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, token string) error
	SendEmailVerification(ctx context.Context, toEmail, token string) error
	ResetLink(token string) string
	VerifyLink(token string) string
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Store  Store
	Issuer *jwtx.Issuer
	Mailer Mailer
	Policy password.Policy

	RefreshTTL time.Duration
	ResetTTL   time.Duration
	VerifyTTL  time.Duration

	// AutoLogin emite tokens en el registro.
	AutoLogin bool
	// DebugEchoLinks devuelve el link de reset en la respuesta de forgot;
	// la config lo fuerza a false en prod.
	DebugEchoLinks bool
}

type Service struct {
	deps Deps
}

// New crea el servicio con defaults razonables para TTLs en cero.
func New(deps Deps) *Service {
	if deps.RefreshTTL <= 0 {
		deps.RefreshTTL = 30 * 24 * time.Hour
	}
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = time.Hour
	}
	if deps.VerifyTTL <= 0 {
		deps.VerifyTTL = 48 * time.Hour
	}
	return &Service{deps: deps}
}

// TokenPair es el resultado de login, refresh y registro con auto-login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// issueTokens emite el par access+refresh para un usuario ya validado.
func (s *Service) issueTokens(ctx context.Context, u *domain.User, userAgent, ip string) (*TokenPair, error) {
	access, exp, err := s.deps.Issuer.IssueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, err := s.deps.Store.CreateRefreshToken(ctx, u.ID, s.deps.RefreshTTL, userAgent, ip)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}
