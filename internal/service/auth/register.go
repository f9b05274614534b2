package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
)

// RegisterInput son los datos de alta de cuenta.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
	Phone    string
	Address  string

	UserAgent string
	IP        string
}

// RegisterResult es el usuario creado más los tokens si hay auto-login.
type RegisterResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// Register crea la cuenta, dispara el mail de verificación y, si está
// habilitado, loguea al usuario. Los dueños de negocio nacen sin
// aprobar: un admin los habilita después.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Email == "" || in.Password == "" || in.FullName == "" {
		return nil, ErrMissingFields
	}
	if !strings.Contains(in.Email, "@") {
		return nil, ErrMissingFields
	}

	// Sólo client y business_owner se registran por API; los admins se
	// crean con madidictl.
	if in.Role == "" {
		in.Role = domain.RoleClient
	}
	if in.Role != domain.RoleClient && in.Role != domain.RoleBusinessOwner {
		return nil, ErrInvalidRole
	}

	if ok, reasons := s.deps.Policy.Validate(in.Password); !ok {
		return nil, &WeakPasswordError{Reasons: reasons}
	}

	hash, err := password.Hash(password.Default, in.Password)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		return nil, err
	}

	u := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Approved:     in.Role == domain.RoleClient,
	}
	if err := s.deps.Store.CreateUser(ctx, u); err != nil {
		if domain.IsConflict(err) {
			log.Debug("email already registered")
			return nil, ErrEmailTaken
		}
		log.Error("create user failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.UserID(u.ID))
	metrics.UsersRegistered.Inc()

	// Verificación de email en background: el alta no espera al SMTP.
	token, err := s.deps.Store.CreateOneTimeToken(ctx, u.ID, domain.TokenPurposeVerify, s.deps.VerifyTTL, in.UserAgent, in.IP)
	if err != nil {
		log.Error("create verify token failed", logger.Err(err))
	} else {
		go s.sendInBackground(func(ctx context.Context) error {
			return s.deps.Mailer.SendEmailVerification(ctx, u.Email, token)
		}, "verify_email", u.ID)
	}

	res := &RegisterResult{User: u}
	if s.deps.AutoLogin {
		tokens, err := s.issueTokens(ctx, u, in.UserAgent, in.IP)
		if err != nil {
			log.Error("auto-login token issue failed", logger.Err(err))
			return nil, err
		}
		res.Tokens = tokens
	}

	log.Info("user registered", logger.String("role", string(u.Role)))
	return res, nil
}

// sendInBackground corre un envío con su propio deadline, desacoplado
// del request que lo originó.
func (s *Service) sendInBackground(send func(context.Context) error, template, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := send(ctx); err != nil {
		logger.L().Warn("background email failed",
			logger.Template(template),
			logger.UserID(userID),
			logger.Err(err),
		)
	}
}
