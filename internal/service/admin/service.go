// Package admin agrupa las operaciones del panel: aprobación de dueños
// de negocio, altas y bajas de cuentas, verificación de transferencias
// bancarias y las estadísticas del marketplace.
package admin

import (
	"context"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// Store es lo que el servicio necesita de Postgres.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, f pg.UserFilter) ([]domain.User, int, error)
	ListPendingOwners(ctx context.Context) ([]pg.PendingOwner, error)
	ApproveUser(ctx context.Context, userID string) (*domain.User, error)
	SetUserDisabled(ctx context.Context, userID string, disabled bool) error
	RevokeAllRefreshForUser(ctx context.Context, userID string) (int, error)

	GetBusinessByOwner(ctx context.Context, ownerID string) (*domain.Business, error)
	ListAllBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error)

	AdminListOrders(ctx context.Context, f pg.OrderFilter) ([]domain.Order, int, error)
	AdminListPayments(ctx context.Context, f pg.PaymentFilter) ([]domain.Payment, int, error)
	VerifyPayment(ctx context.Context, paymentID string) (*domain.Payment, error)

	CountUsersByRole(ctx context.Context) (map[string]int, error)
	CountBusinesses(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountServices(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context) (map[string]int, error)
	CountPendingBankTransfers(ctx context.Context) (int, error)
	RevenueCents(ctx context.Context) (domain.Cents, error)
}

// Mailer es lo que el servicio necesita del correo saliente.
type Mailer interface {
	SendBusinessApproved(ctx context.Context, toEmail, businessName string) error
}

// Deps contiene las dependencias del servicio. Mailer puede ser nil
// (la CLI aprueba sin enviar correo).
type Deps struct {
	Store  Store
	Mailer Mailer
}

type Service struct {
	deps Deps
}

// New crea el servicio.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

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
