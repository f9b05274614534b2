package admin

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/audit"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
	"github.com/Peekay0523/MadidiMarket/internal/util"
)

// ListUsers lista cuentas con filtros opcionales de rol y aprobación.
func (s *Service) ListUsers(ctx context.Context, role string, approved *bool, limit, offset int) ([]domain.User, int, error) {
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListUsers(ctx, pg.UserFilter{
		Role:     role,
		Approved: approved,
		Limit:    clampLimit(limit),
		Offset:   offset,
	})
}

// ListPendingOwners lista dueños de negocio esperando aprobación, más
// viejos primero.
func (s *Service) ListPendingOwners(ctx context.Context) ([]pg.PendingOwner, error) {
	return s.deps.Store.ListPendingOwners(ctx)
}

// ApproveBusinessOwner aprueba a un dueño pendiente y, si notify está
// activo y hay mailer, le avisa por correo en segundo plano. Devuelve
// domain.ErrNotFound si la cuenta no existe o no está pendiente.
func (s *Service) ApproveBusinessOwner(ctx context.Context, actorID, userID string, notify bool) (*domain.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.users"),
		logger.Op("ApproveBusinessOwner"),
		logger.UserID(userID),
	)

	u, err := s.deps.Store.ApproveUser(ctx, userID)
	if err != nil {
		if !domain.IsNotFound(err) {
			log.Error("approve failed", logger.Err(err))
		}
		return nil, err
	}

	audit.Log(ctx, audit.EventBusinessApproved, map[string]any{
		"user_id":  u.ID,
		"actor_id": actorID,
		"email":    util.MaskEmail(u.Email),
	})

	if notify && s.deps.Mailer != nil {
		// El nombre del negocio es opcional: puede no haberlo registrado
		// todavía.
		businessName := ""
		if b, err := s.deps.Store.GetBusinessByOwner(ctx, u.ID); err == nil {
			businessName = b.Name
		}
		email := u.Email
		go s.sendInBackground(func(ctx context.Context) error {
			return s.deps.Mailer.SendBusinessApproved(ctx, email, businessName)
		}, "business_approved", u.ID)
	}

	log.Info("business owner approved",
		logger.Email(util.MaskEmail(u.Email)),
		logger.Bool("notified", notify && s.deps.Mailer != nil),
	)
	return u, nil
}

// SetUserDisabled deshabilita o rehabilita una cuenta. Deshabilitar
// revoca todas las sesiones abiertas.
func (s *Service) SetUserDisabled(ctx context.Context, actorID, userID string, disabled bool) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.users"),
		logger.Op("SetUserDisabled"),
		logger.UserID(userID),
	)

	if _, err := s.deps.Store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.deps.Store.SetUserDisabled(ctx, userID, disabled); err != nil {
		log.Error("set disabled failed", logger.Err(err))
		return err
	}

	if disabled {
		n, err := s.deps.Store.RevokeAllRefreshForUser(ctx, userID)
		if err != nil {
			log.Warn("session revoke after disable failed", logger.Err(err))
		} else {
			log.Debug("sessions revoked", logger.Count(n))
		}
	}

	audit.Log(ctx, audit.EventUserDisabled, map[string]any{
		"user_id":  userID,
		"actor_id": actorID,
		"disabled": disabled,
	})
	log.Info("user disabled flag set", logger.Bool("disabled", disabled))
	return nil
}
