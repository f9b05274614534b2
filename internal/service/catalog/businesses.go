package catalog

import (
	"context"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// BusinessInput son los campos editables de un negocio.
type BusinessInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
	LogoURL     string
}

// CreateBusiness registra el negocio del dueño; a lo sumo uno por cuenta.
func (s *Service) CreateBusiness(ctx context.Context, ownerID string, in BusinessInput) (*domain.Business, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrMissingFields
	}

	b := &domain.Business{
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Address:     strings.TrimSpace(in.Address),
		Phone:       strings.TrimSpace(in.Phone),
		LogoURL:     strings.TrimSpace(in.LogoURL),
	}
	if err := s.deps.Store.CreateBusiness(ctx, b); err != nil {
		if domain.IsConflict(err) {
			return nil, ErrBusinessExists
		}
		return nil, err
	}

	logger.From(ctx).Info("business created",
		logger.Component("catalog"),
		logger.BusinessID(b.ID),
		logger.UserID(ownerID),
	)
	return b, nil
}

// MyBusiness retorna el negocio del dueño.
func (s *Service) MyBusiness(ctx context.Context, ownerID string) (*domain.Business, error) {
	return s.deps.Store.GetBusinessByOwner(ctx, ownerID)
}

// UpdateMyBusiness actualiza el negocio del dueño autenticado.
func (s *Service) UpdateMyBusiness(ctx context.Context, ownerID string, in BusinessInput) (*domain.Business, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrMissingFields
	}

	b, err := s.deps.Store.GetBusinessByOwner(ctx, ownerID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, ErrNoBusiness
		}
		return nil, err
	}

	b.Name = in.Name
	b.Description = strings.TrimSpace(in.Description)
	b.Address = strings.TrimSpace(in.Address)
	b.Phone = strings.TrimSpace(in.Phone)
	b.LogoURL = strings.TrimSpace(in.LogoURL)

	if err := s.deps.Store.UpdateBusiness(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBusiness retorna un negocio por id (vista pública).
func (s *Service) GetBusiness(ctx context.Context, id string) (*domain.Business, error) {
	return s.deps.Store.GetBusinessByID(ctx, id)
}

// ListBusinesses lista los negocios visibles públicamente.
func (s *Service) ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error) {
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListBusinesses(ctx, clampLimit(limit), offset)
}

// requireBusiness resuelve el negocio del dueño para operaciones de
// catálogo propio.
func (s *Service) requireBusiness(ctx context.Context, ownerID string) (*domain.Business, error) {
	b, err := s.deps.Store.GetBusinessByOwner(ctx, ownerID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, ErrNoBusiness
		}
		return nil, err
	}
	return b, nil
}
