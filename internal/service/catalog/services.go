package catalog

import (
	"context"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// ServiceInput son los campos editables de un servicio ofrecido. El
// precio es opcional: nil significa "consultar".
type ServiceInput struct {
	Name        string
	Description string
	CategoryID  *string
	PriceCents  *domain.Cents
	Duration    string
	Available   bool
	ImageURL    string
}

func (in *ServiceInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrMissingFields
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// CreateService publica un servicio en el negocio del dueño.
func (s *Service) CreateService(ctx context.Context, ownerID string, in ServiceInput) (*domain.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	v := &domain.Service{
		BusinessID:  b.ID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Duration:    strings.TrimSpace(in.Duration),
		Available:   in.Available,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if err := s.deps.Store.CreateService(ctx, v); err != nil {
		return nil, err
	}

	logger.From(ctx).Info("service created",
		logger.Component("catalog"),
		logger.ID(v.ID),
		logger.BusinessID(b.ID),
	)
	return v, nil
}

// UpdateService modifica un servicio del negocio del dueño.
func (s *Service) UpdateService(ctx context.Context, ownerID, serviceID string, in ServiceInput) (*domain.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	v := &domain.Service{
		ID:          serviceID,
		BusinessID:  b.ID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Duration:    strings.TrimSpace(in.Duration),
		Available:   in.Available,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if err := s.deps.Store.UpdateService(ctx, v); err != nil {
		return nil, err
	}
	return s.deps.Store.GetServiceByID(ctx, serviceID)
}

// DeleteService borra un servicio del negocio del dueño.
func (s *Service) DeleteService(ctx context.Context, ownerID, serviceID string) error {
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.deps.Store.DeleteService(ctx, serviceID, b.ID)
}

// GetService retorna un servicio por id (vista pública).
func (s *Service) GetService(ctx context.Context, id string) (*domain.Service, error) {
	return s.deps.Store.GetServiceByID(ctx, id)
}

// ListServices lista la oferta pública de servicios con filtros.
func (s *Service) ListServices(ctx context.Context, f pg.ServiceFilter) ([]domain.Service, int, error) {
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.deps.Store.ListServices(ctx, f)
}

// MyServices lista los servicios del dueño, incluyendo no disponibles.
func (s *Service) MyServices(ctx context.Context, ownerID string, limit, offset int) ([]domain.Service, int, error) {
	b, err := s.requireBusiness(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 {
		offset = 0
	}
	return s.deps.Store.ListServices(ctx, pg.ServiceFilter{
		BusinessID: b.ID,
		Limit:      clampLimit(limit),
		Offset:     offset,
	})
}
