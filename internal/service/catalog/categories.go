package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// ListCategories retorna todas las categorías, ordenadas por nombre.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.deps.Store.ListCategories(ctx)
}

// PopularCategories retorna las categorías con más oferta, memoizado.
func (s *Service) PopularCategories(ctx context.Context, limit int) ([]domain.CategoryCount, error) {
	limit = clampLimit(limit)
	key := fmt.Sprintf("popular-categories:%d", limit)

	if v, ok := s.memo.Get(key); ok {
		if out, ok := v.([]domain.CategoryCount); ok {
			return out, nil
		}
	}

	out, err := s.deps.Store.ListPopularCategories(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.memo.Set(key, out, s.deps.PopularTTL)
	return out, nil
}

// CategoryInput son los campos editables de una categoría.
type CategoryInput struct {
	Name        string
	Description string
}

// CreateCategory crea una categoría; el nombre es único sin distinguir
// mayúsculas.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrMissingFields
	}

	c := &domain.Category{Name: in.Name, Description: strings.TrimSpace(in.Description)}
	if err := s.deps.Store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.memo.Flush()

	logger.From(ctx).Info("category created",
		logger.Component("catalog"),
		logger.ID(c.ID),
		logger.String("name", c.Name),
	)
	return c, nil
}

// UpdateCategory renombra o re-describe una categoría existente.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrMissingFields
	}

	c := &domain.Category{ID: id, Name: in.Name, Description: strings.TrimSpace(in.Description)}
	if err := s.deps.Store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.memo.Flush()
	return s.deps.Store.GetCategoryByID(ctx, id)
}

// DeleteCategory borra la categoría; productos y servicios asociados
// quedan sin categoría (SET NULL).
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.deps.Store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.memo.Flush()
	logger.From(ctx).Info("category deleted", logger.Component("catalog"), logger.ID(id))
	return nil
}
