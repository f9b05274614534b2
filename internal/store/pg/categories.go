package pg

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	const q = `
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	const q = `SELECT id, name, description, created_at FROM categories WHERE id = $1 LIMIT 1`
	var c domain.Category
	if err := s.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	const q = `UPDATE categories SET name = $2, description = $3 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, c.ID, c.Name, c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCategory borra la categoría; productos y servicios quedan con
// category_id NULL (ON DELETE SET NULL).
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const q = `SELECT id, name, description, created_at FROM categories ORDER BY name ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPopularCategories ordena por cantidad de publicaciones (productos
// más servicios) descendente.
func (s *Store) ListPopularCategories(ctx context.Context, limit int) ([]domain.CategoryCount, error) {
	const q = `
SELECT id, name, description, created_at, product_count, service_count
FROM (
    SELECT c.id, c.name, c.description, c.created_at,
           (SELECT count(*) FROM products p WHERE p.category_id = c.id AND p.available) AS product_count,
           (SELECT count(*) FROM services s WHERE s.category_id = c.id AND s.available) AS service_count
    FROM categories c
) t
ORDER BY product_count + service_count DESC, name ASC
LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount, &c.ServiceCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
