package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const serviceCols = `id, business_id, category_id, name, description, price_cents,
       duration, available, image_url, created_at, updated_at`

func scanService(row pgxRow, v *domain.Service) error {
	return row.Scan(
		&v.ID, &v.BusinessID, &v.CategoryID, &v.Name, &v.Description,
		&v.PriceCents, &v.Duration, &v.Available, &v.ImageURL,
		&v.CreatedAt, &v.UpdatedAt,
	)
}

func (s *Store) CreateService(ctx context.Context, v *domain.Service) error {
	const q = `
INSERT INTO services (business_id, category_id, name, description, price_cents, duration, available, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	return s.pool.QueryRow(ctx, q,
		v.BusinessID, v.CategoryID, v.Name, v.Description, v.PriceCents,
		v.Duration, v.Available, v.ImageURL,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (s *Store) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	q := `SELECT ` + serviceCols + ` FROM services WHERE id = $1 LIMIT 1`
	var v domain.Service
	if err := scanService(s.pool.QueryRow(ctx, q, id), &v); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *Store) UpdateService(ctx context.Context, v *domain.Service) error {
	const q = `
UPDATE services
SET category_id = $3, name = $4, description = $5, price_cents = $6,
    duration = $7, available = $8, image_url = $9, updated_at = now()
WHERE id = $1 AND business_id = $2`
	tag, err := s.pool.Exec(ctx, q,
		v.ID, v.BusinessID, v.CategoryID, v.Name, v.Description,
		v.PriceCents, v.Duration, v.Available, v.ImageURL,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id, businessID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM services WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ServiceFilter filtra el listado público de servicios.
type ServiceFilter struct {
	CategoryID    string
	BusinessID    string
	Query         string
	OnlyAvailable bool
	Limit         int
	Offset        int
}

func (s *Store) ListServices(ctx context.Context, f ServiceFilter) ([]domain.Service, int, error) {
	where := []string{"true"}
	args := []any{}
	n := 1

	if f.OnlyAvailable {
		where = append(where, "available = true")
	}
	if f.CategoryID != "" {
		where = append(where, fmt.Sprintf("category_id = $%d", n))
		args = append(args, f.CategoryID)
		n++
	}
	if f.BusinessID != "" {
		where = append(where, fmt.Sprintf("business_id = $%d", n))
		args = append(args, f.BusinessID)
		n++
	}
	if f.Query != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", n))
		args = append(args, "%"+f.Query+"%")
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM services WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + serviceCols + ` FROM services WHERE ` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var v domain.Service
		if err := scanService(rows, &v); err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// CountServices total global (panel admin).
func (s *Store) CountServices(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM services`).Scan(&n)
	return n, err
}
