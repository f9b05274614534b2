package pg

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const businessCols = `id, owner_id, name, description, address, phone, logo_url, created_at, updated_at`

func scanBusiness(row pgxRow, b *domain.Business) error {
	return row.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Address, &b.Phone,
		&b.LogoURL, &b.CreatedAt, &b.UpdatedAt,
	)
}

// CreateBusiness registra el negocio del dueño. Un segundo negocio del
// mismo dueño retorna domain.ErrConflict (unique owner_id).
func (s *Store) CreateBusiness(ctx context.Context, b *domain.Business) error {
	const q = `
INSERT INTO businesses (owner_id, name, description, address, phone, logo_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, q,
		b.OwnerID, b.Name, b.Description, b.Address, b.Phone, b.LogoURL,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetBusinessByID(ctx context.Context, id string) (*domain.Business, error) {
	q := `SELECT ` + businessCols + ` FROM businesses WHERE id = $1 LIMIT 1`
	var b domain.Business
	if err := scanBusiness(s.pool.QueryRow(ctx, q, id), &b); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetBusinessByOwner(ctx context.Context, ownerID string) (*domain.Business, error) {
	q := `SELECT ` + businessCols + ` FROM businesses WHERE owner_id = $1 LIMIT 1`
	var b domain.Business
	if err := scanBusiness(s.pool.QueryRow(ctx, q, ownerID), &b); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) UpdateBusiness(ctx context.Context, b *domain.Business) error {
	const q = `
UPDATE businesses
SET name = $2, description = $3, address = $4, phone = $5, logo_url = $6, updated_at = now()
WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, b.ID, b.Name, b.Description, b.Address, b.Phone, b.LogoURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBusinesses lista negocios de dueños aprobados y habilitados, con
// total para paginar.
func (s *Store) ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error) {
	const qCount = `
SELECT count(*)
FROM businesses b
JOIN users u ON u.id = b.owner_id
WHERE u.approved = true AND u.disabled_at IS NULL`
	var total int
	if err := s.pool.QueryRow(ctx, qCount).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT b.id, b.owner_id, b.name, b.description, b.address, b.phone, b.logo_url, b.created_at, b.updated_at
FROM businesses b
JOIN users u ON u.id = b.owner_id
WHERE u.approved = true AND u.disabled_at IS NULL
ORDER BY b.name ASC
LIMIT $1 OFFSET $2`
	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := scanBusiness(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// ListAllBusinesses lista todos los negocios sin filtrar (admin).
func (s *Store) ListAllBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM businesses`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + businessCols + ` FROM businesses ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := scanBusiness(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
