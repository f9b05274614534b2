package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const productCols = `id, business_id, category_id, name, description, price_cents,
       stock_quantity, available, image_url, created_at, updated_at`

func scanProduct(row pgxRow, p *domain.Product) error {
	return row.Scan(
		&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Description,
		&p.PriceCents, &p.StockQuantity, &p.Available, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	const q = `
INSERT INTO products (business_id, category_id, name, description, price_cents, stock_quantity, available, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	return s.pool.QueryRow(ctx, q,
		p.BusinessID, p.CategoryID, p.Name, p.Description, p.PriceCents,
		p.StockQuantity, p.Available, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE id = $1 LIMIT 1`
	var p domain.Product
	if err := scanProduct(s.pool.QueryRow(ctx, q, id), &p); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProduct actualiza un producto del negocio dado. El filtro por
// business_id hace que un dueño no pueda tocar catálogo ajeno.
func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	const q = `
UPDATE products
SET category_id = $3, name = $4, description = $5, price_cents = $6,
    stock_quantity = $7, available = $8, image_url = $9, updated_at = now()
WHERE id = $1 AND business_id = $2`
	tag, err := s.pool.Exec(ctx, q,
		p.ID, p.BusinessID, p.CategoryID, p.Name, p.Description,
		p.PriceCents, p.StockQuantity, p.Available, p.ImageURL,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id, businessID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ProductFilter filtra el listado público de productos.
type ProductFilter struct {
	CategoryID    string
	BusinessID    string
	Query         string // búsqueda por nombre (ILIKE)
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// ListProducts lista productos con filtros y retorna el total.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, int, error) {
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
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productCols + ` FROM products WHERE ` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// DecrementProductStock descuenta stock con piso en cero usando
// GREATEST; nunca deja stock negativo.
func (s *Store) DecrementProductStock(ctx context.Context, productID string, qty int) error {
	const q = `
UPDATE products
SET stock_quantity = GREATEST(stock_quantity - $2, 0), updated_at = now()
WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, productID, qty)
	return err
}

// CountProducts total global (panel admin).
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n)
	return n, err
}
