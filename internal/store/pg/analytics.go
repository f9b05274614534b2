package pg

import (
	"context"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// CategoryDemand cuenta pedidos del tablero por categoría desde una
// fecha; alimenta la vista de demanda de los negocios.
func (s *Store) CategoryDemand(ctx context.Context, kind domain.RequestKind, since time.Time) ([]domain.CategoryDemand, error) {
	const q = `
SELECT COALESCE(c.name, 'Sin categoría'), count(*)
FROM item_requests ir
LEFT JOIN categories c ON c.id = ir.category_id
WHERE ir.kind = $1 AND ir.created_at >= $2
GROUP BY COALESCE(c.name, 'Sin categoría')
ORDER BY count(*) DESC, 1 ASC`
	rows, err := s.pool.Query(ctx, q, kind, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryDemand
	for rows.Next() {
		var d domain.CategoryDemand
		if err := rows.Scan(&d.CategoryName, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TitleDemand retorna los títulos más pedidos desde una fecha.
func (s *Store) TitleDemand(ctx context.Context, kind domain.RequestKind, since time.Time, limit int) ([]domain.TitleDemand, error) {
	const q = `
SELECT title, count(*)
FROM item_requests
WHERE kind = $1 AND created_at >= $2
GROUP BY title
ORDER BY count(*) DESC, title ASC
LIMIT $3`
	rows, err := s.pool.Query(ctx, q, kind, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TitleDemand
	for rows.Next() {
		var d domain.TitleDemand
		if err := rows.Scan(&d.Title, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// reviewedCategoriesCTE junta las categorías de los productos y
// servicios que el usuario reseñó; es la base de las recomendaciones.
const reviewedCategoriesCTE = `
WITH reviewed_categories AS (
    SELECT DISTINCT p.category_id
    FROM reviews r
    JOIN products p ON p.id = r.product_id
    WHERE r.reviewer_id = $1
    UNION
    SELECT DISTINCT sv.category_id
    FROM reviews r
    JOIN services sv ON sv.id = r.service_id
    WHERE r.reviewer_id = $1
)`

// RecommendProducts propone productos disponibles de las categorías que
// el usuario ya reseñó, excluyendo los que reseñó él mismo, mejores
// primero por rating promedio.
func (s *Store) RecommendProducts(ctx context.Context, userID string, limit int) ([]domain.Product, error) {
	q := reviewedCategoriesCTE + `
SELECT p.id, p.business_id, p.category_id, p.name, p.description, p.price_cents,
       p.stock_quantity, p.available, p.image_url, p.created_at, p.updated_at
FROM products p
WHERE p.available = true
  AND p.category_id IN (SELECT category_id FROM reviewed_categories)
  AND NOT EXISTS (
        SELECT 1 FROM reviews r
        WHERE r.reviewer_id = $1 AND r.product_id = p.id)
ORDER BY (SELECT COALESCE(avg(rv.rating), 0) FROM reviews rv WHERE rv.product_id = p.id) DESC,
         p.created_at DESC
LIMIT $2`
	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecommendServices es el equivalente de RecommendProducts para servicios.
func (s *Store) RecommendServices(ctx context.Context, userID string, limit int) ([]domain.Service, error) {
	q := reviewedCategoriesCTE + `
SELECT sv.id, sv.business_id, sv.category_id, sv.name, sv.description, sv.price_cents,
       sv.duration, sv.available, sv.image_url, sv.created_at, sv.updated_at
FROM services sv
WHERE sv.available = true
  AND sv.category_id IN (SELECT category_id FROM reviewed_categories)
  AND NOT EXISTS (
        SELECT 1 FROM reviews r
        WHERE r.reviewer_id = $1 AND r.service_id = sv.id)
ORDER BY (SELECT COALESCE(avg(rv.rating), 0) FROM reviews rv WHERE rv.service_id = sv.id) DESC,
         sv.created_at DESC
LIMIT $2`
	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var v domain.Service
		if err := scanService(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PopularProducts es el fallback para usuarios sin reseñas: disponibles,
// mejor puntuados y más reseñados primero.
func (s *Store) PopularProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	const q = `
SELECT p.id, p.business_id, p.category_id, p.name, p.description, p.price_cents,
       p.stock_quantity, p.available, p.image_url, p.created_at, p.updated_at
FROM products p
WHERE p.available = true
ORDER BY (SELECT COALESCE(avg(rv.rating), 0) FROM reviews rv WHERE rv.product_id = p.id) DESC,
         (SELECT count(*) FROM reviews rv WHERE rv.product_id = p.id) DESC,
         p.created_at DESC
LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PopularServices es el fallback de servicios.
func (s *Store) PopularServices(ctx context.Context, limit int) ([]domain.Service, error) {
	const q = `
SELECT sv.id, sv.business_id, sv.category_id, sv.name, sv.description, sv.price_cents,
       sv.duration, sv.available, sv.image_url, sv.created_at, sv.updated_at
FROM services sv
WHERE sv.available = true
ORDER BY (SELECT COALESCE(avg(rv.rating), 0) FROM reviews rv WHERE rv.service_id = sv.id) DESC,
         (SELECT count(*) FROM reviews rv WHERE rv.service_id = sv.id) DESC,
         sv.created_at DESC
LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var v domain.Service
		if err := scanService(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountOrdersByStatus agrupa las órdenes por estado para el panel admin.
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, count(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// CountPendingBankTransfers cuenta transferencias a la espera de
// verificación manual.
func (s *Store) CountPendingBankTransfers(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM payments WHERE method = 'bank_transfer' AND status = 'pending'`,
	).Scan(&n)
	return n, err
}

// RevenueCents suma los pagos completados, impuesto incluido.
func (s *Store) RevenueCents(ctx context.Context) (domain.Cents, error) {
	var total domain.Cents
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(sum(amount_cents), 0) FROM payments WHERE status = 'completed'`,
	).Scan(&total)
	return total, err
}

// CountBusinesses total global (panel admin).
func (s *Store) CountBusinesses(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM businesses`).Scan(&n)
	return n, err
}
