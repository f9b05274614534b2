package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const orderCols = `o.id, o.customer_id, o.business_id, o.status, o.subtotal_cents,
       o.delivery_option, o.delivery_address, o.delivery_phone, o.notes,
       o.created_at, o.updated_at, b.name, u.email`

func scanOrder(row pgxRow, o *domain.Order) error {
	return row.Scan(
		&o.ID, &o.CustomerID, &o.BusinessID, &o.Status, &o.SubtotalCents,
		&o.DeliveryOption, &o.DeliveryAddress, &o.DeliveryPhone, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.BusinessName, &o.CustomerEmail,
	)
}

// CreateOrderWithItems inserta la orden y sus líneas en una transacción.
// El checkout llama esto una vez por negocio presente en el carrito.
func (s *Store) CreateOrderWithItems(ctx context.Context, o *domain.Order, items []domain.OrderItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const qo = `
INSERT INTO orders (customer_id, business_id, status, subtotal_cents, delivery_option, delivery_address, delivery_phone, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, qo,
		o.CustomerID, o.BusinessID, o.Status, o.SubtotalCents,
		o.DeliveryOption, o.DeliveryAddress, o.DeliveryPhone, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	const qi = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	for i := range items {
		items[i].OrderID = o.ID
		if err := tx.QueryRow(ctx, qi,
			o.ID, items[i].ProductID, items[i].ProductName,
			items[i].Quantity, items[i].PriceCents,
		).Scan(&items[i].ID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderCols + `
FROM orders o
JOIN businesses b ON b.id = o.business_id
JOIN users u ON u.id = o.customer_id
WHERE o.id = $1
LIMIT 1`
	var o domain.Order
	if err := scanOrder(s.pool.QueryRow(ctx, q, id), &o); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, product_id, product_name, quantity, price_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_name ASC`
	rows, err := s.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// OrderFilter acota los listados de órdenes.
type OrderFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID string, f OrderFilter) ([]domain.Order, int, error) {
	return s.listOrders(ctx, "o.customer_id", customerID, f)
}

func (s *Store) ListOrdersByBusiness(ctx context.Context, businessID string, f OrderFilter) ([]domain.Order, int, error) {
	return s.listOrders(ctx, "o.business_id", businessID, f)
}

// AdminListOrders lista todas las órdenes sin acotar por dueño.
func (s *Store) AdminListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, int, error) {
	return s.listOrders(ctx, "", "", f)
}

func (s *Store) listOrders(ctx context.Context, ownerCol, ownerID string, f OrderFilter) ([]domain.Order, int, error) {
	where := []string{"true"}
	args := []any{}
	n := 1

	if ownerCol != "" {
		where = append(where, fmt.Sprintf("%s = $%d", ownerCol, n))
		args = append(args, ownerID)
		n++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("o.status = $%d", n))
		args = append(args, f.Status)
		n++
	}
	if f.From != nil {
		where = append(where, fmt.Sprintf("o.created_at >= $%d", n))
		args = append(args, *f.From)
		n++
	}
	if f.To != nil {
		where = append(where, fmt.Sprintf("o.created_at < $%d", n))
		args = append(args, *f.To)
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM orders o WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + orderCols + `
FROM orders o
JOIN businesses b ON b.id = o.business_id
JOIN users u ON u.id = o.customer_id
WHERE ` + cond + fmt.Sprintf(`
ORDER BY o.created_at DESC
LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// UpdateOrderStatus aplica una transición con guarda sobre el estado
// actual. Retorna ErrConflict si otro proceso ya movió la orden.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	const q = `
UPDATE orders SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2`
	tag, err := s.pool.Exec(ctx, q, orderID, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
