package pg

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// GetOrCreateCart retorna el carrito del usuario, creándolo al primer uso.
func (s *Store) GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING id, user_id, created_at`
	var c domain.Cart
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCartItems lista las líneas con snapshot del producto y su negocio.
func (s *Store) ListCartItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	const q = `
SELECT ci.cart_id, ci.product_id, ci.quantity, ci.added_at,
       p.name, p.price_cents, p.stock_quantity, p.available,
       p.business_id, b.name
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
JOIN businesses b ON b.id = p.business_id
WHERE ci.cart_id = $1
ORDER BY ci.added_at ASC`
	rows, err := s.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(
			&it.CartID, &it.ProductID, &it.Quantity, &it.AddedAt,
			&it.ProductName, &it.PriceCents, &it.StockQuantity, &it.Available,
			&it.BusinessID, &it.BusinessName,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertCartItem agrega cantidad a una línea existente o la crea.
func (s *Store) UpsertCartItem(ctx context.Context, cartID, productID string, qty int) error {
	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`
	_, err := s.pool.Exec(ctx, q, cartID, productID, qty)
	return err
}

// SetCartItemQuantity fija la cantidad exacta de una línea.
func (s *Store) SetCartItemQuantity(ctx context.Context, cartID, productID string, qty int) error {
	const q = `
UPDATE cart_items SET quantity = $3, updated_at = now()
WHERE cart_id = $1 AND product_id = $2`
	tag, err := s.pool.Exec(ctx, q, cartID, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveCartItem elimina una línea del carrito.
func (s *Store) RemoveCartItem(ctx context.Context, cartID, productID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearCart vacía el carrito; se usa al cerrar un checkout.
func (s *Store) ClearCart(ctx context.Context, cartID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
