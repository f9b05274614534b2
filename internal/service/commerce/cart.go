package commerce

import (
	"context"
	"errors"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// CartView es el carrito con snapshot de productos y totales.
type CartView struct {
	Items  []domain.CartItem
	Totals domain.CartTotals
}

// GetCart retorna el carrito del usuario, creándolo al primer uso.
func (s *Service) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.cartView(ctx, cart.ID)
}

func (s *Service) cartView(ctx context.Context, cartID string) (*CartView, error) {
	items, err := s.deps.Store.ListCartItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &CartView{Items: items, Totals: domain.TotalsOf(items)}, nil
}

// AddItem agrega cantidad de un producto al carrito. Si la línea ya
// existe la cantidad se suma; el stock se valida contra el acumulado.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*CartView, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.deps.Store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Available {
		return nil, ErrProductUnavailable
	}

	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.deps.Store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	requested := qty
	for i := range items {
		if items[i].ProductID == productID {
			requested += items[i].Quantity
			break
		}
	}
	if requested > p.StockQuantity {
		return nil, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.StockQuantity,
		}
	}

	if err := s.deps.Store.UpsertCartItem(ctx, cart.ID, productID, qty); err != nil {
		return nil, err
	}

	logger.From(ctx).Debug("cart item added",
		logger.Component("commerce.cart"),
		logger.UserID(userID),
		logger.ProductID(productID),
		logger.Int("quantity", qty),
	)
	return s.cartView(ctx, cart.ID)
}

// UpdateItemQuantity fija la cantidad de una línea; cero la elimina.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, productID string, qty int) (*CartView, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if qty == 0 {
		if err := s.deps.Store.RemoveCartItem(ctx, cart.ID, productID); err != nil {
			return nil, err
		}
		return s.cartView(ctx, cart.ID)
	}

	p, err := s.deps.Store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// El producto fue borrado; la línea huérfana se elimina.
			if rmErr := s.deps.Store.RemoveCartItem(ctx, cart.ID, productID); rmErr != nil {
				return nil, rmErr
			}
			return s.cartView(ctx, cart.ID)
		}
		return nil, err
	}
	if qty > p.StockQuantity {
		return nil, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.StockQuantity,
		}
	}

	if err := s.deps.Store.SetCartItemQuantity(ctx, cart.ID, productID, qty); err != nil {
		return nil, err
	}
	return s.cartView(ctx, cart.ID)
}

// RemoveItem elimina una línea del carrito.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Store.RemoveCartItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.cartView(ctx, cart.ID)
}

// ClearCart vacía el carrito del usuario.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	return s.deps.Store.ClearCart(ctx, cart.ID)
}
