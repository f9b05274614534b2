// Package commerce implementa el carrito, el checkout en dos fases y el
// ciclo de vida de órdenes y pagos.
//
// El checkout con efectivo crea las órdenes de inmediato; tarjeta y
// transferencia dejan un registro pendiente en cache (con TTL) y las
// órdenes se crean recién al capturar el pago.
package commerce

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/cache"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// Errores de comercio. Los handlers los mapean a códigos HTTP.
var (
	ErrEmptyCart            = fmt.Errorf("cart is empty")
	ErrInvalidQuantity      = fmt.Errorf("invalid quantity")
	ErrProductUnavailable   = fmt.Errorf("product not available")
	ErrInvalidPaymentMethod = fmt.Errorf("invalid payment method")
	ErrInvalidDelivery      = fmt.Errorf("invalid delivery details")
	ErrNoPendingCheckout    = fmt.Errorf("no pending checkout")
	ErrInvalidCard          = fmt.Errorf("invalid card details")
	ErrInvalidFileType      = fmt.Errorf("invalid proof file type")
	ErrFileTooLarge         = fmt.Errorf("proof file too large")
	ErrNoBusiness           = fmt.Errorf("owner has no business")
	ErrInvalidTransition    = fmt.Errorf("invalid order transition")
)

// InsufficientStockError indica qué producto no alcanza y cuánto queda.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.ProductID, e.Available)
}

// Store es lo que el servicio necesita de Postgres.
type Store interface {
	GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error)
	ListCartItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
	UpsertCartItem(ctx context.Context, cartID, productID string, qty int) error
	SetCartItemQuantity(ctx context.Context, cartID, productID string, qty int) error
	RemoveCartItem(ctx context.Context, cartID, productID string) error
	ClearCart(ctx context.Context, cartID string) error

	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	DecrementProductStock(ctx context.Context, productID string, qty int) error
	GetBusinessByOwner(ctx context.Context, ownerID string) (*domain.Business, error)

	CreateOrderWithItems(ctx context.Context, o *domain.Order, items []domain.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	ListOrdersByCustomer(ctx context.Context, customerID string, f pg.OrderFilter) ([]domain.Order, int, error)
	ListOrdersByBusiness(ctx context.Context, businessID string, f pg.OrderFilter) ([]domain.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error

	CreatePayment(ctx context.Context, p *domain.Payment) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	SetPaymentProof(ctx context.Context, paymentID, path string) error
	MarkPaymentCompletedForOrder(ctx context.Context, orderID string) error
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Store Store
	Cache cache.Client

	// UploadsDir es la raíz donde se guardan los comprobantes.
	UploadsDir    string
	MaxProofBytes int64

	// PendingTTL es cuánto vive un checkout sin capturar.
	PendingTTL time.Duration
}

type Service struct {
	deps Deps
}

// New crea el servicio con defaults para los campos en cero.
func New(deps Deps) *Service {
	if deps.UploadsDir == "" {
		deps.UploadsDir = "uploads"
	}
	if deps.MaxProofBytes <= 0 {
		deps.MaxProofBytes = 5 << 20
	}
	if deps.PendingTTL <= 0 {
		deps.PendingTTL = 30 * time.Minute
	}
	return &Service{deps: deps}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// pendingCheckout es lo que queda en cache entre checkout y captura.
// El carrito se relee al capturar, así que acá sólo viajan el método,
// la entrega y los totales informativos.
type pendingCheckout struct {
	Method          domain.PaymentMethod  `json:"method"`
	DeliveryOption  domain.DeliveryOption `json:"delivery_option"`
	DeliveryAddress string                `json:"delivery_address,omitempty"`
	DeliveryPhone   string                `json:"delivery_phone,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	SubtotalCents   domain.Cents          `json:"subtotal_cents"`
	TaxCents        domain.Cents          `json:"tax_cents"`
	TotalCents      domain.Cents          `json:"total_cents"`
	BankReference   string                `json:"bank_reference,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

func checkoutKey(userID string) string {
	return "checkout:" + userID
}

const bankRefAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newBankReference genera el código de 10 caracteres que el cliente pone
// en el concepto de su transferencia.
func newBankReference() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate bank reference: %w", err)
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = bankRefAlphabet[int(b)%len(bankRefAlphabet)]
	}
	return string(out), nil
}
