package commerce

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peekay0523/MadidiMarket/internal/cache"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// ---- fakes ----

type cartLine struct {
	productID string
	qty       int
}

type fakeStore struct {
	mu         sync.Mutex
	seq        int
	products   map[string]*domain.Product
	businesses map[string]*domain.Business // por dueño
	carts      map[string]string           // userID -> cartID
	lines      map[string][]*cartLine      // cartID -> líneas en orden de alta
	orders     map[string]*domain.Order
	orderItems map[string][]domain.OrderItem
	payments   map[string]*domain.Payment
	payByOrder map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   make(map[string]*domain.Product),
		businesses: make(map[string]*domain.Business),
		carts:      make(map[string]string),
		lines:      make(map[string][]*cartLine),
		orders:     make(map[string]*domain.Order),
		orderItems: make(map[string][]domain.OrderItem),
		payments:   make(map[string]*domain.Payment),
		payByOrder: make(map[string]string),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) seedBusiness(ownerID, name string) *domain.Business {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &domain.Business{ID: f.nextID("biz"), OwnerID: ownerID, Name: name}
	f.businesses[ownerID] = b
	return b
}

func (f *fakeStore) seedProduct(businessID, name string, price domain.Cents, stock int) *domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &domain.Product{
		ID:            f.nextID("prod"),
		BusinessID:    businessID,
		Name:          name,
		PriceCents:    price,
		StockQuantity: stock,
		Available:     true,
	}
	f.products[p.ID] = p
	return p
}

func (f *fakeStore) businessByID(id string) *domain.Business {
	for _, b := range f.businesses {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (f *fakeStore) GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.carts[userID]
	if !ok {
		id = f.nextID("cart")
		f.carts[userID] = id
	}
	return &domain.Cart{ID: id, UserID: userID, CreatedAt: time.Now()}, nil
}

func (f *fakeStore) ListCartItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CartItem
	for _, ln := range f.lines[cartID] {
		p, ok := f.products[ln.productID]
		if !ok {
			continue
		}
		it := domain.CartItem{
			CartID:        cartID,
			ProductID:     p.ID,
			Quantity:      ln.qty,
			ProductName:   p.Name,
			PriceCents:    p.PriceCents,
			StockQuantity: p.StockQuantity,
			Available:     p.Available,
			BusinessID:    p.BusinessID,
		}
		if b := f.businessByID(p.BusinessID); b != nil {
			it.BusinessName = b.Name
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeStore) UpsertCartItem(ctx context.Context, cartID, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ln := range f.lines[cartID] {
		if ln.productID == productID {
			ln.qty += qty
			return nil
		}
	}
	f.lines[cartID] = append(f.lines[cartID], &cartLine{productID: productID, qty: qty})
	return nil
}

func (f *fakeStore) SetCartItemQuantity(ctx context.Context, cartID, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ln := range f.lines[cartID] {
		if ln.productID == productID {
			ln.qty = qty
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) RemoveCartItem(ctx context.Context, cartID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.lines[cartID]
	for i, ln := range lines {
		if ln.productID == productID {
			f.lines[cartID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) ClearCart(ctx context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[cartID] = nil
	return nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DecrementProductStock(ctx context.Context, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity -= qty
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	return nil
}

func (f *fakeStore) GetBusinessByOwner(ctx context.Context, ownerID string) (*domain.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.businesses[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) CreateOrderWithItems(ctx context.Context, o *domain.Order, items []domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = f.nextID("order")
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	f.orders[o.ID] = &cp
	stored := make([]domain.OrderItem, len(items))
	for i := range items {
		items[i].ID = f.nextID("line")
		items[i].OrderID = o.ID
		stored[i] = items[i]
	}
	f.orderItems[o.ID] = stored
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	if b := f.businessByID(o.BusinessID); b != nil {
		cp.BusinessName = b.Name
	}
	return &cp, nil
}

func (f *fakeStore) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.OrderItem(nil), f.orderItems[orderID]...), nil
}

func (f *fakeStore) listOrders(match func(*domain.Order) bool, fl pg.OrderFilter) ([]domain.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if !match(o) {
			continue
		}
		if fl.Status != "" && string(o.Status) != fl.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListOrdersByCustomer(ctx context.Context, customerID string, fl pg.OrderFilter) ([]domain.Order, int, error) {
	return f.listOrders(func(o *domain.Order) bool { return o.CustomerID == customerID }, fl)
}

func (f *fakeStore) ListOrdersByBusiness(ctx context.Context, businessID string, fl pg.OrderFilter) ([]domain.Order, int, error) {
	return f.listOrders(func(o *domain.Order) bool { return o.BusinessID == businessID }, fl)
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, p *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.payByOrder[p.OrderID]; taken {
		return domain.ErrConflict
	}
	p.ID = f.nextID("pay")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.payments[p.ID] = &cp
	f.payByOrder[p.OrderID] = p.ID
	return nil
}

func (f *fakeStore) GetPaymentByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.payByOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f.payments[id]
	return &cp, nil
}

func (f *fakeStore) SetPaymentProof(ctx context.Context, paymentID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	p.ProofPath = path
	return nil
}

func (f *fakeStore) MarkPaymentCompletedForOrder(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.payByOrder[orderID]
	if !ok {
		return nil
	}
	if p := f.payments[id]; p.Status == domain.PaymentPending {
		p.Status = domain.PaymentCompleted
	}
	return nil
}

// ---- helpers ----

func newTestEnv(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	svc := New(Deps{
		Store:         fs,
		Cache:         cache.NewMemory("test"),
		UploadsDir:    t.TempDir(),
		MaxProofBytes: 1 << 20,
		PendingTTL:    time.Minute,
	})
	return svc, fs
}

func validCard() CardInput {
	return CardInput{
		Number:     "4111 1111 1111 3456",
		HolderName: "Ana Quispe",
		ExpiryDate: "12/39",
		CVV:        "123",
	}
}

// ---- carrito ----

func TestAddItemAccumulatesAndChecksStock(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 3)

	view, err := svc.AddItem(ctx, "client-1", p.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, 2, view.Items[0].Quantity)

	_, err = svc.AddItem(ctx, "client-1", p.ID, 2)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, p.ID, stockErr.ProductID)
	require.Equal(t, 3, stockErr.Available)

	view, err = svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 3, view.Items[0].Quantity)
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Charque", 500, 10)
	fs.products[p.ID].Available = false

	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAddItemRejectsBadQuantity(t *testing.T) {
	svc, _ := newTestEnv(t)
	_, err := svc.AddItem(context.Background(), "client-1", "prod-x", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Api morado", 800, 5)

	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)

	view, err := svc.UpdateItemQuantity(ctx, "client-1", p.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, view.Items[0].Quantity)

	_, err = svc.UpdateItemQuantity(ctx, "client-1", p.ID, 9)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	view, err = svc.UpdateItemQuantity(ctx, "client-1", p.ID, 0)
	require.NoError(t, err)
	require.Empty(t, view.Items)

	_, err = svc.UpdateItemQuantity(ctx, "client-1", p.ID, 0)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartTotalsWithTax(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b1 := fs.seedBusiness("owner-1", "Tienda Uno")
	b2 := fs.seedBusiness("owner-2", "Tienda Dos")
	p1 := fs.seedProduct(b1.ID, "Quinua real", 1000, 10)
	p2 := fs.seedProduct(b2.ID, "Miel de abeja", 550, 10)

	_, err := svc.AddItem(ctx, "client-1", p1.ID, 2)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "client-1", p2.ID, 1)
	require.NoError(t, err)

	require.Equal(t, 3, view.Totals.ItemCount)
	require.Equal(t, domain.Cents(2550), view.Totals.SubtotalCents)
	require.Equal(t, domain.Cents(383), view.Totals.TaxCents)
	require.Equal(t, domain.Cents(2933), view.Totals.TotalCents)
}

// ---- checkout ----

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _ := newTestEnv(t)
	_, err := svc.StartCheckout(context.Background(), "client-1", CheckoutInput{
		PaymentMethod: domain.PayCashOnDelivery,
	})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRejectsUnknownMethod(t *testing.T) {
	svc, _ := newTestEnv(t)
	_, err := svc.StartCheckout(context.Background(), "client-1", CheckoutInput{
		PaymentMethod: "cheque",
	})
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestCheckoutDeliveryNeedsAddressAndPhone(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 10)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)

	_, err = svc.StartCheckout(ctx, "client-1", CheckoutInput{
		PaymentMethod:  domain.PayCashOnDelivery,
		DeliveryOption: domain.DeliveryToDoor,
		StreetAddress:  "Av. Buenos Aires 123",
	})
	require.ErrorIs(t, err, ErrInvalidDelivery)
}

func TestCheckoutCashOnDeliverySplitsByBusiness(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b1 := fs.seedBusiness("owner-1", "Tienda Uno")
	b2 := fs.seedBusiness("owner-2", "Tienda Dos")
	p1 := fs.seedProduct(b1.ID, "Quinua real", 1000, 10)
	p2 := fs.seedProduct(b1.ID, "Charque", 500, 10)
	p3 := fs.seedProduct(b2.ID, "Miel de abeja", 550, 10)

	_, err := svc.AddItem(ctx, "client-1", p1.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "client-1", p2.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "client-1", p3.ID, 1)
	require.NoError(t, err)

	res, err := svc.StartCheckout(ctx, "client-1", CheckoutInput{
		PaymentMethod:  domain.PayCashOnDelivery,
		DeliveryOption: domain.DeliveryToDoor,
		StreetAddress:  "Av. Buenos Aires 123",
		City:           "La Paz",
		PostalCode:     "0000",
		Phone:          "71234567",
	})
	require.NoError(t, err)
	require.Equal(t, "placed", res.State)
	require.Len(t, res.Orders, 2)
	require.Equal(t, domain.Cents(3050), res.SubtotalCents)

	byBiz := map[string]domain.Order{}
	for _, o := range res.Orders {
		byBiz[o.BusinessID] = o
		require.Equal(t, domain.OrderPending, o.Status)
		require.Equal(t, "Av. Buenos Aires 123, La Paz 0000", o.DeliveryAddress)
		require.Equal(t, "71234567", o.DeliveryPhone)

		p, err := fs.GetPaymentByOrderID(ctx, o.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PayCashOnDelivery, p.Method)
		require.Equal(t, domain.PaymentPending, p.Status)
		require.Equal(t, o.TotalCents(), p.AmountCents)
	}
	require.Equal(t, domain.Cents(2500), byBiz[b1.ID].SubtotalCents)
	require.Equal(t, domain.Cents(550), byBiz[b2.ID].SubtotalCents)

	view, err := svc.GetCart(ctx, "client-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCheckoutCardThenCapture(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 10)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 2)
	require.NoError(t, err)

	res, err := svc.StartCheckout(ctx, "client-1", CheckoutInput{
		PaymentMethod: domain.PayCreditCard,
	})
	require.NoError(t, err)
	require.Equal(t, "awaiting_payment", res.State)
	require.Empty(t, res.Orders)
	require.NotNil(t, res.Payment)
	require.Equal(t, domain.PayCreditCard, res.Payment.Method)

	// El carrito sigue intacto hasta la captura.
	view, err := svc.GetCart(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	paid, err := svc.PayWithCard(ctx, "client-1", validCard())
	require.NoError(t, err)
	require.Equal(t, "placed", paid.State)
	require.Len(t, paid.Orders, 1)

	pay, err := fs.GetPaymentByOrderID(ctx, paid.Orders[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCompleted, pay.Status)
	require.Equal(t, "3456", pay.CardLastFour)

	view, err = svc.GetCart(ctx, "client-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)

	_, err = svc.PayWithCard(ctx, "client-1", validCard())
	require.ErrorIs(t, err, ErrNoPendingCheckout)
}

func TestPayWithCardValidatesFormat(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 10)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)
	_, err = svc.StartCheckout(ctx, "client-1", CheckoutInput{PaymentMethod: domain.PayCreditCard})
	require.NoError(t, err)

	cases := map[string]CardInput{
		"short number": {Number: "4111 1111 1111 345", HolderName: "Ana", ExpiryDate: "12/39", CVV: "123"},
		"letters":      {Number: "4111abcd11113456", HolderName: "Ana", ExpiryDate: "12/39", CVV: "123"},
		"no holder":    {Number: "4111111111113456", HolderName: "  ", ExpiryDate: "12/39", CVV: "123"},
		"bad month":    {Number: "4111111111113456", HolderName: "Ana", ExpiryDate: "13/39", CVV: "123"},
		"expired":      {Number: "4111111111113456", HolderName: "Ana", ExpiryDate: "01/20", CVV: "123"},
		"no slash":     {Number: "4111111111113456", HolderName: "Ana", ExpiryDate: "1239", CVV: "123"},
		"short cvv":    {Number: "4111111111113456", HolderName: "Ana", ExpiryDate: "12/39", CVV: "12"},
		"alpha cvv":    {Number: "4111111111113456", HolderName: "Ana", ExpiryDate: "12/39", CVV: "abc"},
	}
	for name, in := range cases {
		_, err := svc.PayWithCard(ctx, "client-1", in)
		require.ErrorIs(t, err, ErrInvalidCard, name)
	}

	// Un intento fallido no descarta el checkout pendiente.
	paid, err := svc.PayWithCard(ctx, "client-1", validCard())
	require.NoError(t, err)
	require.Equal(t, "placed", paid.State)
}

func TestPayWithCardWithoutCheckout(t *testing.T) {
	svc, _ := newTestEnv(t)
	_, err := svc.PayWithCard(context.Background(), "client-1", validCard())
	require.ErrorIs(t, err, ErrNoPendingCheckout)
}

func TestPayWithCardMethodMismatch(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 10)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)

	_, err = svc.StartCheckout(ctx, "client-1", CheckoutInput{PaymentMethod: domain.PayBankTransfer})
	require.NoError(t, err)

	_, err = svc.PayWithCard(ctx, "client-1", validCard())
	require.ErrorIs(t, err, ErrNoPendingCheckout)
}

func TestStockRevalidatedAtCapture(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 2)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 2)
	require.NoError(t, err)
	_, err = svc.StartCheckout(ctx, "client-1", CheckoutInput{PaymentMethod: domain.PayCreditCard})
	require.NoError(t, err)

	// Otro cliente se llevó el stock mientras tanto.
	fs.mu.Lock()
	fs.products[p.ID].StockQuantity = 1
	fs.mu.Unlock()

	_, err = svc.PayWithCard(ctx, "client-1", validCard())
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 1, stockErr.Available)

	// El rechazo descarta el pendiente: hay que rehacer el checkout.
	_, err = svc.PayWithCard(ctx, "client-1", validCard())
	require.ErrorIs(t, err, ErrNoPendingCheckout)
}

// ---- transferencia bancaria ----

func TestBankTransferFlow(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 10)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)

	res, err := svc.StartCheckout(ctx, "client-1", CheckoutInput{PaymentMethod: domain.PayBankTransfer})
	require.NoError(t, err)
	require.Equal(t, "awaiting_payment", res.State)
	require.NotNil(t, res.Payment)
	require.True(t, domain.IsValidBankReference(res.Payment.ReferenceCode))
	require.NotEmpty(t, res.Payment.Beneficiary)
	require.NotEmpty(t, res.Payment.AccountNumber)

	proof := bytes.Repeat([]byte("p"), 128)
	paid, err := svc.PayWithBankTransfer(ctx, "client-1", "comprobante.PDF", int64(len(proof)), bytes.NewReader(proof))
	require.NoError(t, err)
	require.Equal(t, "placed", paid.State)
	require.Len(t, paid.Orders, 1)
	require.Equal(t, res.Payment.ReferenceCode, paid.Payment.ReferenceCode)

	pay, err := fs.GetPaymentByOrderID(ctx, paid.Orders[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPending, pay.Status)
	require.Equal(t, res.Payment.ReferenceCode, pay.BankReferenceCode)
	require.Equal(t, filepath.Join("payments", pay.ID+".pdf"), pay.ProofPath)

	onDisk, err := os.ReadFile(filepath.Join(svc.deps.UploadsDir, pay.ProofPath))
	require.NoError(t, err)
	require.Equal(t, proof, onDisk)

	view, err := svc.GetCart(ctx, "client-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestBankTransferRejectsBadProof(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	b := fs.seedBusiness("owner-1", "Tienda Uno")
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 10)
	_, err := svc.AddItem(ctx, "client-1", p.ID, 1)
	require.NoError(t, err)
	_, err = svc.StartCheckout(ctx, "client-1", CheckoutInput{PaymentMethod: domain.PayBankTransfer})
	require.NoError(t, err)

	_, err = svc.PayWithBankTransfer(ctx, "client-1", "virus.exe", 10, strings.NewReader("xxxxxxxxxx"))
	require.ErrorIs(t, err, ErrInvalidFileType)

	huge := int64(2 << 20)
	_, err = svc.PayWithBankTransfer(ctx, "client-1", "comprobante.pdf", huge, bytes.NewReader(make([]byte, huge)))
	require.ErrorIs(t, err, ErrFileTooLarge)

	// Tamaño declarado chico pero stream más largo que el máximo.
	liar := bytes.NewReader(make([]byte, 2<<20))
	_, err = svc.PayWithBankTransfer(ctx, "client-1", "comprobante.pdf", 100, liar)
	require.ErrorIs(t, err, ErrFileTooLarge)

	// Los rechazos de comprobante no descartan el pendiente.
	proof := []byte("ok")
	paid, err := svc.PayWithBankTransfer(ctx, "client-1", "comprobante.png", int64(len(proof)), bytes.NewReader(proof))
	require.NoError(t, err)
	require.Equal(t, "placed", paid.State)
}

// ---- órdenes ----

func placeCashOrder(t *testing.T, svc *Service, fs *fakeStore, customerID string, qty int) (domain.Order, *domain.Product) {
	t.Helper()
	ctx := context.Background()
	b, ok := fs.businesses["owner-1"]
	if !ok {
		b = fs.seedBusiness("owner-1", "Tienda Uno")
	}
	p := fs.seedProduct(b.ID, "Quinua real", 1000, 5)
	_, err := svc.AddItem(ctx, customerID, p.ID, qty)
	require.NoError(t, err)
	res, err := svc.StartCheckout(ctx, customerID, CheckoutInput{PaymentMethod: domain.PayCashOnDelivery})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	return res.Orders[0], p
}

func TestOrderLifecycleCompleteSettles(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	order, p := placeCashOrder(t, svc, fs, "client-1", 2)

	o, err := svc.ApplyOrderAction(ctx, "owner-1", order.ID, domain.ActionConfirm)
	require.NoError(t, err)
	require.Equal(t, domain.OrderConfirmed, o.Status)

	o, err = svc.ApplyOrderAction(ctx, "owner-1", order.ID, domain.ActionStartProcessing)
	require.NoError(t, err)
	require.Equal(t, domain.OrderInProgress, o.Status)

	o, err = svc.ApplyOrderAction(ctx, "owner-1", order.ID, domain.ActionComplete)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCompleted, o.Status)

	got, err := fs.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.StockQuantity)

	pay, err := fs.GetPaymentByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCompleted, pay.Status)

	_, err = svc.ApplyOrderAction(ctx, "owner-1", order.ID, domain.ActionConfirm)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyOrderActionOwnership(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	order, _ := placeCashOrder(t, svc, fs, "client-1", 1)
	fs.seedBusiness("owner-2", "Tienda Dos")

	_, err := svc.ApplyOrderAction(ctx, "owner-2", order.ID, domain.ActionConfirm)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ApplyOrderAction(ctx, "sin-negocio", order.ID, domain.ActionConfirm)
	require.ErrorIs(t, err, ErrNoBusiness)
}

func TestCancelMyOrder(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	order, _ := placeCashOrder(t, svc, fs, "client-1", 1)

	_, err := svc.CancelMyOrder(ctx, "client-2", order.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	o, err := svc.CancelMyOrder(ctx, "client-1", order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, o.Status)

	// Una orden ya confirmada no se cancela por el cliente.
	order2, _ := placeCashOrder(t, svc, fs, "client-1", 1)
	_, err = svc.ApplyOrderAction(ctx, "owner-1", order2.ID, domain.ActionConfirm)
	require.NoError(t, err)
	_, err = svc.CancelMyOrder(ctx, "client-1", order2.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetOrderAuthorization(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	order, _ := placeCashOrder(t, svc, fs, "client-1", 2)
	fs.seedBusiness("owner-2", "Tienda Dos")

	detail, err := svc.GetOrder(ctx, Viewer{UserID: "client-1", Role: domain.RoleClient}, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	require.NotNil(t, detail.Payment)
	require.Equal(t, detail.Order.TotalCents(), detail.Payment.AmountCents)

	_, err = svc.GetOrder(ctx, Viewer{UserID: "owner-1", Role: domain.RoleBusinessOwner}, order.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, Viewer{UserID: "admin-1", Role: domain.RoleAdmin}, order.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, Viewer{UserID: "client-2", Role: domain.RoleClient}, order.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetOrder(ctx, Viewer{UserID: "owner-2", Role: domain.RoleBusinessOwner}, order.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBusinessOrdersNeedsBusiness(t *testing.T) {
	svc, _ := newTestEnv(t)
	_, _, err := svc.ListBusinessOrders(context.Background(), "owner-x", pg.OrderFilter{})
	require.ErrorIs(t, err, ErrNoBusiness)
}

func TestListMyOrdersFiltersByStatus(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	o1, _ := placeCashOrder(t, svc, fs, "client-1", 1)
	o2, _ := placeCashOrder(t, svc, fs, "client-1", 1)
	_, err := svc.ApplyOrderAction(ctx, "owner-1", o2.ID, domain.ActionConfirm)
	require.NoError(t, err)

	orders, total, err := svc.ListMyOrders(ctx, "client-1", pg.OrderFilter{Status: "pending"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, o1.ID, orders[0].ID)

	all, total, err := svc.ListMyOrders(ctx, "client-1", pg.OrderFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)

	none, total, err := svc.ListMyOrders(ctx, "client-2", pg.OrderFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, none)
}

func TestBankReferenceShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref, err := newBankReference()
		require.NoError(t, err)
		require.True(t, domain.IsValidBankReference(ref), ref)
		seen[ref] = true
	}
	require.Greater(t, len(seen), 1)
}

func TestCardValidatorLastFour(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	last4, err := validateCard(CardInput{
		Number:     "5555 4444 3333 2222",
		HolderName: "Ana Quispe",
		ExpiryDate: "08/26",
		CVV:        "9999",
	}, now)
	require.NoError(t, err)
	require.Equal(t, "2222", last4)

	// El mes de vencimiento todavía vale; el siguiente ya no.
	_, err = validateCard(CardInput{
		Number:     "5555444433332222",
		HolderName: "Ana Quispe",
		ExpiryDate: "07/26",
		CVV:        "999",
	}, now)
	require.ErrorIs(t, err, ErrInvalidCard)
}
