package commerce

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/cache"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

// Datos de la cuenta receptora que se muestran con las instrucciones de
// transferencia. Sólo informativos.
const (
	bankBeneficiary = "Madidi Market S.R.L."
	bankName        = "Banco Unión"
	bankAccount     = "10000021436987"
)

// CheckoutInput son los datos del formulario de checkout.
type CheckoutInput struct {
	PaymentMethod  domain.PaymentMethod
	DeliveryOption domain.DeliveryOption
	StreetAddress  string
	City           string
	PostalCode     string
	Phone          string
	Notes          string
}

// PaymentInstructions acompaña un checkout que espera captura.
type PaymentInstructions struct {
	Method        domain.PaymentMethod
	ReferenceCode string
	Beneficiary   string
	BankName      string
	AccountNumber string
}

// CheckoutResult es la respuesta de checkout y de las capturas de pago.
// State es "placed" cuando las órdenes ya existen y "awaiting_payment"
// cuando falta capturar tarjeta o transferencia.
type CheckoutResult struct {
	State         string
	Orders        []domain.Order
	SubtotalCents domain.Cents
	TaxCents      domain.Cents
	TotalCents    domain.Cents
	Payment       *PaymentInstructions
}

// deliveryInfo es la entrega ya validada y aplanada para las órdenes.
type deliveryInfo struct {
	Option  domain.DeliveryOption
	Address string
	Phone   string
	Notes   string
}

func (in *CheckoutInput) delivery() (deliveryInfo, error) {
	opt := in.DeliveryOption
	if opt == "" {
		opt = domain.DeliveryPickup
	}
	if !opt.IsValid() {
		return deliveryInfo{}, ErrInvalidDelivery
	}
	d := deliveryInfo{Option: opt, Notes: strings.TrimSpace(in.Notes)}
	if opt == domain.DeliveryToDoor {
		street := strings.TrimSpace(in.StreetAddress)
		phone := strings.TrimSpace(in.Phone)
		if street == "" || phone == "" {
			return deliveryInfo{}, ErrInvalidDelivery
		}
		d.Address = street
		if city := strings.TrimSpace(in.City); city != "" {
			d.Address += ", " + city
		}
		if pc := strings.TrimSpace(in.PostalCode); pc != "" {
			d.Address += " " + pc
		}
		d.Phone = phone
	}
	return d, nil
}

// validateStock revisa disponibilidad y stock de cada línea del carrito.
func validateStock(items []domain.CartItem) error {
	for i := range items {
		it := &items[i]
		if !it.Available {
			return ErrProductUnavailable
		}
		if it.Quantity > it.StockQuantity {
			return &InsufficientStockError{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Available:   it.StockQuantity,
			}
		}
	}
	return nil
}

// StartCheckout valida el carrito y la entrega. Con efectivo las órdenes
// se crean acá mismo; con tarjeta o transferencia queda un registro
// pendiente en cache y la creación se difiere a la captura.
func (s *Service) StartCheckout(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("commerce.checkout"),
		logger.Op("StartCheckout"),
		logger.UserID(userID),
	)

	if !in.PaymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	delivery, err := in.delivery()
	if err != nil {
		return nil, err
	}

	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.deps.Store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateStock(items); err != nil {
		metrics.CheckoutsStarted.WithLabelValues(string(in.PaymentMethod), "rejected").Inc()
		return nil, err
	}

	totals := domain.TotalsOf(items)

	// Efectivo: las órdenes nacen acá, con su pago pendiente.
	if in.PaymentMethod == domain.PayCashOnDelivery {
		orders, _, err := s.placeOrders(ctx, userID, delivery, items, func() domain.Payment {
			return domain.Payment{
				Method: domain.PayCashOnDelivery,
				Status: domain.PaymentPending,
			}
		})
		if err != nil {
			return nil, err
		}
		if err := s.deps.Store.ClearCart(ctx, cart.ID); err != nil {
			log.Warn("clear cart after checkout failed", logger.Err(err))
		}
		metrics.CheckoutsStarted.WithLabelValues(string(in.PaymentMethod), "placed").Inc()

		log.Info("checkout placed",
			logger.String("payment_method", string(in.PaymentMethod)),
			logger.Count(len(orders)),
			logger.Amount(int64(totals.TotalCents)),
		)
		return &CheckoutResult{
			State:         "placed",
			Orders:        orders,
			SubtotalCents: totals.SubtotalCents,
			TaxCents:      totals.TaxCents,
			TotalCents:    totals.TotalCents,
		}, nil
	}

	// Tarjeta o transferencia: guardar el checkout pendiente y esperar
	// la captura.
	pending := pendingCheckout{
		Method:          in.PaymentMethod,
		DeliveryOption:  delivery.Option,
		DeliveryAddress: delivery.Address,
		DeliveryPhone:   delivery.Phone,
		Notes:           delivery.Notes,
		SubtotalCents:   totals.SubtotalCents,
		TaxCents:        totals.TaxCents,
		TotalCents:      totals.TotalCents,
		CreatedAt:       time.Now().UTC(),
	}
	instructions := &PaymentInstructions{Method: in.PaymentMethod}
	if in.PaymentMethod == domain.PayBankTransfer {
		ref, err := newBankReference()
		if err != nil {
			return nil, err
		}
		pending.BankReference = ref
		instructions.ReferenceCode = ref
		instructions.Beneficiary = bankBeneficiary
		instructions.BankName = bankName
		instructions.AccountNumber = bankAccount
	}

	raw, err := json.Marshal(pending)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Cache.Set(ctx, checkoutKey(userID), string(raw), s.deps.PendingTTL); err != nil {
		return nil, err
	}
	metrics.CheckoutsStarted.WithLabelValues(string(in.PaymentMethod), "awaiting_payment").Inc()

	log.Info("checkout awaiting payment",
		logger.String("payment_method", string(in.PaymentMethod)),
		logger.Amount(int64(totals.TotalCents)),
	)
	return &CheckoutResult{
		State:         "awaiting_payment",
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Payment:       instructions,
	}, nil
}

// placeOrders agrupa las líneas por negocio y crea una orden pendiente
// por grupo, cada una con el pago que arma buildPayment. La orden y el
// monto (total con impuesto) se estampan acá.
func (s *Service) placeOrders(
	ctx context.Context,
	customerID string,
	delivery deliveryInfo,
	items []domain.CartItem,
	buildPayment func() domain.Payment,
) ([]domain.Order, []domain.Payment, error) {
	groups := make(map[string][]domain.CartItem)
	var businessIDs []string
	names := make(map[string]string)
	for i := range items {
		bid := items[i].BusinessID
		if _, seen := groups[bid]; !seen {
			businessIDs = append(businessIDs, bid)
			names[bid] = items[i].BusinessName
		}
		groups[bid] = append(groups[bid], items[i])
	}

	orders := make([]domain.Order, 0, len(businessIDs))
	payments := make([]domain.Payment, 0, len(businessIDs))
	for _, bid := range businessIDs {
		group := groups[bid]

		o := domain.Order{
			CustomerID:     customerID,
			BusinessID:     bid,
			Status:         domain.OrderPending,
			DeliveryOption: delivery.Option,
			Notes:          delivery.Notes,
		}
		if delivery.Option == domain.DeliveryToDoor {
			o.DeliveryAddress = delivery.Address
			o.DeliveryPhone = delivery.Phone
		}

		lines := make([]domain.OrderItem, 0, len(group))
		for i := range group {
			it := &group[i]
			pid := it.ProductID
			lines = append(lines, domain.OrderItem{
				ProductID:   &pid,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				PriceCents:  it.PriceCents,
			})
			o.SubtotalCents += it.LineTotal()
		}

		if err := s.deps.Store.CreateOrderWithItems(ctx, &o, lines); err != nil {
			return nil, nil, err
		}
		o.BusinessName = names[bid]

		p := buildPayment()
		p.OrderID = o.ID
		p.AmountCents = o.TotalCents()
		if err := s.deps.Store.CreatePayment(ctx, &p); err != nil {
			return nil, nil, err
		}

		metrics.OrdersCreated.WithLabelValues(string(p.Method)).Inc()
		metrics.PaymentsProcessed.WithLabelValues(string(p.Method), string(p.Status)).Inc()

		orders = append(orders, o)
		payments = append(payments, p)
	}
	return orders, payments, nil
}

// loadPending lee el checkout pendiente del usuario y verifica que sea
// del método esperado. Un registro de otro método cuenta como ausente.
func (s *Service) loadPending(ctx context.Context, userID string, method domain.PaymentMethod) (*pendingCheckout, error) {
	raw, err := s.deps.Cache.Get(ctx, checkoutKey(userID))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrNoPendingCheckout
		}
		return nil, err
	}
	var pending pendingCheckout
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		logger.From(ctx).Warn("corrupt pending checkout dropped",
			logger.Component("commerce.checkout"),
			logger.UserID(userID),
			logger.Err(err),
		)
		s.clearPending(ctx, userID)
		return nil, ErrNoPendingCheckout
	}
	if pending.Method != method {
		logger.From(ctx).Debug("pending checkout method mismatch",
			logger.Component("commerce.checkout"),
			logger.UserID(userID),
			logger.String("pending_method", string(pending.Method)),
			logger.String("requested_method", string(method)),
		)
		return nil, ErrNoPendingCheckout
	}
	return &pending, nil
}

func (s *Service) clearPending(ctx context.Context, userID string) {
	if err := s.deps.Cache.Delete(ctx, checkoutKey(userID)); err != nil {
		logger.From(ctx).Warn("clear pending checkout failed",
			logger.Component("commerce.checkout"),
			logger.UserID(userID),
			logger.Err(err),
		)
	}
}
