package domain

import "time"

// OrderStatus es el estado de una orden.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderAction es la acción que un negocio aplica sobre una orden.
type OrderAction string

const (
	ActionConfirm         OrderAction = "confirm"
	ActionCancel          OrderAction = "cancel"
	ActionStartProcessing OrderAction = "start_processing"
	ActionComplete        OrderAction = "complete"
)

// NextStatus resuelve la transición de estado para una acción. Retorna
// ("", false) cuando la transición no está permitida. Los estados
// completed y cancelled son terminales; complete sólo aplica desde
// in_progress para que el descuento de stock ocurra una sola vez.
func NextStatus(cur OrderStatus, action OrderAction) (OrderStatus, bool) {
	switch action {
	case ActionConfirm:
		if cur == OrderPending {
			return OrderConfirmed, true
		}
	case ActionStartProcessing:
		if cur == OrderConfirmed {
			return OrderInProgress, true
		}
	case ActionComplete:
		if cur == OrderInProgress {
			return OrderCompleted, true
		}
	case ActionCancel:
		switch cur {
		case OrderPending, OrderConfirmed, OrderInProgress:
			return OrderCancelled, true
		}
	}
	return "", false
}

// DeliveryOption es la modalidad de entrega elegida en checkout.
type DeliveryOption string

const (
	DeliveryPickup DeliveryOption = "pickup"
	DeliveryToDoor DeliveryOption = "delivery"
)

// IsValid retorna true para una modalidad conocida.
func (d DeliveryOption) IsValid() bool {
	return d == DeliveryPickup || d == DeliveryToDoor
}

// Order agrupa las líneas de un solo negocio; un checkout con ítems de
// varios negocios produce varias órdenes.
type Order struct {
	ID              string
	CustomerID      string
	BusinessID      string
	Status          OrderStatus
	SubtotalCents   Cents // suma de líneas, sin impuesto
	DeliveryOption  DeliveryOption
	DeliveryAddress string
	DeliveryPhone   string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	BusinessName  string // poblado por el store en listados
	CustomerEmail string
}

// TaxCents es el impuesto de la orden.
func (o *Order) TaxCents() Cents { return TaxOn(o.SubtotalCents) }

// TotalCents es subtotal más impuesto.
func (o *Order) TotalCents() Cents { return o.SubtotalCents + o.TaxCents() }

// OrderItem es una línea de orden con precio y nombre congelados al
// momento de la compra.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   *string // NULL si el producto fue borrado después
	ProductName string
	Quantity    int
	PriceCents  Cents
}

// LineTotal es precio por cantidad.
func (i *OrderItem) LineTotal() Cents {
	return Cents(int64(i.PriceCents) * int64(i.Quantity))
}
