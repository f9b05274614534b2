package domain

import "time"

// Cart es el carrito del usuario; uno por cuenta, creado al primer uso.
type Cart struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// CartItem es una línea del carrito; (cart, product) es único.
type CartItem struct {
	CartID    string
	ProductID string
	Quantity  int
	AddedAt   time.Time

	// Snapshot del producto para listados; poblado por el store.
	ProductName   string
	PriceCents    Cents
	StockQuantity int
	Available     bool
	BusinessID    string
	BusinessName  string
}

// LineTotal es precio por cantidad de la línea.
func (i *CartItem) LineTotal() Cents {
	return Cents(int64(i.PriceCents) * int64(i.Quantity))
}

// CartTotals resume el carrito con impuesto incluido.
type CartTotals struct {
	ItemCount     int
	SubtotalCents Cents
	TaxCents      Cents
	TotalCents    Cents
}

// TotalsOf calcula los totales de un conjunto de líneas.
func TotalsOf(items []CartItem) CartTotals {
	var t CartTotals
	for i := range items {
		t.ItemCount += items[i].Quantity
		t.SubtotalCents += items[i].LineTotal()
	}
	t.TaxCents = TaxOn(t.SubtotalCents)
	t.TotalCents = t.SubtotalCents + t.TaxCents
	return t
}
