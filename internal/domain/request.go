package domain

import "time"

// RequestKind distingue pedidos de productos y de servicios en el
// tablero de demanda.
type RequestKind string

const (
	RequestKindProduct RequestKind = "product"
	RequestKindService RequestKind = "service"
)

// ItemRequest es un pedido de un cliente por algo que nadie ofrece aún.
// La misma forma sirve para productos y servicios.
type ItemRequest struct {
	ID          string
	Kind        RequestKind
	RequesterID string
	Title       string
	Description string
	CategoryID  *string
	BudgetCents *Cents
	ContactInfo string
	Fulfilled   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryDemand es el conteo de pedidos por categoría en una ventana
// de tiempo.
type CategoryDemand struct {
	CategoryName string
	Count        int
}

// TitleDemand es el conteo de pedidos por título (los más solicitados).
type TitleDemand struct {
	Title string
	Count int
}
