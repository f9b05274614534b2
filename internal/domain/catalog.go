package domain

import "time"

// Product es un ítem físico con stock publicado por un negocio.
type Product struct {
	ID            string
	BusinessID    string
	CategoryID    *string
	Name          string
	Description   string
	PriceCents    Cents
	StockQuantity int
	ImageURL      string
	Available     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InStock indica si hay stock suficiente para la cantidad pedida.
func (p *Product) InStock(qty int) bool {
	return p.Available && qty > 0 && p.StockQuantity >= qty
}

// Service es una oferta sin stock; el precio puede omitirse
// ("consultar precio").
type Service struct {
	ID          string
	BusinessID  string
	CategoryID  *string
	Name        string
	Description string
	PriceCents  *Cents
	Duration    string
	ImageURL    string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
