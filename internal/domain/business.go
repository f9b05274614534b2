package domain

import "time"

// Business es el negocio de un dueño aprobado. Un dueño tiene a lo sumo
// un negocio.
type Business struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Address     string
	Phone       string
	LogoURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category agrupa productos y servicios.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// CategoryCount acompaña listados de categorías populares.
type CategoryCount struct {
	Category
	ProductCount int
	ServiceCount int
}
