package domain

import "time"

// TripStatus es el estado de un viaje de compras; avanza sólo hacia
// adelante.
type TripStatus string

const (
	TripAvailable  TripStatus = "available"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
)

// CanAdvanceTrip valida la transición de estado de un viaje.
func CanAdvanceTrip(cur, next TripStatus) bool {
	switch cur {
	case TripAvailable:
		return next == TripInProgress || next == TripCompleted
	case TripInProgress:
		return next == TripCompleted
	}
	return false
}

// ShoppingTrip anuncia que un usuario saldrá de compras y acepta encargos.
type ShoppingTrip struct {
	ID                   string
	UserID               string
	Destination          string
	PlannedDepartureTime time.Time
	EstimatedReturnTime  time.Time
	Status               TripStatus
	Notes                string
	CreatedAt            time.Time

	ShopperName string // poblado por el store en listados
}

// ShoppingRequestStatus es el estado de un encargo a un shopper.
type ShoppingRequestStatus string

const (
	ShopReqPending   ShoppingRequestStatus = "pending"
	ShopReqAccepted  ShoppingRequestStatus = "accepted"
	ShopReqRejected  ShoppingRequestStatus = "rejected"
	ShopReqCompleted ShoppingRequestStatus = "completed"
)

// ShoppingRequest es el encargo de un usuario a quien sale de compras.
type ShoppingRequest struct {
	ID                  string
	RequesterID         string
	ShopperID           string
	TripID              string
	ItemsRequested      string
	EstimatedTotalCents *Cents
	ShopperFeeCents     *Cents
	DeliveryLocation    string
	ContactDetails      string
	Status              ShoppingRequestStatus
	Notes               string
	CreatedAt           time.Time
}
