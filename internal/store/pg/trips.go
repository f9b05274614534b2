package pg

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const tripCols = `t.id, t.shopper_id, t.destination, t.planned_departure_time,
       t.estimated_return_time, t.status, t.notes, t.created_at, u.full_name`

func scanTrip(row pgxRow, t *domain.ShoppingTrip) error {
	return row.Scan(
		&t.ID, &t.UserID, &t.Destination, &t.PlannedDepartureTime,
		&t.EstimatedReturnTime, &t.Status, &t.Notes, &t.CreatedAt,
		&t.ShopperName,
	)
}

func (s *Store) CreateTrip(ctx context.Context, t *domain.ShoppingTrip) error {
	const q = `
INSERT INTO shopping_trips (shopper_id, destination, planned_departure_time, estimated_return_time, status, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q,
		t.UserID, t.Destination, t.PlannedDepartureTime,
		t.EstimatedReturnTime, t.Status, t.Notes,
	).Scan(&t.ID, &t.CreatedAt)
}

func (s *Store) GetTripByID(ctx context.Context, id string) (*domain.ShoppingTrip, error) {
	q := `SELECT ` + tripCols + `
FROM shopping_trips t
JOIN users u ON u.id = t.shopper_id
WHERE t.id = $1
LIMIT 1`
	var t domain.ShoppingTrip
	if err := scanTrip(s.pool.QueryRow(ctx, q, id), &t); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAvailableTrips lista viajes abiertos a encargos, con la salida más
// próxima primero.
func (s *Store) ListAvailableTrips(ctx context.Context, limit, offset int) ([]domain.ShoppingTrip, int, error) {
	const cond = `t.status = 'available' AND t.estimated_return_time > now()`

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM shopping_trips t WHERE `+cond,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + tripCols + `
FROM shopping_trips t
JOIN users u ON u.id = t.shopper_id
WHERE ` + cond + `
ORDER BY t.planned_departure_time ASC
LIMIT $1 OFFSET $2`
	return s.queryTrips(ctx, q, total, limit, offset)
}

// ListTripsByShopper lista los viajes propios, todos los estados.
func (s *Store) ListTripsByShopper(ctx context.Context, shopperID string, limit, offset int) ([]domain.ShoppingTrip, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM shopping_trips WHERE shopper_id = $1`, shopperID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + tripCols + `
FROM shopping_trips t
JOIN users u ON u.id = t.shopper_id
WHERE t.shopper_id = $1
ORDER BY t.planned_departure_time DESC
LIMIT $2 OFFSET $3`
	return s.queryTrips(ctx, q, total, shopperID, limit, offset)
}

func (s *Store) queryTrips(ctx context.Context, q string, total int, args ...any) ([]domain.ShoppingTrip, int, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.ShoppingTrip
	for rows.Next() {
		var t domain.ShoppingTrip
		if err := scanTrip(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// UpdateTripStatus avanza el estado con guardas de dueño y estado actual.
func (s *Store) UpdateTripStatus(ctx context.Context, tripID, shopperID string, from, to domain.TripStatus) error {
	const q = `
UPDATE shopping_trips SET status = $4, updated_at = now()
WHERE id = $1 AND shopper_id = $2 AND status = $3`
	tag, err := s.pool.Exec(ctx, q, tripID, shopperID, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

const shoppingReqCols = `id, requester_id, shopper_id, trip_id, items_requested,
       estimated_total_cents, shopper_fee_cents, delivery_location,
       contact_details, status, notes, created_at`

func scanShoppingRequest(row pgxRow, r *domain.ShoppingRequest) error {
	return row.Scan(
		&r.ID, &r.RequesterID, &r.ShopperID, &r.TripID, &r.ItemsRequested,
		&r.EstimatedTotalCents, &r.ShopperFeeCents, &r.DeliveryLocation,
		&r.ContactDetails, &r.Status, &r.Notes, &r.CreatedAt,
	)
}

func (s *Store) CreateShoppingRequest(ctx context.Context, r *domain.ShoppingRequest) error {
	const q = `
INSERT INTO shopping_requests (requester_id, shopper_id, trip_id, items_requested, estimated_total_cents, shopper_fee_cents, delivery_location, contact_details, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q,
		r.RequesterID, r.ShopperID, r.TripID, r.ItemsRequested,
		r.EstimatedTotalCents, r.ShopperFeeCents, r.DeliveryLocation,
		r.ContactDetails, r.Status, r.Notes,
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *Store) GetShoppingRequestByID(ctx context.Context, id string) (*domain.ShoppingRequest, error) {
	q := `SELECT ` + shoppingReqCols + ` FROM shopping_requests WHERE id = $1 LIMIT 1`
	var r domain.ShoppingRequest
	if err := scanShoppingRequest(s.pool.QueryRow(ctx, q, id), &r); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListShoppingRequestsMade lista los encargos hechos por el usuario.
func (s *Store) ListShoppingRequestsMade(ctx context.Context, requesterID string, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	return s.listShoppingRequests(ctx, "requester_id", requesterID, limit, offset)
}

// ListShoppingRequestsReceived lista los encargos recibidos como shopper.
func (s *Store) ListShoppingRequestsReceived(ctx context.Context, shopperID string, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	return s.listShoppingRequests(ctx, "shopper_id", shopperID, limit, offset)
}

func (s *Store) listShoppingRequests(ctx context.Context, col, userID string, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM shopping_requests WHERE `+col+` = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + shoppingReqCols + `
FROM shopping_requests
WHERE ` + col + ` = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.ShoppingRequest
	for rows.Next() {
		var r domain.ShoppingRequest
		if err := scanShoppingRequest(rows, &r); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// UpdateShoppingRequestStatus cambia el estado de un encargo con guardas
// de shopper y estado actual.
func (s *Store) UpdateShoppingRequestStatus(ctx context.Context, id, shopperID string, from, to domain.ShoppingRequestStatus) error {
	const q = `
UPDATE shopping_requests SET status = $4, updated_at = now()
WHERE id = $1 AND shopper_id = $2 AND status = $3`
	tag, err := s.pool.Exec(ctx, q, id, shopperID, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
