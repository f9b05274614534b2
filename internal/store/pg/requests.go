package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const itemRequestCols = `id, kind, requester_id, title, description, category_id,
       budget_cents, contact_info, fulfilled, created_at, updated_at`

func scanItemRequest(row pgxRow, r *domain.ItemRequest) error {
	return row.Scan(
		&r.ID, &r.Kind, &r.RequesterID, &r.Title, &r.Description,
		&r.CategoryID, &r.BudgetCents, &r.ContactInfo, &r.Fulfilled,
		&r.CreatedAt, &r.UpdatedAt,
	)
}

func (s *Store) CreateItemRequest(ctx context.Context, r *domain.ItemRequest) error {
	const q = `
INSERT INTO item_requests (kind, requester_id, title, description, category_id, budget_cents, contact_info)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`
	return s.pool.QueryRow(ctx, q,
		r.Kind, r.RequesterID, r.Title, r.Description,
		r.CategoryID, r.BudgetCents, r.ContactInfo,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (s *Store) GetItemRequestByID(ctx context.Context, id string) (*domain.ItemRequest, error) {
	q := `SELECT ` + itemRequestCols + ` FROM item_requests WHERE id = $1 LIMIT 1`
	var r domain.ItemRequest
	if err := scanItemRequest(s.pool.QueryRow(ctx, q, id), &r); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ItemRequestFilter acota el tablero de pedidos. RequesterID no vacío
// lista sólo los propios e incluye los ya cumplidos.
type ItemRequestFilter struct {
	Kind        string
	CategoryID  string
	RequesterID string
	Limit       int
	Offset      int
}

func (s *Store) ListItemRequests(ctx context.Context, f ItemRequestFilter) ([]domain.ItemRequest, int, error) {
	where := []string{"true"}
	args := []any{}
	n := 1

	if f.RequesterID != "" {
		where = append(where, fmt.Sprintf("requester_id = $%d", n))
		args = append(args, f.RequesterID)
		n++
	} else {
		where = append(where, "fulfilled = false")
	}
	if f.Kind != "" {
		where = append(where, fmt.Sprintf("kind = $%d", n))
		args = append(args, f.Kind)
		n++
	}
	if f.CategoryID != "" {
		where = append(where, fmt.Sprintf("category_id = $%d", n))
		args = append(args, f.CategoryID)
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM item_requests WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + itemRequestCols + ` FROM item_requests WHERE ` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.ItemRequest
	for rows.Next() {
		var r domain.ItemRequest
		if err := scanItemRequest(rows, &r); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// SetItemRequestFulfilled marca o desmarca un pedido como cumplido; sólo
// el autor puede hacerlo.
func (s *Store) SetItemRequestFulfilled(ctx context.Context, id, requesterID string, fulfilled bool) error {
	const q = `
UPDATE item_requests SET fulfilled = $3, updated_at = now()
WHERE id = $1 AND requester_id = $2`
	tag, err := s.pool.Exec(ctx, q, id, requesterID, fulfilled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItemRequest borra un pedido propio.
func (s *Store) DeleteItemRequest(ctx context.Context, id, requesterID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM item_requests WHERE id = $1 AND requester_id = $2`, id, requesterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
