package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const paymentCols = `id, order_id, method, status, amount_cents,
       card_last_four, bank_reference_code, proof_path, created_at, updated_at`

func scanPayment(row pgxRow, p *domain.Payment) error {
	return row.Scan(
		&p.ID, &p.OrderID, &p.Method, &p.Status, &p.AmountCents,
		&p.CardLastFour, &p.BankReferenceCode, &p.ProofPath,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

// CreatePayment registra el pago de una orden. Retorna ErrConflict si la
// orden ya tiene un pago.
func (s *Store) CreatePayment(ctx context.Context, p *domain.Payment) error {
	const q = `
INSERT INTO payments (order_id, method, status, amount_cents, card_last_four, bank_reference_code, proof_path)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, q,
		p.OrderID, p.Method, p.Status, p.AmountCents,
		p.CardLastFour, p.BankReferenceCode, p.ProofPath,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetPaymentByID(ctx context.Context, id string) (*domain.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE id = $1 LIMIT 1`
	var p domain.Payment
	if err := scanPayment(s.pool.QueryRow(ctx, q, id), &p); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE order_id = $1 LIMIT 1`
	var p domain.Payment
	if err := scanPayment(s.pool.QueryRow(ctx, q, orderID), &p); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SetPaymentProof guarda la ruta del comprobante subido.
func (s *Store) SetPaymentProof(ctx context.Context, paymentID, path string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE payments SET proof_path = $2, updated_at = now() WHERE id = $1`, paymentID, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkPaymentCompletedForOrder cierra el pago pendiente de una orden;
// lo usa la entrega de órdenes contra reembolso. Sin efecto si el pago
// ya estaba completado.
func (s *Store) MarkPaymentCompletedForOrder(ctx context.Context, orderID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE payments SET status = 'completed', updated_at = now() WHERE order_id = $1 AND status = 'pending'`,
		orderID)
	return err
}

// PaymentFilter acota el listado de pagos del panel admin.
type PaymentFilter struct {
	Status string
	Method string
	Limit  int
	Offset int
}

func (s *Store) AdminListPayments(ctx context.Context, f PaymentFilter) ([]domain.Payment, int, error) {
	where := []string{"true"}
	args := []any{}
	n := 1

	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, f.Status)
		n++
	}
	if f.Method != "" {
		where = append(where, fmt.Sprintf("method = $%d", n))
		args = append(args, f.Method)
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM payments WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + paymentCols + ` FROM payments WHERE ` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// VerifyPayment marca un pago pendiente como completado y confirma su
// orden si todavía está pendiente, todo en una transacción. Retorna
// ErrConflict si el pago no está en estado pending.
func (s *Store) VerifyPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + paymentCols + ` FROM payments WHERE id = $1 FOR UPDATE`
	var p domain.Payment
	if err := scanPayment(tx.QueryRow(ctx, q, paymentID), &p); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.Status != domain.PaymentPending {
		return nil, domain.ErrConflict
	}

	if err := tx.QueryRow(ctx,
		`UPDATE payments SET status = 'completed', updated_at = now() WHERE id = $1 RETURNING status, updated_at`,
		paymentID,
	).Scan(&p.Status, &p.UpdatedAt); err != nil {
		return nil, err
	}

	// La orden puede haber avanzado por su cuenta; la guarda evita
	// pisar estados posteriores.
	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status = 'confirmed', updated_at = now() WHERE id = $1 AND status = 'pending'`,
		p.OrderID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}
