package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

const userCols = `id, email, password_hash, full_name, role, phone, address,
       approved, email_verified, disabled_at, created_at, updated_at`

func scanUser(row pgxRow, u *domain.User) error {
	var disabledAt *time.Time
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.Phone,
		&u.Address, &u.Approved, &u.EmailVerified, &disabledAt,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return err
	}
	u.Disabled = disabledAt != nil
	return nil
}

// pgxRow cubre pgx.Row y pgx.Rows para los helpers de scan.
type pgxRow interface {
	Scan(dest ...any) error
}

// CreateUser inserta la cuenta y rellena ID y timestamps.
// Email duplicado retorna domain.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (email, password_hash, full_name, role, phone, address, approved, email_verified)
VALUES (LOWER($1), $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, q,
		u.Email, u.PasswordHash, u.FullName, u.Role, u.Phone, u.Address,
		u.Approved, u.EmailVerified,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var u domain.User
	if err := scanUser(s.pool.QueryRow(ctx, q, email), &u); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE id = $1 LIMIT 1`
	var u domain.User
	if err := scanUser(s.pool.QueryRow(ctx, q, id), &u); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile actualiza los campos editables por el propio usuario.
func (s *Store) UpdateUserProfile(ctx context.Context, userID, fullName, phone, address string) error {
	const q = `
UPDATE users SET full_name = $2, phone = $3, address = $4, updated_at = now()
WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, fullName, phone, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) SetEmailVerified(ctx context.Context, userID string) error {
	const q = `UPDATE users SET email_verified = true, updated_at = now() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ApproveUser aprueba a un dueño de negocio pendiente. Retorna el
// usuario ya aprobado, o domain.ErrNotFound si no existe o no es un
// dueño pendiente.
func (s *Store) ApproveUser(ctx context.Context, userID string) (*domain.User, error) {
	q := `
UPDATE users SET approved = true, updated_at = now()
WHERE id = $1 AND role = 'business_owner' AND approved = false
RETURNING ` + userCols
	var u domain.User
	if err := scanUser(s.pool.QueryRow(ctx, q, userID), &u); err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetUserDisabled habilita o deshabilita la cuenta.
func (s *Store) SetUserDisabled(ctx context.Context, userID string, disabled bool) error {
	var q string
	if disabled {
		q = `UPDATE users SET disabled_at = now(), updated_at = now() WHERE id = $1 AND disabled_at IS NULL`
	} else {
		q = `UPDATE users SET disabled_at = NULL, updated_at = now() WHERE id = $1`
	}
	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 && !disabled {
		return domain.ErrNotFound
	}
	return nil
}

// UserFilter filtra los listados de admin.
type UserFilter struct {
	Role     string
	Approved *bool
	Limit    int
	Offset   int
}

// ListUsers lista cuentas con filtros opcionales y retorna el total.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]domain.User, int, error) {
	where := []string{"true"}
	args := []any{}
	n := 1

	if f.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", n))
		args = append(args, f.Role)
		n++
	}
	if f.Approved != nil {
		where = append(where, fmt.Sprintf("approved = $%d", n))
		args = append(args, *f.Approved)
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userCols + ` FROM users WHERE ` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// PendingOwner es una fila del listado de aprobaciones pendientes.
type PendingOwner struct {
	User         domain.User
	BusinessName string // vacío si aún no registró negocio
}

// ListPendingOwners lista dueños de negocio sin aprobar, con el nombre
// del negocio si ya lo registraron.
func (s *Store) ListPendingOwners(ctx context.Context) ([]PendingOwner, error) {
	const q = `
SELECT u.id, u.email, u.password_hash, u.full_name, u.role, u.phone, u.address,
       u.approved, u.email_verified, u.disabled_at, u.created_at, u.updated_at,
       COALESCE(b.name, '')
FROM users u
LEFT JOIN businesses b ON b.owner_id = u.id
WHERE u.role = 'business_owner' AND u.approved = false
ORDER BY u.created_at ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingOwner
	for rows.Next() {
		var p PendingOwner
		var disabledAt *time.Time
		if err := rows.Scan(
			&p.User.ID, &p.User.Email, &p.User.PasswordHash, &p.User.FullName,
			&p.User.Role, &p.User.Phone, &p.User.Address, &p.User.Approved,
			&p.User.EmailVerified, &disabledAt, &p.User.CreatedAt,
			&p.User.UpdatedAt, &p.BusinessName,
		); err != nil {
			return nil, err
		}
		p.User.Disabled = disabledAt != nil
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountUsersByRole agrupa cuentas por rol para el panel de admin.
func (s *Store) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}
