package http

import (
	"context"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
	ctxKeyRequestID
)

// Identity es el usuario autenticado del request, tomado de los claims
// del access token por RequireAuth/OptionalAuth.
type Identity struct {
	UserID   string
	Role     domain.Role
	Approved bool
}

// IsAdmin indica si el request viene de un admin.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == domain.RoleAdmin
}

// WithIdentity guarda la identidad en el contexto.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom retorna la identidad del contexto, o nil si el request no
// está autenticado.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return id
}

// UserIDFrom retorna el id del usuario autenticado ("" si no hay).
func UserIDFrom(ctx context.Context) string {
	if id := IdentityFrom(ctx); id != nil {
		return id.UserID
	}
	return ""
}

func withRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// RequestIDFrom retorna el request id del contexto ("" si no hay).
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID).(string)
	return rid
}
