package http

import (
	"net/http"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/auth"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

// bearerToken extrae el token de Authorization: Bearer <JWT>.
// Tolerante con mayúsculas/minúsculas en el scheme.
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" {
		return ""
	}
	if i := strings.IndexByte(ah, ' '); i > 0 && strings.EqualFold(ah[:i], "Bearer") {
		return strings.TrimSpace(ah[i+1:])
	}
	return ""
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda la identidad en el
// contexto. Si el token es inválido o no está presente, responde 401.
func RequireAuth(issuer *auth.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				WriteError(w, http.StatusUnauthorized, "invalid_token", "falta el bearer token", 1203)
				return
			}
			claims, err := issuer.Parse(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="token inválido o expirado"`)
				WriteError(w, http.StatusUnauthorized, "invalid_token", "token inválido o expirado", 1203)
				return
			}

			id := &Identity{
				UserID:   claims.Subject,
				Role:     claims.Role,
				Approved: claims.Approved,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth intenta validar el token pero NO falla si falta o es inválido.
// Útil para endpoints públicos con comportamiento extra para autenticados
// (p.ej. marcar el voto propio en una reseña).
func OptionalAuth(issuer *auth.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := issuer.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			id := &Identity{
				UserID:   claims.Subject,
				Role:     claims.Role,
				Approved: claims.Approved,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole exige que la identidad tenga alguno de los roles dados.
// Debe usarse después de RequireAuth.
func RequireRole(roles ...domain.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if id == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, "invalid_token", "token inválido o ausente", 1203)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "forbidden", "rol insuficiente", 1204)
		})
	}
}

// RequireApprovedOwner bloquea a dueños de negocio aún no aprobados por un
// administrador. Los demás roles pasan sin cambios.
func RequireApprovedOwner() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if id == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, "invalid_token", "token inválido o ausente", 1203)
				return
			}
			if id.Role == domain.RoleBusinessOwner && !id.Approved {
				WriteError(w, http.StatusForbidden, "approval_pending", "cuenta de vendedor pendiente de aprobación", 1205)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
