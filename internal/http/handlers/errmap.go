// Package handlers implementa los endpoints /v1 del marketplace. Cada
// recurso vive en su archivo con un handler que declara la interfaz
// mínima del servicio que consume y un Register(chi.Router).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	authsvc "github.com/Peekay0523/MadidiMarket/internal/service/auth"
	"github.com/Peekay0523/MadidiMarket/internal/service/catalog"
	"github.com/Peekay0523/MadidiMarket/internal/service/commerce"
	"github.com/Peekay0523/MadidiMarket/internal/service/errands"
	"github.com/Peekay0523/MadidiMarket/internal/service/reviews"
)

// WriteServiceError traduce errores de servicio al envelope del API.
// El orden importa: primero los tipos con datos, después los sentinels
// y al final los errores genéricos de dominio.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var weak *authsvc.WeakPasswordError
	if errors.As(err, &weak) {
		httpx.WriteError(w, http.StatusBadRequest, "weak_password",
			"contraseña débil: "+strings.Join(weak.Reasons, ", "), 1103)
		return
	}
	var stock *commerce.InsufficientStockError
	if errors.As(err, &stock) {
		httpx.WriteError(w, http.StatusBadRequest, "insufficient_stock",
			fmt.Sprintf("stock insuficiente para %s: quedan %d", stock.ProductName, stock.Available), 1303)
		return
	}

	switch {
	// forma del request
	case errors.Is(err, authsvc.ErrMissingFields),
		errors.Is(err, catalog.ErrMissingFields),
		errors.Is(err, errands.ErrMissingFields):
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "faltan campos requeridos", 1100)
	case errors.Is(err, authsvc.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "rol inválido", 1101)

	// autenticación
	case errors.Is(err, authsvc.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email_taken", "el email ya está registrado", 1409)
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "credenciales inválidas", 1200)
	case errors.Is(err, authsvc.ErrUserDisabled):
		httpx.WriteError(w, http.StatusForbidden, "account_disabled", "cuenta deshabilitada", 1206)
	case errors.Is(err, authsvc.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh", "refresh token inválido o expirado", 1201)
	case errors.Is(err, authsvc.ErrInvalidOneTime):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_token", "token inválido o expirado", 1202)

	// catálogo
	case errors.Is(err, catalog.ErrBusinessExists):
		httpx.WriteError(w, http.StatusConflict, "business_exists", "el dueño ya tiene un negocio", 1320)
	case errors.Is(err, catalog.ErrNoBusiness), errors.Is(err, commerce.ErrNoBusiness):
		httpx.WriteError(w, http.StatusNotFound, "no_business", "el dueño no tiene negocio registrado", 1321)
	case errors.Is(err, catalog.ErrUnknownCategory):
		httpx.WriteError(w, http.StatusBadRequest, "unknown_category", "categoría desconocida", 1322)
	case errors.Is(err, catalog.ErrInvalidPrice):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_price", "precio inválido", 1323)
	case errors.Is(err, catalog.ErrInvalidStock):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_stock", "stock inválido", 1324)

	// carrito, checkout y pagos
	case errors.Is(err, commerce.ErrEmptyCart):
		httpx.WriteError(w, http.StatusBadRequest, "empty_cart", "el carrito está vacío", 1300)
	case errors.Is(err, commerce.ErrInvalidQuantity):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_quantity", "cantidad inválida", 1301)
	case errors.Is(err, commerce.ErrProductUnavailable):
		httpx.WriteError(w, http.StatusConflict, "product_unavailable", "producto no disponible", 1302)
	case errors.Is(err, commerce.ErrInvalidPaymentMethod):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_payment_method", "medio de pago inválido", 1304)
	case errors.Is(err, commerce.ErrInvalidDelivery):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_delivery", "datos de entrega incompletos", 1305)
	case errors.Is(err, commerce.ErrNoPendingCheckout):
		httpx.WriteError(w, http.StatusConflict, "no_pending_checkout", "no hay checkout pendiente", 1306)
	case errors.Is(err, commerce.ErrInvalidCard):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_card", "datos de tarjeta inválidos", 1307)
	case errors.Is(err, commerce.ErrInvalidFileType):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_file_type", "el comprobante debe ser pdf, jpg, jpeg o png", 1308)
	case errors.Is(err, commerce.ErrFileTooLarge):
		httpx.WriteError(w, http.StatusBadRequest, "file_too_large", "el comprobante no puede superar 5MB", 1309)
	case errors.Is(err, commerce.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, "invalid_transition", "transición de estado inválida", 1310)

	// reseñas
	case errors.Is(err, reviews.ErrInvalidTarget):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_target", "target de reseña inválido", 1330)
	case errors.Is(err, reviews.ErrInvalidRating):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_rating", "la calificación debe estar entre 1 y 5", 1331)
	case errors.Is(err, reviews.ErrInvalidVote):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_vote", "acción de voto inválida", 1332)

	// mandados
	case errors.Is(err, errands.ErrInvalidWindow):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_window", "el regreso debe ser posterior a la salida", 1340)
	case errors.Is(err, errands.ErrOwnTrip):
		httpx.WriteError(w, http.StatusBadRequest, "own_trip", "no puedes encargar en tu propio viaje", 1341)
	case errors.Is(err, errands.ErrTripUnavailable):
		httpx.WriteError(w, http.StatusConflict, "trip_unavailable", "el viaje no acepta encargos", 1342)
	case errors.Is(err, errands.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "monto inválido", 1343)
	case errors.Is(err, errands.ErrFeeBelowCost):
		httpx.WriteError(w, http.StatusBadRequest, "fee_below_cost", "la tarifa no cubre el costo estimado", 1344)
	case errors.Is(err, errands.ErrInvalidAction):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_action", "acción inválida", 1345)
	case errors.Is(err, errands.ErrInvalidKind):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_kind", "tipo de pedido inválido", 1346)
	case errors.Is(err, errands.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, "invalid_transition", "transición de estado inválida", 1347)

	// dominio genérico
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "recurso no encontrado", 1404)
	case errors.Is(err, domain.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "conflicto con el estado actual", 1409)
	case errors.Is(err, domain.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "entrada inválida", 1101)
	case errors.Is(err, domain.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no autenticado", 1203)
	case errors.Is(err, domain.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "no autorizado para este recurso", 1204)
	case errors.Is(err, domain.ErrTokenExpired):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_token", "token inválido o expirado", 1202)

	default:
		logger.From(r.Context()).Error("unhandled service error",
			logger.Layer("handler"), logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", 1500)
	}
}
